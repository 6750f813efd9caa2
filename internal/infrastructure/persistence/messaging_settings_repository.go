package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/messaging"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMessagingSettingsRepository implements messaging.SettingsRepository using GORM
type GormMessagingSettingsRepository struct {
	db *gorm.DB
}

// NewGormMessagingSettingsRepository creates a new GormMessagingSettingsRepository
func NewGormMessagingSettingsRepository(db *gorm.DB) *GormMessagingSettingsRepository {
	return &GormMessagingSettingsRepository{db: db}
}

// FindByTenant loads the tenant's provider settings
func (r *GormMessagingSettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*messaging.Settings, error) {
	var model models.MessagingSettingsModel
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find messaging settings: %w", err)
	}
	return model.ToDomain()
}

// Save upserts the tenant's settings
func (r *GormMessagingSettingsRepository) Save(ctx context.Context, settings *messaging.Settings) error {
	model, err := models.MessagingSettingsModelFromDomain(settings)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "config", "shop_name", "enabled", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save messaging settings: %w", err)
	}
	return nil
}

var _ messaging.SettingsRepository = (*GormMessagingSettingsRepository)(nil)
