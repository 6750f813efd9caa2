package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormJobRepository reads jobs for the invoice context
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GormJobRepository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// FindByID loads a job. Tenant checks are left to the caller so super admins
// can reach any tenant's job.
func (r *GormJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Job, error) {
	var model models.JobModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return model.ToDomain(), nil
}

var _ invoice.JobRepository = (*GormJobRepository)(nil)
