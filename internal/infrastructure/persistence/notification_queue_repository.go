package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNotificationQueueRepository implements notification.QueueRepository using GORM
type GormNotificationQueueRepository struct {
	db *gorm.DB
}

// NewGormNotificationQueueRepository creates a new GormNotificationQueueRepository
func NewGormNotificationQueueRepository(db *gorm.DB) *GormNotificationQueueRepository {
	return &GormNotificationQueueRepository{db: db}
}

// Create inserts a new entry
func (r *GormNotificationQueueRepository) Create(ctx context.Context, entry *notification.QueueEntry) error {
	model := models.NotificationQueueModelFromDomain(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// FindByID loads one entry regardless of status
func (r *GormNotificationQueueRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.QueueEntry, error) {
	var model models.NotificationQueueModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	return model.ToDomain(), nil
}

// FindPending returns pending entries with retries left, oldest first
func (r *GormNotificationQueueRepository) FindPending(ctx context.Context, maxRetries, limit int) ([]notification.QueueEntry, error) {
	var rows []models.NotificationQueueModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND retry_count < ?", string(notification.StatusPending), maxRetries).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending notifications: %w", err)
	}

	entries := make([]notification.QueueEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// Claim moves an entry to processing with a compare-and-set update. Only
// one concurrent caller sees a row affected.
func (r *GormNotificationQueueRepository) Claim(ctx context.Context, id uuid.UUID, force bool) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.NotificationQueueModel{})
	if force {
		query = query.Where("id = ? AND status <> ?", id, string(notification.StatusProcessing))
	} else {
		query = query.Where("id = ? AND status = ?", id, string(notification.StatusPending))
	}

	result := query.Updates(map[string]any{
		"status":     string(notification.StatusProcessing),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim notification: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Update writes the outcome fields. Zero values are written too, so a reset
// retry_count or a cleared error message reaches the row.
func (r *GormNotificationQueueRepository) Update(ctx context.Context, entry *notification.QueueEntry) error {
	var errorMessage *string
	if entry.ErrorMessage != "" {
		msg := entry.ErrorMessage
		errorMessage = &msg
	}

	result := r.db.WithContext(ctx).
		Model(&models.NotificationQueueModel{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"status":        string(entry.Status),
			"retry_count":   entry.RetryCount,
			"error_message": errorMessage,
			"processed_at":  entry.ProcessedAt,
			"updated_at":    entry.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// statusCount is the scan target of the grouped count
type statusCount struct {
	Status string
	Count  int64
}

// CountByStatus counts entries per status. Statuses without rows are
// reported as zero.
func (r *GormNotificationQueueRepository) CountByStatus(ctx context.Context, tenantID *uuid.UUID) (map[notification.Status]int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.NotificationQueueModel{}).
		Select("status, count(*) as count")
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}

	var results []statusCount
	if err := query.Group("status").Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	counts := map[notification.Status]int64{
		notification.StatusPending:    0,
		notification.StatusProcessing: 0,
		notification.StatusSent:       0,
		notification.StatusFailed:     0,
	}
	for _, res := range results {
		counts[notification.Status(res.Status)] = res.Count
	}
	return counts, nil
}

// DeleteSentBefore removes sent entries processed before the cutoff
func (r *GormNotificationQueueRepository) DeleteSentBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", string(notification.StatusSent), before).
		Delete(&models.NotificationQueueModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete sent notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

var _ notification.QueueRepository = (*GormNotificationQueueRepository)(nil)
