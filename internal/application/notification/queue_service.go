package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EntryDTO is the API view of a queue entry
type EntryDTO struct {
	ID           uuid.UUID            `json:"id"`
	TenantID     uuid.UUID            `json:"tenant_id"`
	EventType    string               `json:"event_type"`
	Payload      notification.Payload `json:"payload"`
	Status       string               `json:"status"`
	RetryCount   int                  `json:"retry_count"`
	ErrorMessage string               `json:"error_message,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	ProcessedAt  *time.Time           `json:"processed_at,omitempty"`
}

// QueueStatsDTO counts entries per status
type QueueStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Total      int64 `json:"total"`
}

func toEntryDTO(e *notification.QueueEntry) EntryDTO {
	return EntryDTO{
		ID:           e.ID,
		TenantID:     e.TenantID,
		EventType:    e.EventType.String(),
		Payload:      e.Payload,
		Status:       string(e.Status),
		RetryCount:   e.RetryCount,
		ErrorMessage: e.ErrorMessage,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
		ProcessedAt:  e.ProcessedAt,
	}
}

// QueueService enqueues notifications and offers operator actions on the
// queue. Retention cleanup lives here and never runs inside the worker.
type QueueService struct {
	repo   notification.QueueRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewQueueService creates a queue service
func NewQueueService(repo notification.QueueRepository, log *zap.Logger) *QueueService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueueService{repo: repo, logger: log, now: time.Now}
}

// Enqueue inserts a pending entry. It satisfies the producer contract used
// by the invoice lifecycle.
func (s *QueueService) Enqueue(ctx context.Context, tenantID uuid.UUID, eventType notification.EventType, payload notification.Payload) (*EntryDTO, error) {
	entry, err := notification.NewQueueEntry(tenantID, eventType, payload)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to enqueue notification",
			zap.String("tenant_id", tenantID.String()),
			zap.String("event_type", eventType.String()),
			zap.Error(err))
		return nil, err
	}
	s.logger.Debug("Notification enqueued",
		zap.String("entry_id", entry.ID.String()),
		zap.String("event_type", eventType.String()))
	dto := toEntryDTO(entry)
	return &dto, nil
}

// Get returns one entry visible to the caller
func (s *QueueService) Get(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*EntryDTO, error) {
	entry, err := s.find(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	dto := toEntryDTO(entry)
	return &dto, nil
}

// Stats counts the caller's entries per status. A super admin without a
// tenant sees the whole queue.
func (s *QueueService) Stats(ctx context.Context, tc shared.TenantContext) (*QueueStatsDTO, error) {
	var tenantID *uuid.UUID
	if tc.TenantID != uuid.Nil || !tc.IsSuperAdmin {
		id := tc.TenantID
		tenantID = &id
	}
	counts, err := s.repo.CountByStatus(ctx, tenantID)
	if err != nil {
		s.logger.Error("Failed to count notifications", zap.Error(err))
		return nil, err
	}
	stats := &QueueStatsDTO{
		Pending:    counts[notification.StatusPending],
		Processing: counts[notification.StatusProcessing],
		Sent:       counts[notification.StatusSent],
		Failed:     counts[notification.StatusFailed],
	}
	stats.Total = stats.Pending + stats.Processing + stats.Sent + stats.Failed
	return stats, nil
}

// Retry resets a failed entry to pending with a fresh retry budget
func (s *QueueService) Retry(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*EntryDTO, error) {
	entry, err := s.find(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if err := entry.ResetForRetry(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to reset notification", zap.String("entry_id", id.String()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Notification reset for retry",
		zap.String("entry_id", id.String()),
		zap.String("event_type", entry.EventType.String()))
	dto := toEntryDTO(entry)
	return &dto, nil
}

// Cleanup deletes sent entries processed more than olderThan ago
func (s *QueueService) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, shared.NewValidationError("retention must be positive")
	}
	cutoff := s.now().Add(-olderThan)
	deleted, err := s.repo.DeleteSentBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to clean up notifications", zap.Error(err))
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("Cleaned up sent notifications",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

// QueueDepth reports the whole queue per status for the depth gauge
func (s *QueueService) QueueDepth(ctx context.Context) (map[string]int64, error) {
	counts, err := s.repo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}
	return out, nil
}

func (s *QueueService) find(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*notification.QueueEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Notification not found")
		}
		return nil, err
	}
	if !tc.CanAccess(entry.TenantID) {
		return nil, shared.NewNotFoundError("Notification not found")
	}
	return entry, nil
}
