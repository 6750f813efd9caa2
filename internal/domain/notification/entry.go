package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/shared"
)

// Status is the delivery status of a queue entry
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSent, StatusFailed:
		return true
	}
	return false
}

// DefaultMaxRetries bounds how many failed deliveries an entry may accumulate
const DefaultMaxRetries = 3

// QueueEntry is one outbound message waiting for delivery
type QueueEntry struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	EventType    EventType
	Payload      Payload
	Status       Status
	RetryCount   int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ProcessedAt  *time.Time
}

// NewQueueEntry creates a pending entry for a known event type
func NewQueueEntry(tenantID uuid.UUID, eventType EventType, payload Payload) (*QueueEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant id is required")
	}
	if !eventType.IsValid() {
		return nil, shared.NewValidationError("unknown event type: " + string(eventType))
	}
	if payload == nil {
		payload = Payload{}
	}
	now := time.Now()
	return &QueueEntry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		EventType:  eventType,
		Payload:    payload,
		Status:     StatusPending,
		RetryCount: 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsEligible reports whether the entry may be picked up by a batch run
func (e *QueueEntry) IsEligible(maxRetries int) bool {
	return e.Status == StatusPending && e.RetryCount < maxRetries
}

// IsTerminal reports whether the entry must not be processed again
func (e *QueueEntry) IsTerminal() bool {
	return e.Status == StatusSent || e.Status == StatusFailed
}

// MarkProcessing moves the entry into processing
func (e *QueueEntry) MarkProcessing(now time.Time) {
	e.Status = StatusProcessing
	e.UpdatedAt = now
}

// MarkSent records a successful delivery
func (e *QueueEntry) MarkSent(now time.Time) {
	e.Status = StatusSent
	e.ErrorMessage = ""
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// RecordFailure counts a failed delivery. The entry returns to pending while
// retries remain and becomes failed once retry_count reaches maxRetries.
func (e *QueueEntry) RecordFailure(message string, maxRetries int, now time.Time) {
	e.RetryCount++
	e.ErrorMessage = message
	e.UpdatedAt = now
	if e.RetryCount < maxRetries {
		e.Status = StatusPending
		return
	}
	e.Status = StatusFailed
	e.ProcessedAt = &now
}

// MarkFailed fails the entry without consuming a retry
func (e *QueueEntry) MarkFailed(message string, now time.Time) {
	e.Status = StatusFailed
	e.ErrorMessage = message
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// ResetForRetry returns a failed entry to the queue with a fresh retry budget
func (e *QueueEntry) ResetForRetry(now time.Time) error {
	if e.Status != StatusFailed {
		return shared.NewInvalidStateError("only failed notifications can be retried")
	}
	e.Status = StatusPending
	e.RetryCount = 0
	e.ErrorMessage = ""
	e.ProcessedAt = nil
	e.UpdatedAt = now
	return nil
}
