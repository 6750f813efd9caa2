package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/notification"
)

// NotificationQueueModel is the persistence model of a queue entry
type NotificationQueueModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	EventType    string    `gorm:"type:varchar(64);not null"`
	Payload      JSONMap   `gorm:"type:jsonb;not null"`
	Status       string    `gorm:"type:varchar(20);not null;default:pending;index:idx_notification_queue_status_created,priority:1"`
	RetryCount   int       `gorm:"not null;default:0"`
	ErrorMessage *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null;index:idx_notification_queue_status_created,priority:2"`
	UpdatedAt    time.Time `gorm:"not null"`
	ProcessedAt  *time.Time
}

// TableName returns the table name for GORM
func (NotificationQueueModel) TableName() string {
	return "notification_queue"
}

// ToDomain converts the model to a domain QueueEntry. The event type is
// copied verbatim so a row with an unknown type still reaches the worker,
// which fails it.
func (m *NotificationQueueModel) ToDomain() *notification.QueueEntry {
	e := &notification.QueueEntry{
		ID:          m.ID,
		TenantID:    m.TenantID,
		EventType:   notification.EventType(m.EventType),
		Payload:     notification.Payload(m.Payload),
		Status:      notification.Status(m.Status),
		RetryCount:  m.RetryCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		ProcessedAt: m.ProcessedAt,
	}
	if m.ErrorMessage != nil {
		e.ErrorMessage = *m.ErrorMessage
	}
	if e.Payload == nil {
		e.Payload = notification.Payload{}
	}
	return e
}

// NotificationQueueModelFromDomain creates a model from a domain QueueEntry
func NotificationQueueModelFromDomain(e *notification.QueueEntry) *NotificationQueueModel {
	m := &NotificationQueueModel{
		ID:          e.ID,
		TenantID:    e.TenantID,
		EventType:   string(e.EventType),
		Payload:     JSONMap(e.Payload),
		Status:      string(e.Status),
		RetryCount:  e.RetryCount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		ProcessedAt: e.ProcessedAt,
	}
	if e.ErrorMessage != "" {
		msg := e.ErrorMessage
		m.ErrorMessage = &msg
	}
	return m
}
