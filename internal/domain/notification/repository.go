package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QueueRepository persists queue entries
type QueueRepository interface {
	// Create inserts a new entry
	Create(ctx context.Context, entry *QueueEntry) error
	// FindByID loads one entry regardless of status
	FindByID(ctx context.Context, id uuid.UUID) (*QueueEntry, error)
	// FindPending returns eligible entries oldest first
	FindPending(ctx context.Context, maxRetries, limit int) ([]QueueEntry, error)
	// Claim atomically moves an entry to processing. Without force only a
	// pending entry can be claimed. With force any entry that is not already
	// processing can be. It returns false when another writer won.
	Claim(ctx context.Context, id uuid.UUID, force bool) (bool, error)
	// Update writes the delivery outcome fields of an entry
	Update(ctx context.Context, entry *QueueEntry) error
	// CountByStatus counts entries per status, optionally for one tenant
	CountByStatus(ctx context.Context, tenantID *uuid.UUID) (map[Status]int64, error)
	// DeleteSentBefore removes sent entries processed before the cutoff
	DeleteSentBefore(ctx context.Context, before time.Time) (int64, error)
}
