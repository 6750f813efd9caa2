package notification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
)

// memoryQueue is a QueueRepository holding copies of entries in a map
type memoryQueue struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]notification.QueueEntry
	findErr   error
	updateErr error
	claims    int
}

func newMemoryQueue(entries ...*notification.QueueEntry) *memoryQueue {
	q := &memoryQueue{entries: make(map[uuid.UUID]notification.QueueEntry)}
	for _, e := range entries {
		q.entries[e.ID] = *e
	}
	return q
}

func (q *memoryQueue) Create(_ context.Context, entry *notification.QueueEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[entry.ID] = *entry
	return nil
}

func (q *memoryQueue) FindByID(_ context.Context, id uuid.UUID) (*notification.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &e, nil
}

func (q *memoryQueue) FindPending(_ context.Context, maxRetries, limit int) ([]notification.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.findErr != nil {
		return nil, q.findErr
	}
	var out []notification.QueueEntry
	for _, e := range q.entries {
		if e.IsEligible(maxRetries) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (q *memoryQueue) Claim(_ context.Context, id uuid.UUID, force bool) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.claims++
	e, ok := q.entries[id]
	if !ok {
		return false, nil
	}
	if e.Status == notification.StatusProcessing || (!force && e.Status != notification.StatusPending) {
		return false, nil
	}
	e.Status = notification.StatusProcessing
	q.entries[id] = e
	return true, nil
}

func (q *memoryQueue) Update(_ context.Context, entry *notification.QueueEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.updateErr != nil {
		return q.updateErr
	}
	q.entries[entry.ID] = *entry
	return nil
}

func (q *memoryQueue) CountByStatus(_ context.Context, tenantID *uuid.UUID) (map[notification.Status]int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.findErr != nil {
		return nil, q.findErr
	}
	out := make(map[notification.Status]int64)
	for _, e := range q.entries {
		if tenantID != nil && e.TenantID != *tenantID {
			continue
		}
		out[e.Status]++
	}
	return out, nil
}

func (q *memoryQueue) DeleteSentBefore(_ context.Context, before time.Time) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var n int64
	for id, e := range q.entries {
		if e.Status == notification.StatusSent && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(q.entries, id)
			n++
		}
	}
	return n, nil
}

func (q *memoryQueue) get(id uuid.UUID) notification.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.entries[id]
}

// heldLock reports every key as leased elsewhere
type heldLock struct{}

func (heldLock) Acquire(context.Context, string, time.Duration) (bool, error) { return false, nil }
func (heldLock) Release(context.Context, string) error                        { return nil }

// brokenLock fails every call
type brokenLock struct{}

func (brokenLock) Acquire(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}
func (brokenLock) Release(context.Context, string) error { return nil }

func pendingEntry(tenantID uuid.UUID, eventType notification.EventType, payload notification.Payload, createdAt time.Time) *notification.QueueEntry {
	e, err := notification.NewQueueEntry(tenantID, eventType, payload)
	if err != nil {
		panic(err)
	}
	e.CreatedAt = createdAt
	e.UpdatedAt = createdAt
	return e
}
