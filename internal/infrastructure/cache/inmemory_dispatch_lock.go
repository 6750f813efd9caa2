package cache

import (
	"context"
	"sync"
	"time"

	"github.com/motorshop/backend/internal/domain/notification"
)

// InMemoryDispatchLock implements notification.DispatchLock in process.
// It only guards runs inside one instance.
type InMemoryDispatchLock struct {
	mu     sync.Mutex
	leases map[string]time.Time
	now    func() time.Time
}

// NewInMemoryDispatchLock creates an empty lock table
func NewInMemoryDispatchLock() *InMemoryDispatchLock {
	return &InMemoryDispatchLock{
		leases: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Acquire takes the lease unless an unexpired one exists
func (l *InMemoryDispatchLock) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, held := l.leases[key]; held && now.Before(expiresAt) {
		return false, nil
	}
	l.leases[key] = now.Add(ttl)

	// Drop expired leases on the way so the table stays small
	for k, expiresAt := range l.leases {
		if !now.Before(expiresAt) {
			delete(l.leases, k)
		}
	}
	return true, nil
}

// Release drops the lease
func (l *InMemoryDispatchLock) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.leases, key)
	return nil
}

// Size returns the number of live leases
func (l *InMemoryDispatchLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.leases)
}

var _ notification.DispatchLock = (*InMemoryDispatchLock)(nil)
