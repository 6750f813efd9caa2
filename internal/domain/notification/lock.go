package notification

import (
	"context"
	"time"
)

// DispatchLock is a short lease taken around the dispatch of one entry so
// overlapping worker invocations never deliver the same entry twice.
type DispatchLock interface {
	// Acquire takes the lease for key. It returns false when another holder
	// owns an unexpired lease.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a lease held by this process. Releasing a lease that
	// expired or was taken over is a no-op.
	Release(ctx context.Context, key string) error
}
