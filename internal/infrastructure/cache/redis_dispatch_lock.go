package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/redis/go-redis/v9"
)

// DefaultDispatchKeyPrefix namespaces dispatch lease keys
const DefaultDispatchKeyPrefix = "notification:dispatch:"

// releaseScript deletes the key only while it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisDispatchLock implements notification.DispatchLock with SET NX PX.
// Each process writes a random owner token so Release never drops a lease
// that expired and was taken over by another worker.
type RedisDispatchLock struct {
	client    redis.UniversalClient
	keyPrefix string
	owner     string
}

// NewRedisDispatchLock connects to Redis and verifies the connection
func NewRedisDispatchLock(cfg RedisConfig) (*RedisDispatchLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisDispatchLockWithClient(client, ""), nil
}

// NewRedisDispatchLockWithClient creates a lock on an existing client
func NewRedisDispatchLockWithClient(client redis.UniversalClient, keyPrefix string) *RedisDispatchLock {
	if keyPrefix == "" {
		keyPrefix = DefaultDispatchKeyPrefix
	}
	return &RedisDispatchLock{
		client:    client,
		keyPrefix: keyPrefix,
		owner:     uuid.NewString(),
	}
}

// Acquire takes the lease with SETNX and a TTL in one atomic command
func (l *RedisDispatchLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire dispatch lease: %w", err)
	}
	return ok, nil
}

// Release deletes the lease if this process still owns it
func (l *RedisDispatchLock) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, l.owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release dispatch lease: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisDispatchLock) Close() error {
	return l.client.Close()
}

var _ notification.DispatchLock = (*RedisDispatchLock)(nil)
