package cache

import (
	"fmt"

	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DispatchLockFactory creates dispatch locks based on configuration
type DispatchLockFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// DispatchLockFactoryOption is a functional option for configuring the factory
type DispatchLockFactoryOption func(*DispatchLockFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) DispatchLockFactoryOption {
	return func(f *DispatchLockFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory lock. Default is true.
func WithInMemoryFallback(allow bool) DispatchLockFactoryOption {
	return func(f *DispatchLockFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewDispatchLockFactory creates a new factory
func NewDispatchLockFactory(cfg config.RedisConfig, opts ...DispatchLockFactoryOption) *DispatchLockFactory {
	f := &DispatchLockFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis lock when Redis is configured and reachable, an
// in-memory lock when Redis is not configured, and falls back to in-memory
// on connection failure when allowed.
func (f *DispatchLockFactory) Create() (notification.DispatchLock, error) {
	if f.redisConfig.Host == "" {
		f.logger.Info("Redis not configured, using in-memory dispatch lock")
		return NewInMemoryDispatchLock(), nil
	}

	lock, err := NewRedisDispatchLock(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis dispatch lock", zap.String("addr", f.redisConfig.Addr()))
		return lock, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for dispatch lock but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory dispatch lock. "+
		"Overlapping workers on other instances are then guarded by the queue claim only.",
		zap.Error(err),
	)
	return NewInMemoryDispatchLock(), nil
}
