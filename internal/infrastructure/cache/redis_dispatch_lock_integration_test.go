//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisDispatchLock(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	first := NewRedisDispatchLockWithClient(client, "test:dispatch:")
	second := NewRedisDispatchLockWithClient(client, "test:dispatch:")

	ok, err := first.Acquire(ctx, "entry-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx, "entry-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a held lease is exclusive across owners")

	require.NoError(t, second.Release(ctx, "entry-1"))
	exists, err := client.Exists(ctx, "test:dispatch:entry-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists, "a foreign owner cannot release the lease")

	require.NoError(t, first.Release(ctx, "entry-1"))
	ok, err = second.Acquire(ctx, "entry-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := client.PTTL(ctx, "test:dispatch:entry-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
