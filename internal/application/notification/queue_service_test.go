package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueService_Enqueue(t *testing.T) {
	repo := newMemoryQueue()
	svc := NewQueueService(repo, nil)
	tenant := uuid.New()

	dto, err := svc.Enqueue(context.Background(), tenant, notification.EventVehicleReady,
		notification.Payload{notification.KeyVehicleNumber: "KA01AB1234"})
	require.NoError(t, err)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, 0, dto.RetryCount)
	assert.Equal(t, "vehicle_ready", dto.EventType)

	stored := repo.get(dto.ID)
	assert.Equal(t, tenant, stored.TenantID)

	_, err = svc.Enqueue(context.Background(), tenant, notification.EventType("balance_changed"), nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestQueueService_Stats(t *testing.T) {
	tenant := uuid.New()
	other := uuid.New()
	now := time.Now()

	sent := pendingEntry(tenant, notification.EventVehicleReady, nil, now)
	sent.MarkSent(now)
	failed := pendingEntry(tenant, notification.EventVehicleReady, nil, now)
	failed.MarkFailed("boom", now)
	repo := newMemoryQueue(
		pendingEntry(tenant, notification.EventVehicleReady, nil, now),
		pendingEntry(tenant, notification.EventVehicleReady, nil, now),
		sent,
		failed,
		pendingEntry(other, notification.EventVehicleReady, nil, now),
	)
	svc := NewQueueService(repo, nil)

	stats, err := svc.Stats(context.Background(), shared.NewTenantContext(tenant, uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, &QueueStatsDTO{Pending: 2, Sent: 1, Failed: 1, Total: 4}, stats)

	all, err := svc.Stats(context.Background(), shared.SystemContext())
	require.NoError(t, err)
	assert.Equal(t, int64(5), all.Total)

	depth, err := svc.QueueDepth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), depth["pending"])
}

func TestQueueService_StatsError(t *testing.T) {
	repo := newMemoryQueue()
	repo.findErr = errors.New("connection reset")

	_, err := NewQueueService(repo, nil).Stats(context.Background(), shared.SystemContext())
	assert.Error(t, err)
}

func TestQueueService_Retry(t *testing.T) {
	tenant := uuid.New()
	entry := pendingEntry(tenant, notification.EventInvoiceIssued, nil, time.Now())
	entry.RetryCount = 3
	entry.MarkFailed("gateway returned 500", time.Now())
	repo := newMemoryQueue(entry)
	svc := NewQueueService(repo, nil)

	dto, err := svc.Retry(context.Background(), shared.NewTenantContext(tenant, uuid.New()), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, 0, dto.RetryCount)

	stored := repo.get(entry.ID)
	assert.Equal(t, notification.StatusPending, stored.Status)
	assert.Empty(t, stored.ErrorMessage)

	// only failed entries can be retried
	_, err = svc.Retry(context.Background(), shared.NewTenantContext(tenant, uuid.New()), entry.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestQueueService_RetryOtherTenant(t *testing.T) {
	entry := pendingEntry(uuid.New(), notification.EventInvoiceIssued, nil, time.Now())
	entry.MarkFailed("boom", time.Now())
	svc := NewQueueService(newMemoryQueue(entry), nil)

	_, err := svc.Retry(context.Background(), shared.NewTenantContext(uuid.New(), uuid.New()), entry.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Get(context.Background(), shared.NewTenantContext(uuid.New(), uuid.New()), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestQueueService_Cleanup(t *testing.T) {
	tenant := uuid.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	old := pendingEntry(tenant, notification.EventVehicleReady, nil, now.AddDate(0, 0, -40))
	old.MarkSent(now.AddDate(0, 0, -40))
	recent := pendingEntry(tenant, notification.EventVehicleReady, nil, now.AddDate(0, 0, -2))
	recent.MarkSent(now.AddDate(0, 0, -2))
	oldFailed := pendingEntry(tenant, notification.EventVehicleReady, nil, now.AddDate(0, 0, -40))
	oldFailed.MarkFailed("boom", now.AddDate(0, 0, -40))
	repo := newMemoryQueue(old, recent, oldFailed)

	svc := NewQueueService(repo, nil)
	svc.now = func() time.Time { return now }

	deleted, err := svc.Cleanup(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(context.Background(), old.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindByID(context.Background(), oldFailed.ID)
	assert.NoError(t, err)

	_, err = svc.Cleanup(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
