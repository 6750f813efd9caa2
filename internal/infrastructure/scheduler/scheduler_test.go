package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	notificationapp "github.com/motorshop/backend/internal/application/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPeriodic_RunsUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	p := NewPeriodic("test", 5*time.Millisecond, func(context.Context) { ticks.Add(1) }, zap.NewNop())

	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.IsRunning())
	assert.ErrorIs(t, p.Start(context.Background()), ErrSchedulerRunning)

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
	assert.False(t, p.IsRunning())

	stopped := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, ticks.Load())
}

func TestPeriodic_InvalidConfig(t *testing.T) {
	p := NewPeriodic("broken", 0, func(context.Context) {}, nil)

	assert.ErrorIs(t, p.Start(context.Background()), ErrInvalidConfig)
	assert.ErrorIs(t, p.Stop(context.Background()), ErrSchedulerNotRunning)
}

func TestPeriodic_RunOnStartAndPanicRecovery(t *testing.T) {
	var ticks atomic.Int32
	p := NewPeriodic("panicky", time.Hour, func(context.Context) {
		ticks.Add(1)
		panic("boom")
	}, zap.NewNop(), RunOnStart())

	require.NoError(t, p.Start(context.Background()))
	assert.Eventually(t, func() bool { return ticks.Load() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, p.Stop(context.Background()))
}

type fakeWorker struct{ runs atomic.Int32 }

func (w *fakeWorker) Run(_ context.Context, opts notificationapp.RunOptions) notificationapp.Summary {
	w.runs.Add(1)
	if opts.Immediate || opts.EntryID != nil {
		panic("scheduled runs are plain batch runs")
	}
	return notificationapp.Summary{Errors: []string{}}
}

type fakeMarker struct {
	calls atomic.Int32
	at    atomic.Value
	err   error
}

func (m *fakeMarker) MarkOverdue(_ context.Context, now time.Time) (int, error) {
	m.calls.Add(1)
	m.at.Store(now)
	return 1, m.err
}

type fakeCleaner struct {
	retention atomic.Int64
}

func (c *fakeCleaner) Cleanup(_ context.Context, olderThan time.Duration) (int64, error) {
	c.retention.Store(int64(olderThan))
	return 0, nil
}

func TestNotificationScheduler(t *testing.T) {
	worker := &fakeWorker{}
	s := NewNotificationScheduler(worker, 5*time.Millisecond, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return worker.runs.Load() >= 2 }, time.Second, time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, "notification_worker", s.Name())
}

func TestOverdueScheduler_RunsImmediatelyWithClock(t *testing.T) {
	fixed := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	marker := &fakeMarker{err: errors.New("db down")}
	s := NewOverdueScheduler(marker, time.Hour, zap.NewNop(), func() time.Time { return fixed })

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return marker.calls.Load() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, fixed, marker.at.Load())
}

func TestQueueCleanupScheduler(t *testing.T) {
	cleaner := &fakeCleaner{}
	s := NewQueueCleanupScheduler(cleaner, 30*24*time.Hour, 5*time.Millisecond, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return cleaner.retention.Load() == int64(30*24*time.Hour) }, time.Second, time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}
