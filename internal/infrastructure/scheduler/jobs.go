package scheduler

import (
	"context"
	"time"

	notificationapp "github.com/motorshop/backend/internal/application/notification"
	"go.uber.org/zap"
)

// WorkerRunner runs one notification delivery batch
type WorkerRunner interface {
	Run(ctx context.Context, opts notificationapp.RunOptions) notificationapp.Summary
}

// OverdueMarker flips past-due invoices to overdue
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

// QueueCleaner purges terminal queue entries
type QueueCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NewNotificationScheduler drives the delivery worker from a ticker. It is the
// in-process alternative to calling the trigger endpoint from cron.
func NewNotificationScheduler(worker WorkerRunner, interval time.Duration, logger *zap.Logger) *Periodic {
	logger = orNop(logger)
	return NewPeriodic("notification_worker", interval, func(ctx context.Context) {
		summary := worker.Run(ctx, notificationapp.RunOptions{})
		if summary.Error != "" {
			logger.Error("Scheduled notification run failed", zap.String("error", summary.Error))
		}
	}, logger)
}

// NewOverdueScheduler marks overdue invoices on every tick
func NewOverdueScheduler(marker OverdueMarker, interval time.Duration, logger *zap.Logger, now func() time.Time) *Periodic {
	logger = orNop(logger)
	if now == nil {
		now = time.Now
	}
	return NewPeriodic("invoice_overdue", interval, func(ctx context.Context) {
		marked, err := marker.MarkOverdue(ctx, now())
		if err != nil {
			logger.Error("Scheduled overdue marking failed", zap.Error(err))
			return
		}
		if marked > 0 {
			logger.Info("Invoices marked overdue", zap.Int("count", marked))
		}
	}, logger, RunOnStart())
}

// NewQueueCleanupScheduler deletes sent entries older than retention
func NewQueueCleanupScheduler(cleaner QueueCleaner, retention, interval time.Duration, logger *zap.Logger) *Periodic {
	logger = orNop(logger)
	return NewPeriodic("notification_cleanup", interval, func(ctx context.Context) {
		if _, err := cleaner.Cleanup(ctx, retention); err != nil {
			logger.Error("Notification queue cleanup failed", zap.Error(err))
		}
	}, logger)
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
