package notification

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/messaging"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/logger"
	"github.com/motorshop/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Outcome labels recorded per processed entry
const (
	OutcomeSent   = "sent"
	OutcomeRetry  = "retry"
	OutcomeFailed = "failed"
)

// WorkerConfig holds the batch parameters of the delivery worker
type WorkerConfig struct {
	BatchSize  int
	MaxRetries int
	// LeaseTTL bounds the dispatch lease taken per entry
	LeaseTTL time.Duration
}

// DefaultWorkerConfig returns the standard batch parameters
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		BatchSize:  50,
		MaxRetries: notification.DefaultMaxRetries,
		LeaseTTL:   2 * time.Minute,
	}
}

// RunOptions tune a single invocation
type RunOptions struct {
	// Immediate marks a manual run that bypassed the trigger secret
	Immediate bool
	// EntryID forces exactly one entry, regardless of its status
	EntryID *uuid.UUID
}

// Summary is the result of one invocation
type Summary struct {
	Processed int      `json:"processed"`
	Sent      int      `json:"sent"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
	Error     string   `json:"error,omitempty"`
}

// Dispatcher delivers one entry. A result with Success=false is a delivery
// failure and consumes a retry. A returned error (or a panic) is a contract
// failure and fails the entry at once.
type Dispatcher interface {
	Dispatch(ctx context.Context, entry *notification.QueueEntry) (messaging.SendResult, error)
}

// DispatchFunc adapts a function to Dispatcher
type DispatchFunc func(ctx context.Context, entry *notification.QueueEntry) (messaging.SendResult, error)

// Dispatch calls f
func (f DispatchFunc) Dispatch(ctx context.Context, entry *notification.QueueEntry) (messaging.SendResult, error) {
	return f(ctx, entry)
}

// WorkerOption configures optional collaborators
type WorkerOption func(*Worker)

// WithDispatchLock guards each dispatch with a lease
func WithDispatchLock(lock notification.DispatchLock) WorkerOption {
	return func(w *Worker) { w.lock = lock }
}

// WithWorkerMetrics records per-entry outcomes
func WithWorkerMetrics(m *telemetry.DeliveryMetrics) WorkerOption {
	return func(w *Worker) { w.metrics = m }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) WorkerOption {
	return func(w *Worker) { w.now = now }
}

// Worker drains the notification queue. Entries are processed one at a time
// in created_at order.
type Worker struct {
	repo       notification.QueueRepository
	dispatcher Dispatcher
	lock       notification.DispatchLock
	metrics    *telemetry.DeliveryMetrics
	config     WorkerConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewWorker creates a worker
func NewWorker(repo notification.QueueRepository, dispatcher Dispatcher, cfg WorkerConfig, log *zap.Logger, opts ...WorkerOption) *Worker {
	defaults := DefaultWorkerConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = defaults.LeaseTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &Worker{
		repo:       repo,
		dispatcher: dispatcher,
		config:     cfg,
		logger:     log.Named("notification_worker"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes one batch, or the single entry named by opts.EntryID. It
// never returns an error: failures to read the queue are reported in
// Summary.Error and per-entry failures in Summary.Errors. Cancelling ctx
// does not stop a started batch.
func (w *Worker) Run(ctx context.Context, opts RunOptions) Summary {
	ctx = context.WithoutCancel(ctx)
	ctx, span := telemetry.StartServiceSpan(ctx, "NotificationWorker", "Run",
		telemetry.WithAttribute("immediate", opts.Immediate))
	defer span.End()

	log := logger.L(ctx, w.logger)
	summary := Summary{Errors: []string{}}

	entries, err := w.load(ctx, opts)
	if err != nil {
		log.Error("Failed to load notification queue", zap.Error(err))
		telemetry.RecordError(span, err)
		summary.Error = err.Error()
		return summary
	}

	force := opts.EntryID != nil
	for i := range entries {
		w.processEntry(ctx, &entries[i], force, &summary)
	}

	telemetry.SetAttributes(span,
		"processed", summary.Processed,
		"sent", summary.Sent,
		"failed", summary.Failed)
	telemetry.SetOK(span)

	if summary.Processed > 0 {
		log.Info("Notification batch processed",
			zap.Int("processed", summary.Processed),
			zap.Int("sent", summary.Sent),
			zap.Int("failed", summary.Failed))
	}
	return summary
}

func (w *Worker) load(ctx context.Context, opts RunOptions) ([]notification.QueueEntry, error) {
	if opts.EntryID == nil {
		entries, err := w.repo.FindPending(ctx, w.config.MaxRetries, w.config.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load pending notifications: %w", err)
		}
		return entries, nil
	}

	entry, err := w.repo.FindByID(ctx, *opts.EntryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("notification %s not found", *opts.EntryID)
		}
		return nil, fmt.Errorf("failed to load notification %s: %w", *opts.EntryID, err)
	}
	return []notification.QueueEntry{*entry}, nil
}

func (w *Worker) processEntry(ctx context.Context, entry *notification.QueueEntry, force bool, summary *Summary) {
	ctx, span := telemetry.StartSpan(ctx, "notification.dispatch",
		telemetry.WithAttribute(telemetry.SpanAttrEntryID, entry.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrEventType, entry.EventType.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAttempt, entry.RetryCount+1))
	defer span.End()

	log := logger.L(ctx, w.logger).With(
		zap.String("entry_id", entry.ID.String()),
		zap.String("event_type", entry.EventType.String()),
		zap.Int("retry_count", entry.RetryCount))

	if w.lock != nil {
		key := entry.ID.String()
		acquired, err := w.lock.Acquire(ctx, key, w.config.LeaseTTL)
		switch {
		case err != nil:
			// the compare-and-set claim below still guards the entry
			log.Warn("Dispatch lease unavailable", zap.Error(err))
		case !acquired:
			log.Debug("Entry is leased by another worker, skipping")
			return
		default:
			defer func() {
				if err := w.lock.Release(ctx, key); err != nil {
					log.Warn("Failed to release dispatch lease", zap.Error(err))
				}
			}()
		}
	}

	claimed, err := w.repo.Claim(ctx, entry.ID, force)
	if err != nil {
		log.Error("Failed to claim notification", zap.Error(err))
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", entry.ID, err))
		return
	}
	if !claimed {
		log.Debug("Entry already claimed, skipping")
		return
	}
	now := w.now()
	entry.MarkProcessing(now)
	summary.Processed++

	result, err := w.dispatch(ctx, entry)
	now = w.now()
	var outcome string
	switch {
	case err != nil:
		entry.MarkFailed(err.Error(), now)
		outcome = OutcomeFailed
		summary.Failed++
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", entry.ID, err.Error()))
		telemetry.RecordError(span, err)
		log.Error("Notification dispatch raised an error", zap.Error(err))
	case !result.Success:
		message := result.Error
		if message == "" {
			message = "delivery failed"
		}
		entry.RecordFailure(message, w.config.MaxRetries, now)
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", entry.ID, message))
		if entry.Status == notification.StatusFailed {
			outcome = OutcomeFailed
			summary.Failed++
			log.Warn("Notification failed after exhausting retries",
				zap.Int("attempts", entry.RetryCount), zap.String("error", message))
		} else {
			outcome = OutcomeRetry
			log.Info("Notification delivery failed, will retry",
				zap.Int("attempts", entry.RetryCount), zap.String("error", message))
		}
		telemetry.AddEvent(span, "delivery_failed", "error", message)
	default:
		entry.MarkSent(now)
		outcome = OutcomeSent
		summary.Sent++
		telemetry.SetOK(span)
	}

	if err := w.repo.Update(ctx, entry); err != nil {
		log.Error("Failed to record notification outcome", zap.String("outcome", outcome), zap.Error(err))
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", entry.ID, err))
	}
	w.metrics.RecordNotification(ctx, entry.EventType.String(), outcome)
}

// dispatch converts a notifier panic into an error
func (w *Worker) dispatch(ctx context.Context, entry *notification.QueueEntry) (result messaging.SendResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Notifier panicked",
				zap.String("entry_id", entry.ID.String()),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return w.dispatcher.Dispatch(ctx, entry)
}
