// Package scheduler runs in-process periodic jobs: the notification worker,
// overdue marking and queue retention.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one tick of a periodic job
type Task func(ctx context.Context)

// Periodic runs a task on a fixed interval until stopped. Ticks never
// overlap: a slow task delays the next tick.
type Periodic struct {
	name       string
	interval   time.Duration
	task       Task
	runOnStart bool
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// Option tunes a Periodic
type Option func(*Periodic)

// RunOnStart executes the task once immediately after Start
func RunOnStart() Option {
	return func(p *Periodic) {
		p.runOnStart = true
	}
}

// NewPeriodic creates a periodic job
func NewPeriodic(name string, interval time.Duration, task Task, logger *zap.Logger, opts ...Option) *Periodic {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Periodic{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger.With(zap.String("job", name)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the job name
func (p *Periodic) Name() string {
	return p.name
}

// IsRunning reports whether the loop is active
func (p *Periodic) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isRunning
}

// Start launches the loop in the background
func (p *Periodic) Start(ctx context.Context) error {
	if p.interval <= 0 || p.task == nil {
		return fmt.Errorf("%w: %s needs a positive interval and a task", ErrInvalidConfig, p.name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isRunning {
		return ErrSchedulerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.isRunning = true

	p.wg.Add(1)
	go p.loop(ctx)

	p.logger.Info("Scheduler started", zap.Duration("interval", p.interval))
	return nil
}

// Stop cancels the loop and waits for the running tick to finish, or for
// ctx to expire.
func (p *Periodic) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	p.cancel()
	p.isRunning = false
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Periodic) loop(ctx context.Context) {
	defer p.wg.Done()

	if p.runOnStart {
		p.tick(ctx)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Periodic) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Scheduled task panicked", zap.Any("panic", r))
		}
	}()
	if ctx.Err() != nil {
		return
	}
	p.task(ctx)
}
