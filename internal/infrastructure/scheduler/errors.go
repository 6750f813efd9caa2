package scheduler

import "errors"

var (
	// ErrSchedulerRunning is returned when Start is called twice
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrSchedulerNotRunning is returned when stopping a scheduler that never started
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
