package engine

import (
	"errors"
	"fmt"
)

// ErrAborted is returned from every suspension point once the scheduler has
// stopped and is tearing down the remaining tasks. Task bodies should return
// it (or wrap it) unchanged.
var ErrAborted = errors.New("engine: scenario aborted")

// RuntimeError represents a fatal condition detected while running a scenario.
//
// Runtime errors include:
//   - Timeout: simulated time would pass the configured budget
//   - Deadlock: no task is runnable and nothing is scheduled to wake one
//   - Delta overflow: one instant needed more delta cycles than allowed
//   - Task failure: a task returned an error or panicked
//   - Cancellation: the run context was cancelled
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Time is the simulated time at which the error was detected.
	Time Time

	// Task names the failing task (task failures only).
	Task string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeTimeout indicates the scenario exceeded its simulated time budget.
	ErrCodeTimeout RuntimeErrorCode = "SCENARIO_TIMEOUT"

	// ErrCodeDeadlock indicates nothing could ever become runnable again.
	ErrCodeDeadlock RuntimeErrorCode = "DEADLOCK"

	// ErrCodeDeltaOverflow indicates a zero-time loop of writes and wakeups.
	ErrCodeDeltaOverflow RuntimeErrorCode = "DELTA_OVERFLOW"

	// ErrCodeTaskFailed indicates a task returned an error or panicked.
	ErrCodeTaskFailed RuntimeErrorCode = "TASK_FAILED"

	// ErrCodeCancelled indicates the run context was cancelled.
	ErrCodeCancelled RuntimeErrorCode = "CANCELLED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s (t=%d)", e.Code, e.Message, e.Time)
	if e.Task != "" {
		msg = fmt.Sprintf("%s: %s (t=%d, task=%s)", e.Code, e.Message, e.Time, e.Task)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error { return e.Err }

// IsTimeout returns true if the scenario was stopped because it could not
// finish: either its time budget ran out or it deadlocked.
// Uses errors.As to handle wrapped errors.
func IsTimeout(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeTimeout || re.Code == ErrCodeDeadlock
	}
	return false
}

// IsTaskFailure returns true if a task aborted the scenario with an error.
func IsTaskFailure(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeTaskFailed
	}
	return false
}

func newTimeoutError(now, at, budget Time) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeTimeout,
		Message: fmt.Sprintf("next event at %d exceeds time budget %d", at, budget),
		Time:    now,
	}
}

func newDeadlockError(now Time, main string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeDeadlock,
		Message: fmt.Sprintf("no runnable task and no scheduled event while %q is waiting", main),
		Time:    now,
	}
}

func newTaskError(now Time, task string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeTaskFailed,
		Message: "task failed",
		Time:    now,
		Task:    task,
		Err:     err,
	}
}
