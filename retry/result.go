package retry

import (
	"errors"
	"time"

	"github.com/limco/steadfast/observe"
)

// ErrCanceled marks results cut short by context cancellation. It is
// distinct from budget exhaustion: a canceled invocation may have had
// retries left.
var ErrCanceled = errors.New("steadfast: canceled")

// CanceledError wraps the error observed when an invocation was canceled,
// usually the context's own error. It matches ErrCanceled under errors.Is.
type CanceledError struct {
	Err error
}

func (e *CanceledError) Error() string {
	if e == nil || e.Err == nil {
		return "steadfast: canceled"
	}
	return "steadfast: canceled: " + e.Err.Error()
}

func (e *CanceledError) Unwrap() error { return e.Err }

func (e *CanceledError) Is(target error) bool { return target == ErrCanceled }

// Status is the terminal state of a retried invocation.
type Status int

const (
	// StatusGaveUp means the invocation failed: either a Fatal error, an
	// exhausted retry budget, or a configuration error before the first
	// attempt.
	StatusGaveUp Status = iota

	// StatusSucceeded means an attempt completed without error.
	StatusSucceeded

	// StatusCanceled means context cancellation cut the invocation short.
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusCanceled:
		return "canceled"
	default:
		return "gave_up"
	}
}

// Result is the outcome of one Do/DoValue or DoSession/DoSessionValue
// invocation: the final value or error plus the full attempt trail. It is
// created fresh per invocation and owned by the caller; the retrier keeps no
// reference to it after returning.
type Result[T any] struct {
	// ID is a unique invocation identifier, usable to correlate log lines
	// from a session with the operation trails nested inside it.
	ID string

	ProfileName string
	Status      Status

	// Value holds the unit of work's return value; meaningful only when
	// Succeeded reports true.
	Value T

	// Err is the final error: the last attempt's error after exhaustion, the
	// first Fatal error, a *CanceledError, or a profile lookup failure. Nil
	// on success.
	Err error

	// Attempts is the ordered, append-only attempt trail.
	Attempts []observe.AttemptRecord

	Start, End time.Time
}

// Succeeded reports whether the invocation produced a value.
func (r Result[T]) Succeeded() bool { return r.Status == StatusSucceeded }

// Canceled reports whether the invocation was cut short by cancellation.
func (r Result[T]) Canceled() bool { return r.Status == StatusCanceled }
