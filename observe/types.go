// Package observe defines the observability sink for retriers: per-attempt
// callbacks carrying attempt number, error kind, and upcoming delay, plus
// start-to-end summaries. Callbacks run synchronously on the retrying
// goroutine; the retriers never depend on what an observer does with them.
package observe

import (
	"context"
	"time"

	"github.com/limco/steadfast/classify"
)

// Scope identifies which retry level produced an event.
type Scope int

const (
	ScopeOperation Scope = iota
	ScopeSession
)

func (s Scope) String() string {
	switch s {
	case ScopeSession:
		return "session"
	default:
		return "operation"
	}
}

// AttemptRecord describes one completed attempt. Records are append-only:
// the retrier fills one in, appends it to the result trail, and never edits
// it again.
type AttemptRecord struct {
	// Attempt is 1-based.
	Attempt   int
	StartedAt time.Time

	// Err is nil when the attempt succeeded.
	Err error

	// Kind is the classification of Err; meaningful only when Err != nil.
	Kind classify.Kind

	// NextDelay is the wait scheduled before the next attempt. Zero means
	// no retry follows (delays are bounded below by base*jitter.Low, so a
	// real delay is never zero).
	NextDelay time.Duration
}

// Succeeded reports whether the attempt completed without error.
func (r AttemptRecord) Succeeded() bool { return r.Err == nil }

// Attempt is the per-attempt callback payload: the record plus the calling
// context an observer needs to render progress.
type Attempt struct {
	Scope        Scope
	ProfileName  string
	InvocationID string

	// MaxAttempts is the total attempt budget (retries + 1).
	MaxAttempts int

	Record AttemptRecord
}

// Summary describes a finished invocation.
type Summary struct {
	Scope        Scope
	ProfileName  string
	InvocationID string
	Start, End   time.Time
	Attempts     int

	// Err is nil on success.
	Err error

	// Canceled is set when the invocation was cut short by context
	// cancellation rather than budget exhaustion.
	Canceled bool
}

// Observer receives lifecycle callbacks for a single retried invocation.
type Observer interface {
	OnAttempt(ctx context.Context, a Attempt)
	OnSuccess(ctx context.Context, s Summary)
	OnFailure(ctx context.Context, s Summary)
}
