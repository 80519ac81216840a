package observe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/limco/steadfast/classify"
)

// LogObserver renders retry progress through slog, one line per event, in
// the vocabulary users of the CLI layer expect:
//
//	🐌 rate limited, retrying in 12.4s (attempt 3/9)
//	⚠️ transient error, retrying in 4.7s (attempt 1/9)
//	🔄 session failed, restarting in 120s (attempt 2/5)
//	✅ succeeded after 3 attempts
//	❌ gave up after 9 attempts
type LogObserver struct {
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

func (o LogObserver) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o LogObserver) OnAttempt(ctx context.Context, a Attempt) {
	rec := a.Record
	attrs := []any{
		"scope", a.Scope.String(),
		"profile", a.ProfileName,
		"attempt", rec.Attempt,
		"max_attempts", a.MaxAttempts,
		"invocation", a.InvocationID,
	}

	if rec.Succeeded() {
		o.logger().DebugContext(ctx, "attempt succeeded", attrs...)
		return
	}

	attrs = append(attrs, "kind", rec.Kind.String(), "error", rec.Err)

	if rec.NextDelay <= 0 {
		o.logger().WarnContext(ctx, "❌ "+rec.Kind.String()+" error, not retrying", attrs...)
		return
	}

	var msg string
	switch {
	case a.Scope == ScopeSession:
		msg = fmt.Sprintf("🔄 session failed, restarting in %.1fs (attempt %d/%d)",
			rec.NextDelay.Seconds(), rec.Attempt, a.MaxAttempts)
	case rec.Kind == classify.KindRateLimited:
		msg = fmt.Sprintf("🐌 rate limited, retrying in %.1fs (attempt %d/%d)",
			rec.NextDelay.Seconds(), rec.Attempt, a.MaxAttempts)
	default:
		msg = fmt.Sprintf("⚠️ transient error, retrying in %.1fs (attempt %d/%d)",
			rec.NextDelay.Seconds(), rec.Attempt, a.MaxAttempts)
	}
	o.logger().WarnContext(ctx, msg, attrs...)
}

func (o LogObserver) OnSuccess(ctx context.Context, s Summary) {
	if s.Attempts <= 1 {
		return
	}
	o.logger().InfoContext(ctx, fmt.Sprintf("✅ succeeded after %d attempts", s.Attempts),
		"scope", s.Scope.String(),
		"profile", s.ProfileName,
		"invocation", s.InvocationID,
		"elapsed", s.End.Sub(s.Start),
	)
}

func (o LogObserver) OnFailure(ctx context.Context, s Summary) {
	msg := fmt.Sprintf("❌ gave up after %d attempts", s.Attempts)
	if s.Canceled {
		msg = fmt.Sprintf("⏸️ canceled after %d attempts", s.Attempts)
	}
	o.logger().ErrorContext(ctx, msg,
		"scope", s.Scope.String(),
		"profile", s.ProfileName,
		"invocation", s.InvocationID,
		"elapsed", s.End.Sub(s.Start),
		"error", s.Err,
	)
}
