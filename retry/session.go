package retry

import (
	"context"

	"github.com/limco/steadfast/backoff"
	"github.com/limco/steadfast/observe"
)

// DoSession executes work under the named profile's session retry
// parameters.
func (r *Retrier) DoSession(ctx context.Context, profileName string, work Operation) Result[struct{}] {
	return DoSessionValue(ctx, r, profileName, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, work(ctx)
	})
}

// DoSessionValue re-runs an entire multi-operation workflow from scratch
// when it fails as a whole. It differs from DoValue in two ways:
//
//   - Delays follow the profile's fixed progressive schedule (the last entry
//     repeats once attempts outrun it) rather than a backoff formula.
//   - There is no error-kind short-circuit: a session aggregates many calls
//     and does not classify as cleanly as a single one, so every failure is
//     retried until the session attempt budget is spent. Errors are still
//     classified so observers and the attempt trail can label them.
//
// Operation results produced inside work are never inspected or altered
// here; this loop only decides whether to run work again. Cancellation
// behaves as in DoValue.
func DoSessionValue[T any](ctx context.Context, r *Retrier, profileName string, work OperationValue[T]) Result[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	if r == nil {
		r = New()
	}

	res := Result[T]{ID: r.newID(), ProfileName: profileName, Start: r.clock()}

	prof, err := r.profiles.Get(profileName)
	if err != nil {
		res.Status = StatusGaveUp
		res.Err = err
		res.End = r.clock()
		return res
	}

	classifier := r.resolveClassifier(prof)
	total := prof.Session.MaxAttempts
	res.Attempts = make([]observe.AttemptRecord, 0, total)

	report := func(rec observe.AttemptRecord) {
		res.Attempts = append(res.Attempts, rec)
		r.observer.OnAttempt(ctx, observe.Attempt{
			Scope:        observe.ScopeSession,
			ProfileName:  prof.Name,
			InvocationID: res.ID,
			MaxAttempts:  total,
			Record:       rec,
		})
	}

	var lastErr error
	for attempt := 1; attempt <= total; attempt++ {
		if ctx.Err() != nil {
			return finish(ctx, r, res, observe.ScopeSession, StatusCanceled, &CanceledError{Err: ctx.Err()})
		}

		rec := observe.AttemptRecord{Attempt: attempt, StartedAt: r.clock()}
		val, err := work(ctx)
		if err == nil {
			report(rec)
			res.Value = val
			return finish(ctx, r, res, observe.ScopeSession, StatusSucceeded, nil)
		}

		lastErr = err
		rec.Err = err
		rec.Kind = classifier.Classify(err)

		if ctx.Err() != nil {
			report(rec)
			return finish(ctx, r, res, observe.ScopeSession, StatusCanceled, &CanceledError{Err: ctx.Err()})
		}

		if attempt == total {
			report(rec)
			return finish(ctx, r, res, observe.ScopeSession, StatusGaveUp, lastErr)
		}

		rec.NextDelay = backoff.ScheduleDelay(prof.Session.Schedule, attempt)
		report(rec)

		if err := r.sleep(ctx, rec.NextDelay); err != nil {
			return finish(ctx, r, res, observe.ScopeSession, StatusCanceled, &CanceledError{Err: err})
		}
	}

	return finish(ctx, r, res, observe.ScopeSession, StatusGaveUp, lastErr)
}
