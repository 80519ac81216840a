// Package retry executes units of work under a retry profile: the operation
// retrier (Do, DoValue) runs a single remote call with capped geometric
// backoff and error-kind classification, and the session retrier (DoSession,
// DoSessionValue) re-runs a whole multi-operation workflow on a progressive
// delay schedule.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/limco/steadfast/backoff"
	"github.com/limco/steadfast/classify"
	"github.com/limco/steadfast/observe"
	"github.com/limco/steadfast/profile"
)

// Operation is a unit of work without a return value.
type Operation func(ctx context.Context) error

// OperationValue is a unit of work returning a value. The same signature
// serves session work: a closure that runs the whole workflow.
type OperationValue[T any] func(ctx context.Context) (T, error)

// Retrier drives both retry levels. It is immutable after construction and
// safe for concurrent use; all per-invocation state lives in the Result.
type Retrier struct {
	profiles          *profile.Registry
	classifiers       *classify.Registry
	defaultClassifier classify.Classifier
	observer          observe.Observer
	clock             func() time.Time
	sleep             func(context.Context, time.Duration) error
	randFloat         func() float64
	newID             func() string
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithProfiles sets the profile registry. The default registry carries only
// the built-in profiles.
func WithProfiles(reg *profile.Registry) Option {
	return func(r *Retrier) { r.profiles = reg }
}

// WithClassifiers sets the named-classifier registry consulted when a
// profile names a classifier.
func WithClassifiers(reg *classify.Registry) Option {
	return func(r *Retrier) { r.classifiers = reg }
}

// WithClassifier sets the classifier used when a profile does not name one.
func WithClassifier(c classify.Classifier) Option {
	return func(r *Retrier) { r.defaultClassifier = c }
}

// WithObserver sets the observability sink.
func WithObserver(o observe.Observer) Option {
	return func(r *Retrier) { r.observer = o }
}

// WithClock sets the time source.
func WithClock(f func() time.Time) Option {
	return func(r *Retrier) { r.clock = f }
}

// New creates a Retrier. Without options it uses a registry holding the
// built-in profiles, the default classification table, and a no-op observer.
func New(opts ...Option) *Retrier {
	r := &Retrier{}
	for _, opt := range opts {
		opt(r)
	}

	if r.profiles == nil {
		r.profiles = profile.NewRegistry()
		profile.RegisterBuiltins(r.profiles)
	}
	if r.classifiers == nil {
		r.classifiers = classify.NewRegistry()
		classify.RegisterBuiltins(r.classifiers)
	}
	if r.defaultClassifier == nil {
		r.defaultClassifier = classify.Default()
	}
	if r.observer == nil {
		r.observer = observe.NoopObserver{}
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.sleep == nil {
		r.sleep = sleepWithContext
	}
	if r.randFloat == nil {
		r.randFloat = rand.Float64
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	return r
}

// Profiles returns the retrier's profile registry.
func (r *Retrier) Profiles() *profile.Registry { return r.profiles }

// Do executes op under the named profile's operation retry parameters.
func (r *Retrier) Do(ctx context.Context, profileName string, op Operation) Result[struct{}] {
	return DoValue(ctx, r, profileName, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
}

// DoValue executes op under the named profile's operation retry parameters.
//
// Each attempt runs op exactly once. A nil error ends the loop with
// StatusSucceeded. A failure is classified: Fatal ends the loop immediately
// with StatusGaveUp; RateLimited and Transient schedule a capped, jittered
// geometric delay and retry until the budget of MaxRetries+1 attempts is
// spent. Context cancellation during a wait or an attempt surfaces
// StatusCanceled with a *CanceledError; no record is appended for an attempt
// that never began. The observer is invoked synchronously after every
// attempt.
func DoValue[T any](ctx context.Context, r *Retrier, profileName string, op OperationValue[T]) Result[T] {
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
	total := prof.Retry.MaxRetries + 1
	res.Attempts = make([]observe.AttemptRecord, 0, total)

	report := func(rec observe.AttemptRecord) {
		res.Attempts = append(res.Attempts, rec)
		r.observer.OnAttempt(ctx, observe.Attempt{
			Scope:        observe.ScopeOperation,
			ProfileName:  prof.Name,
			InvocationID: res.ID,
			MaxAttempts:  total,
			Record:       rec,
		})
	}

	var lastErr error
	for attempt := 1; attempt <= total; attempt++ {
		if ctx.Err() != nil {
			return finish(ctx, r, res, observe.ScopeOperation, StatusCanceled, &CanceledError{Err: ctx.Err()})
		}

		rec := observe.AttemptRecord{Attempt: attempt, StartedAt: r.clock()}
		val, err := op(ctx)
		if err == nil {
			report(rec)
			res.Value = val
			return finish(ctx, r, res, observe.ScopeOperation, StatusSucceeded, nil)
		}

		lastErr = err
		rec.Err = err
		rec.Kind = classifier.Classify(err)

		if ctx.Err() != nil {
			report(rec)
			return finish(ctx, r, res, observe.ScopeOperation, StatusCanceled, &CanceledError{Err: ctx.Err()})
		}

		if !rec.Kind.Retryable() || attempt == total {
			report(rec)
			return finish(ctx, r, res, observe.ScopeOperation, StatusGaveUp, lastErr)
		}

		delay := backoff.DelayWithRand(prof.Retry, attempt, r.randFloat)
		rec.NextDelay = delay
		report(rec)

		if err := r.sleep(ctx, delay); err != nil {
			return finish(ctx, r, res, observe.ScopeOperation, StatusCanceled, &CanceledError{Err: err})
		}
	}

	return finish(ctx, r, res, observe.ScopeOperation, StatusGaveUp, lastErr)
}

func (r *Retrier) resolveClassifier(prof profile.Profile) classify.Classifier {
	name := prof.Retry.Classifier
	if name == "" {
		return r.defaultClassifier
	}
	if c, ok := r.classifiers.Get(name); ok {
		return c
	}
	return r.defaultClassifier
}

func finish[T any](ctx context.Context, r *Retrier, res Result[T], scope observe.Scope, status Status, err error) Result[T] {
	res.Status = status
	res.Err = err
	res.End = r.clock()

	summary := observe.Summary{
		Scope:        scope,
		ProfileName:  res.ProfileName,
		InvocationID: res.ID,
		Start:        res.Start,
		End:          res.End,
		Attempts:     len(res.Attempts),
		Err:          err,
		Canceled:     status == StatusCanceled,
	}
	if status == StatusSucceeded {
		r.observer.OnSuccess(ctx, summary)
	} else {
		r.observer.OnFailure(ctx, summary)
	}
	return res
}

// sleepWithContext waits for d or until ctx is done, whichever comes first.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer func() {
		if !timer.Stop() {
			select {
			case <-timer.C: // drain a pending tick so the channel doesn't retain it
			default:
			}
		}
	}()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
