package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/limco/steadfast/classify"
	"github.com/limco/steadfast/observe"
	"github.com/limco/steadfast/profile"
)

func TestDoValue_Trivial(t *testing.T) {
	r, sleeps := newTestRetrier(t)

	calls := 0
	res := DoValue(context.Background(), r, profile.NameConservative, func(context.Context) (int, error) {
		calls++
		return 42, nil
	})

	if !res.Succeeded() || res.Value != 42 {
		t.Fatalf("res=%+v", res)
	}
	if calls != 1 || len(res.Attempts) != 1 {
		t.Fatalf("calls=%d attempts=%d, want 1/1", calls, len(res.Attempts))
	}
	if len(*sleeps) != 0 {
		t.Fatalf("sleeps=%v, want none", *sleeps)
	}
	if res.Err != nil {
		t.Fatalf("err=%v, want nil", res.Err)
	}
}

func TestDoValue_FatalNeverRetried(t *testing.T) {
	r, sleeps := newTestRetrier(t)

	fatal := errors.New("invalid api key")
	calls := 0
	res := DoValue(context.Background(), r, profile.NameConservative, func(context.Context) (int, error) {
		calls++
		return 0, fatal
	})

	if calls != 1 {
		t.Fatalf("calls=%d, want 1 regardless of budget", calls)
	}
	if res.Status != StatusGaveUp || !errors.Is(res.Err, fatal) {
		t.Fatalf("res=%+v", res)
	}
	if len(res.Attempts) != 1 {
		t.Fatalf("attempts=%d, want 1", len(res.Attempts))
	}
	rec := res.Attempts[0]
	if rec.Kind != classify.KindFatal || rec.NextDelay != 0 {
		t.Fatalf("record=%+v", rec)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("sleeps=%v, want none", *sleeps)
	}
}

func TestDoValue_RateLimitedThenSuccess(t *testing.T) {
	r, sleeps := newTestRetrier(t)

	const k = 3
	calls := 0
	res := DoValue(context.Background(), r, profile.NameConservative, func(context.Context) (string, error) {
		calls++
		if calls <= k {
			return "", errors.New("429 too many requests")
		}
		return "done", nil
	})

	if !res.Succeeded() || res.Value != "done" {
		t.Fatalf("res=%+v", res)
	}
	if len(res.Attempts) != k+1 {
		t.Fatalf("attempts=%d, want %d", len(res.Attempts), k+1)
	}
	if len(*sleeps) != k {
		t.Fatalf("sleeps=%d, want %d", len(*sleeps), k)
	}
	for i, rec := range res.Attempts[:k] {
		if rec.Kind != classify.KindRateLimited {
			t.Fatalf("attempt %d kind=%v", i+1, rec.Kind)
		}
		if rec.NextDelay <= 0 {
			t.Fatalf("attempt %d has no scheduled delay", i+1)
		}
	}
	last := res.Attempts[k]
	if !last.Succeeded() || last.NextDelay != 0 {
		t.Fatalf("final record=%+v", last)
	}
}

func TestDoValue_TransientExhaustsBudget(t *testing.T) {
	prof := profile.Profile{
		Name:  "small",
		Retry: profile.Retry{BaseDelay: time.Second, MaxRetries: 3},
	}
	r, sleeps := newTestRetrier(t, WithProfiles(testProfiles(t, prof)))

	transient := errors.New("connection reset")
	calls := 0
	res := DoValue(context.Background(), r, "small", func(context.Context) (int, error) {
		calls++
		return 0, transient
	})

	if calls != 4 { // maxRetries + 1
		t.Fatalf("calls=%d, want 4", calls)
	}
	if res.Status != StatusGaveUp || !errors.Is(res.Err, transient) {
		t.Fatalf("res=%+v", res)
	}
	if len(res.Attempts) != 4 {
		t.Fatalf("attempts=%d, want 4", len(res.Attempts))
	}
	if len(*sleeps) != 3 {
		t.Fatalf("sleeps=%d, want 3", len(*sleeps))
	}
	// Last record carries no delay: no retry followed.
	if last := res.Attempts[3]; last.NextDelay != 0 {
		t.Fatalf("final record has delay %v", last.NextDelay)
	}
}

func TestDoValue_GeometricDelays(t *testing.T) {
	prof := profile.Profile{
		Name: "plain",
		Retry: profile.Retry{
			BaseDelay:     time.Second,
			MaxDelay:      time.Minute,
			MaxRetries:    3,
			BackoffFactor: 2.0,
		},
	}
	r, sleeps := newTestRetrier(t, WithProfiles(testProfiles(t, prof)))

	res := DoValue(context.Background(), r, "plain", func(context.Context) (int, error) {
		return 0, errors.New("server error")
	})
	if res.Status != StatusGaveUp {
		t.Fatalf("res=%+v", res)
	}

	// Jitter factor pinned to 1.0 in the test retrier.
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps=%v", *sleeps)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Fatalf("sleep %d=%v, want %v", i, (*sleeps)[i], d)
		}
	}
}

func TestDoValue_UnknownProfile(t *testing.T) {
	r, _ := newTestRetrier(t)

	calls := 0
	res := DoValue(context.Background(), r, "ghost", func(context.Context) (int, error) {
		calls++
		return 0, nil
	})

	if calls != 0 {
		t.Fatal("unit of work must not run without a profile")
	}
	if res.Status != StatusGaveUp || !errors.Is(res.Err, profile.ErrUnknownProfile) {
		t.Fatalf("res=%+v", res)
	}
	if len(res.Attempts) != 0 {
		t.Fatalf("attempts=%d, want 0", len(res.Attempts))
	}
}

func TestDoValue_CanceledBeforeFirstAttempt(t *testing.T) {
	r, _ := newTestRetrier(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	res := DoValue(ctx, r, profile.NameConservative, func(context.Context) (int, error) {
		calls++
		return 0, nil
	})

	if calls != 0 || len(res.Attempts) != 0 {
		t.Fatalf("calls=%d attempts=%d, want 0/0", calls, len(res.Attempts))
	}
	if !res.Canceled() || !errors.Is(res.Err, ErrCanceled) {
		t.Fatalf("res=%+v", res)
	}
}

func TestDoValue_CanceledDuringWait(t *testing.T) {
	r, _ := newTestRetrier(t)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	calls := 0
	res := DoValue(context.Background(), r, profile.NameConservative, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("timeout")
	})

	// One attempt ran, then the wait was interrupted: no record for the
	// attempt that never began.
	if calls != 1 || len(res.Attempts) != 1 {
		t.Fatalf("calls=%d attempts=%d, want 1/1", calls, len(res.Attempts))
	}
	if res.Status != StatusCanceled || !errors.Is(res.Err, ErrCanceled) {
		t.Fatalf("res=%+v", res)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("err=%v, want wrapped context.Canceled", res.Err)
	}
}

func TestDoValue_CanceledDuringAttempt(t *testing.T) {
	r, _ := newTestRetrier(t)

	ctx, cancel := context.WithCancel(context.Background())
	res := DoValue(ctx, r, profile.NameConservative, func(context.Context) (int, error) {
		cancel()
		return 0, errors.New("connection closed")
	})

	if !res.Canceled() {
		t.Fatalf("res=%+v", res)
	}
	if len(res.Attempts) != 1 {
		t.Fatalf("attempts=%d, want 1", len(res.Attempts))
	}
}

func TestDoValue_ObserverSeesEveryAttempt(t *testing.T) {
	obs := &capturingObserver{}
	r, _ := newTestRetrier(t, WithObserver(obs))

	calls := 0
	res := DoValue(context.Background(), r, profile.NameAggressive, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("rate limit")
		}
		return 7, nil
	})
	if !res.Succeeded() {
		t.Fatalf("res=%+v", res)
	}

	if len(obs.attempts) != 3 {
		t.Fatalf("observed attempts=%d, want 3", len(obs.attempts))
	}
	for i, a := range obs.attempts {
		if a.Scope != observe.ScopeOperation {
			t.Fatalf("attempt %d scope=%v", i, a.Scope)
		}
		if a.ProfileName != profile.NameAggressive {
			t.Fatalf("attempt %d profile=%q", i, a.ProfileName)
		}
		if a.Record.Attempt != i+1 {
			t.Fatalf("attempt %d number=%d", i, a.Record.Attempt)
		}
		if a.MaxAttempts != 7 { // aggressive: 6 retries + 1
			t.Fatalf("attempt %d max=%d, want 7", i, a.MaxAttempts)
		}
		if a.InvocationID != res.ID {
			t.Fatalf("attempt %d invocation=%q, want %q", i, a.InvocationID, res.ID)
		}
	}
	if len(obs.successes) != 1 || len(obs.failures) != 0 {
		t.Fatalf("successes=%d failures=%d", len(obs.successes), len(obs.failures))
	}
	if obs.successes[0].Attempts != 3 {
		t.Fatalf("summary attempts=%d, want 3", obs.successes[0].Attempts)
	}
}

func TestDoValue_ObserverFailureSummary(t *testing.T) {
	obs := &capturingObserver{}
	r, _ := newTestRetrier(t, WithObserver(obs))

	res := DoValue(context.Background(), r, profile.NameAggressive, func(context.Context) (int, error) {
		return 0, errors.New("bad request")
	})
	if res.Status != StatusGaveUp {
		t.Fatalf("res=%+v", res)
	}
	if len(obs.failures) != 1 || obs.failures[0].Canceled {
		t.Fatalf("failures=%+v", obs.failures)
	}
}

func TestDoValue_ProfileClassifierSelection(t *testing.T) {
	// Profile names a classifier that treats everything as fatal; the
	// normally-transient error must not be retried.
	classifiers := classify.NewRegistry()
	classifiers.Register("pessimist", classify.Func(func(error) classify.Kind {
		return classify.KindFatal
	}))

	prof := profile.Profile{
		Name:  "picky",
		Retry: profile.Retry{BaseDelay: time.Second, MaxRetries: 5, Classifier: "pessimist"},
	}
	r, _ := newTestRetrier(t,
		WithProfiles(testProfiles(t, prof)),
		WithClassifiers(classifiers),
	)

	calls := 0
	res := DoValue(context.Background(), r, "picky", func(context.Context) (int, error) {
		calls++
		return 0, errors.New("timeout")
	})
	if calls != 1 || res.Status != StatusGaveUp {
		t.Fatalf("calls=%d res=%+v", calls, res)
	}
}

func TestDoValue_UnknownClassifierFallsBack(t *testing.T) {
	prof := profile.Profile{
		Name:  "misconfigured",
		Retry: profile.Retry{BaseDelay: time.Second, MaxRetries: 2, Classifier: "ghost"},
	}
	r, _ := newTestRetrier(t, WithProfiles(testProfiles(t, prof)))

	calls := 0
	res := DoValue(context.Background(), r, "misconfigured", func(context.Context) (int, error) {
		calls++
		return 0, errors.New("timeout")
	})
	// Default table still classifies timeouts as transient.
	if calls != 3 || res.Status != StatusGaveUp {
		t.Fatalf("calls=%d res=%+v", calls, res)
	}
}

func TestDo_WrapsOperation(t *testing.T) {
	r, _ := newTestRetrier(t)

	called := false
	res := r.Do(context.Background(), profile.NameConservative, func(context.Context) error {
		called = true
		return nil
	})
	if !called || !res.Succeeded() {
		t.Fatalf("called=%v res=%+v", called, res)
	}
}

func TestDoValue_NilRetrierAndContext(t *testing.T) {
	// Smoke test only: nil receiver and context get defaults.
	res := DoValue(nil, nil, profile.NameConservative, func(context.Context) (int, error) {
		return 1, nil
	})
	if !res.Succeeded() || res.Value != 1 {
		t.Fatalf("res=%+v", res)
	}
}

func TestDoValue_FreshResultPerInvocation(t *testing.T) {
	r, _ := newTestRetrier(t)

	op := func(context.Context) (int, error) { return 1, nil }
	a := DoValue(context.Background(), r, profile.NameConservative, op)
	b := DoValue(context.Background(), r, profile.NameConservative, op)
	if a.ID == b.ID {
		t.Fatal("invocation IDs must be unique")
	}
}
