package retry

import (
	"context"
	"testing"
	"time"

	"github.com/limco/steadfast/observe"
	"github.com/limco/steadfast/profile"
)

// capturingObserver records every callback for assertions.
type capturingObserver struct {
	attempts  []observe.Attempt
	successes []observe.Summary
	failures  []observe.Summary
}

func (o *capturingObserver) OnAttempt(_ context.Context, a observe.Attempt) {
	o.attempts = append(o.attempts, a)
}

func (o *capturingObserver) OnSuccess(_ context.Context, s observe.Summary) {
	o.successes = append(o.successes, s)
}

func (o *capturingObserver) OnFailure(_ context.Context, s observe.Summary) {
	o.failures = append(o.failures, s)
}

// newTestRetrier returns a retrier whose sleep records scheduled delays
// instead of waiting, with deterministic jitter (factor exactly 1.0).
func newTestRetrier(t *testing.T, opts ...Option) (*Retrier, *[]time.Duration) {
	t.Helper()

	r := New(opts...)
	sleeps := &[]time.Duration{}
	r.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		*sleeps = append(*sleeps, d)
		return nil
	}
	r.randFloat = func() float64 { return 0.5 }
	return r, sleeps
}

func testProfiles(t *testing.T, extra ...profile.Profile) *profile.Registry {
	t.Helper()

	reg := profile.NewRegistry()
	profile.RegisterBuiltins(reg)
	for _, p := range extra {
		if err := reg.Register(p); err != nil {
			t.Fatalf("register %s: %v", p.Name, err)
		}
	}
	return reg
}
