package observe

import "context"

// NoopObserver implements Observer with no-op methods.
type NoopObserver struct{}

func (NoopObserver) OnAttempt(context.Context, Attempt) {}
func (NoopObserver) OnSuccess(context.Context, Summary) {}
func (NoopObserver) OnFailure(context.Context, Summary) {}

// BaseObserver implements Observer with no-op methods.
//
// Users can embed BaseObserver to implement only the callbacks they need.
type BaseObserver struct{}

func (BaseObserver) OnAttempt(context.Context, Attempt) {}
func (BaseObserver) OnSuccess(context.Context, Summary) {}
func (BaseObserver) OnFailure(context.Context, Summary) {}

// MultiObserver fans out events to multiple observers.
type MultiObserver struct {
	Observers []Observer
}

func (m MultiObserver) OnAttempt(ctx context.Context, a Attempt) {
	for _, o := range m.Observers {
		if o != nil {
			o.OnAttempt(ctx, a)
		}
	}
}

func (m MultiObserver) OnSuccess(ctx context.Context, s Summary) {
	for _, o := range m.Observers {
		if o != nil {
			o.OnSuccess(ctx, s)
		}
	}
}

func (m MultiObserver) OnFailure(ctx context.Context, s Summary) {
	for _, o := range m.Observers {
		if o != nil {
			o.OnFailure(ctx, s)
		}
	}
}
