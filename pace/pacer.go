// Package pace spaces consecutive operations out in time, independent of
// retrying: a Pacer enforces a minimum gap between calls so a healthy run
// does not hammer a rate-limited API, and phase delays insert hand-tuned
// pauses between workflow stages.
package pace

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum gap between successive operations, plus a small
// random extra pause so independent workers do not fall into lockstep. It is
// safe for concurrent use; concurrent callers are serialized onto the gap.
type Pacer struct {
	limiter   *rate.Limiter
	jitterMin time.Duration
	jitterMax time.Duration
	randFloat func() float64
	sleep     func(context.Context, time.Duration) error
}

// NewPacer creates a Pacer with the given minimum gap between operations and
// an additive jitter window of 100–300ms.
func NewPacer(gap time.Duration) *Pacer {
	if gap <= 0 {
		gap = time.Nanosecond
	}
	return &Pacer{
		limiter:   rate.NewLimiter(rate.Every(gap), 1),
		jitterMin: 100 * time.Millisecond,
		jitterMax: 300 * time.Millisecond,
		randFloat: rand.Float64,
		sleep:     sleepWithContext,
	}
}

// Wait blocks until the gap since the previous operation has elapsed, plus
// jitter. It returns early with ctx.Err() on cancellation. The first call
// does not wait for the gap.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	jitter := p.jitterMin + time.Duration(p.randFloat()*float64(p.jitterMax-p.jitterMin))
	return p.sleep(ctx, jitter)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
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
