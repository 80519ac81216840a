// Package backoff computes inter-attempt delays: capped geometric growth
// with multiplicative jitter for single operations, and a fixed progressive
// schedule for whole sessions.
package backoff

import (
	"math"
	"math/rand"
	"time"

	"github.com/limco/steadfast/profile"
)

// Delay returns the wait before attempt number attempt+1, given that attempt
// (1-based) just failed under the profile's operation retry parameters.
//
//	raw    = base * factor^(attempt-1)
//	capped = min(raw, max)
//	delay  = capped * uniform(jitter.Low, jitter.High), clamped to max
//
// Multiplicative jitter keeps delays proportional at every scale and
// decorrelates concurrent retriers. The result is clamped to MaxDelay after
// jitter so the profile's cap is a true upper bound, and is never below
// base * jitter.Low.
func Delay(r profile.Retry, attempt int) time.Duration {
	return DelayWithRand(r, attempt, rand.Float64)
}

// DelayWithRand is Delay with an injectable uniform [0,1) source, for
// deterministic tests.
func DelayWithRand(r profile.Retry, attempt int, randFloat func() float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := r.BaseDelay.Seconds()
	raw := base * math.Pow(r.BackoffFactor, float64(attempt-1))
	capped := math.Min(raw, r.MaxDelay.Seconds())

	jitter := r.Jitter
	if jitter == (profile.JitterRange{}) {
		jitter = profile.DefaultJitter
	}
	factor := jitter.Low + randFloat()*(jitter.High-jitter.Low)

	secs := capped * factor
	if maxSecs := r.MaxDelay.Seconds(); maxSecs > 0 && secs > maxSecs {
		secs = maxSecs
	}
	if floor := base * jitter.Low; secs < floor {
		secs = floor
	}
	return time.Duration(secs * float64(time.Second))
}

// ScheduleDelay returns the wait before session attempt number attempt+1,
// given that attempt (1-based) just failed. schedule[0] is the delay after
// the first failure; once attempts outrun the schedule the last entry
// repeats. An empty schedule yields zero.
func ScheduleDelay(schedule []time.Duration, attempt int) time.Duration {
	if len(schedule) == 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(schedule) {
		attempt = len(schedule)
	}
	return schedule[attempt-1]
}
