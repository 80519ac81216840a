package pace

import (
	"context"
	"math/rand"
	"time"
)

// Per-phase base delays between workflow tasks. Heavier phases get longer
// pauses to spread token usage out.
var phaseDelays = map[int]time.Duration{
	1: 1 * time.Second,         // goal intake
	2: 2 * time.Second,         // technical planning
	3: 1500 * time.Millisecond, // business analysis
	4: 1 * time.Second,         // quality planning
	5: 2500 * time.Millisecond, // implementation
}

const defaultPhaseDelay = 1500 * time.Millisecond

// PhaseDelay returns the jittered pause to insert before a task in the given
// workflow phase. Unknown phases use a 1.5s base. The result is the base
// scaled by a uniform factor in [0.8, 1.2].
func PhaseDelay(phase int) time.Duration {
	return phaseDelayWithRand(phase, rand.Float64)
}

func phaseDelayWithRand(phase int, randFloat func() float64) time.Duration {
	base, ok := phaseDelays[phase]
	if !ok {
		base = defaultPhaseDelay
	}
	factor := 0.8 + randFloat()*0.4
	return time.Duration(float64(base) * factor)
}

// WaitPhase sleeps for PhaseDelay(phase), returning early with ctx.Err() on
// cancellation.
func WaitPhase(ctx context.Context, phase int) error {
	return sleepWithContext(ctx, PhaseDelay(phase))
}
