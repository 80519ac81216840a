package profile

import "time"

// Built-in profile names.
const (
	// NameConservative is the default profile for callers on standard API
	// rate limits.
	NameConservative = "conservative"

	// NameAggressive retries faster and gives up sooner; suitable for callers
	// with generous rate limits.
	NameAggressive = "aggressive"
)

// Conservative returns the default built-in profile:
// 5s base delay, 300s cap, 8 retries, factor 2.
func Conservative() Profile {
	return Profile{
		Name: NameConservative,
		Retry: Retry{
			BaseDelay:     5 * time.Second,
			MaxDelay:      300 * time.Second,
			MaxRetries:    8,
			BackoffFactor: 2.0,
			Jitter:        DefaultJitter,
		},
		Session: DefaultSession(),
	}
}

// Aggressive returns the built-in fast profile:
// 3s base delay, 120s cap, 6 retries, factor 2.
func Aggressive() Profile {
	return Profile{
		Name: NameAggressive,
		Retry: Retry{
			BaseDelay:     3 * time.Second,
			MaxDelay:      120 * time.Second,
			MaxRetries:    6,
			BackoffFactor: 2.0,
			Jitter:        DefaultJitter,
		},
		Session: DefaultSession(),
	}
}

// RegisterBuiltins registers the built-in profiles into reg.
func RegisterBuiltins(reg *Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(Conservative())
	reg.MustRegister(Aggressive())
}
