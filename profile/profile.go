// Package profile defines named, immutable retry configuration profiles and
// the registry that holds them. A Profile bundles the operation-level backoff
// parameters with the session-level progressive schedule so both retriers can
// be driven from a single name.
package profile

import (
	"fmt"
	"time"
)

// JitterRange is the multiplicative jitter window applied to computed delays.
// A delay is scaled by a uniform random factor in [Low, High].
type JitterRange struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// DefaultJitter is the jitter window used when a profile does not set one.
var DefaultJitter = JitterRange{Low: 0.8, High: 1.2}

// Retry holds the operation-level backoff parameters.
//
// Total attempts made by the operation retrier is MaxRetries + 1.
type Retry struct {
	BaseDelay     time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay      time.Duration `json:"max_delay" yaml:"max_delay"`
	MaxRetries    int           `json:"max_retries" yaml:"max_retries"`
	BackoffFactor float64       `json:"backoff_factor" yaml:"backoff_factor"`
	Jitter        JitterRange   `json:"jitter" yaml:"jitter"`

	// Classifier optionally names a registered classifier to use instead of
	// the retrier's default (for example "anthropic" or "openai").
	Classifier string `json:"classifier,omitempty" yaml:"classifier,omitempty"`
}

// Session holds the session-level retry parameters. Delays between session
// attempts follow Schedule in order; once attempts exceed the schedule length
// the last entry repeats.
type Session struct {
	MaxAttempts int             `json:"max_attempts" yaml:"max_attempts"`
	Schedule    []time.Duration `json:"schedule" yaml:"schedule"`
}

// Profile is a named, immutable bundle of retry parameters. Construct it,
// normalize it, register it, and share it freely: no field is mutated after
// registration, so a single Profile is safe for concurrent in-flight calls.
type Profile struct {
	Name    string  `json:"name" yaml:"name"`
	Retry   Retry   `json:"retry" yaml:"retry"`
	Session Session `json:"session" yaml:"session"`
}

// InvalidProfileError indicates a profile that cannot be normalized into a
// usable configuration.
type InvalidProfileError struct {
	Field string
	Value string
}

func (e *InvalidProfileError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("steadfast: invalid profile: %s=%q", e.Field, e.Value)
}

// DefaultSession returns the session parameters shared by the built-in
// profiles: 5 attempts with progressive 60/120/180/240s delays.
func DefaultSession() Session {
	return Session{
		MaxAttempts: 5,
		Schedule: []time.Duration{
			60 * time.Second,
			120 * time.Second,
			180 * time.Second,
			240 * time.Second,
		},
	}
}

// Normalize validates p and fills in defaults for unset fields. It returns
// the normalized copy; p itself is not modified.
//
// Hard failures (empty name, non-positive base delay, backoff factor ≤ 1,
// malformed jitter range) return an *InvalidProfileError. Soft gaps are
// filled: MaxDelay below BaseDelay is raised to BaseDelay, a zero jitter
// range becomes DefaultJitter, and zero session parameters fall back to
// DefaultSession.
func (p Profile) Normalize() (Profile, error) {
	n := p

	if n.Name == "" {
		return Profile{}, &InvalidProfileError{Field: "name", Value: ""}
	}
	if n.Retry.BaseDelay <= 0 {
		return Profile{}, &InvalidProfileError{Field: "retry.base_delay", Value: n.Retry.BaseDelay.String()}
	}
	if n.Retry.MaxRetries < 0 {
		return Profile{}, &InvalidProfileError{Field: "retry.max_retries", Value: fmt.Sprintf("%d", n.Retry.MaxRetries)}
	}
	if n.Retry.BackoffFactor == 0 {
		n.Retry.BackoffFactor = 2.0
	}
	if n.Retry.BackoffFactor <= 1 {
		return Profile{}, &InvalidProfileError{Field: "retry.backoff_factor", Value: fmt.Sprintf("%g", n.Retry.BackoffFactor)}
	}
	if n.Retry.MaxDelay < n.Retry.BaseDelay {
		n.Retry.MaxDelay = n.Retry.BaseDelay
	}

	j := n.Retry.Jitter
	if j == (JitterRange{}) {
		n.Retry.Jitter = DefaultJitter
	} else if !(j.Low > 0 && j.Low <= 1 && j.High >= 1) {
		return Profile{}, &InvalidProfileError{
			Field: "retry.jitter",
			Value: fmt.Sprintf("[%g,%g]", j.Low, j.High),
		}
	}

	if n.Session.MaxAttempts == 0 && len(n.Session.Schedule) == 0 {
		n.Session = DefaultSession()
	}
	if n.Session.MaxAttempts < 1 {
		n.Session.MaxAttempts = 1
	}

	return n, nil
}
