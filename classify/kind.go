// Package classify assigns failure kinds to errors returned by units of
// work. Classification is a pure function of the error's observable signal
// (message text, status code, wrapped sentinel types); it never looks at
// attempt history and never performs I/O.
package classify

// Kind is the classification of a unit-of-work failure.
type Kind int

const (
	// KindFatal marks errors for which retrying cannot plausibly succeed:
	// bad credentials, malformed requests, application bugs. Fatal is the
	// default for anything that does not match a rule.
	KindFatal Kind = iota

	// KindRateLimited marks provider throttling: HTTP 429, 529, quota
	// exhaustion. Retried with backoff.
	KindRateLimited

	// KindTransient marks failures that may clear on their own: timeouts,
	// connection drops, 5xx server errors. Retried with backoff.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return "fatal"
	}
}

// Retryable reports whether the operation retrier may re-run work that
// failed with this kind.
func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindTransient
}

// Classifier maps a non-nil error to a Kind. Implementations must be pure
// and total: same error in, same kind out, no side effects.
type Classifier interface {
	Classify(err error) Kind
}

// Func adapts a plain function to the Classifier interface.
type Func func(err error) Kind

func (f Func) Classify(err error) Kind { return f(err) }
