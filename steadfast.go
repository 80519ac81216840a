// Package steadfast wraps calls to unreliable, rate-limited remote services
// (LLM provider APIs) in a two-level retry hierarchy: an operation retrier
// with capped geometric backoff and error-kind classification, and a session
// retrier that re-runs a whole multi-operation workflow on a progressive
// delay schedule.
//
// This package is the convenience facade over a shared default retrier.
// Libraries and anything needing explicit dependency injection should
// construct a retry.Retrier directly.
package steadfast

import (
	"context"

	"github.com/limco/steadfast/profile"
	"github.com/limco/steadfast/retry"
)

// Profile is a named, immutable bundle of retry parameters.
type Profile = profile.Profile

// Result carries the final value or error of a retried invocation plus its
// attempt trail.
type Result[T any] = retry.Result[T]

// Init sets the default retrier. Call it at startup, before Execute or
// ExecuteSession; once the default has been used, Init is a no-op.
func Init(r *retry.Retrier) {
	setDefault(r)
}

// Execute runs op under the named profile using the default retrier,
// retrying rate-limited and transient failures with backoff.
func Execute[T any](ctx context.Context, profileName string, op retry.OperationValue[T]) Result[T] {
	return retry.DoValue(ctx, defaultRetrier(), profileName, op)
}

// ExecuteSession runs a whole multi-operation workflow under the named
// profile's session parameters using the default retrier.
func ExecuteSession[T any](ctx context.Context, profileName string, work retry.OperationValue[T]) Result[T] {
	return retry.DoSessionValue(ctx, defaultRetrier(), profileName, work)
}

// Do is Execute for work without a return value.
func Do(ctx context.Context, profileName string, op retry.Operation) Result[struct{}] {
	return defaultRetrier().Do(ctx, profileName, op)
}

// DoSession is ExecuteSession for work without a return value.
func DoSession(ctx context.Context, profileName string, work retry.Operation) Result[struct{}] {
	return defaultRetrier().DoSession(ctx, profileName, work)
}

// RegisterProfile adds a profile to the default retrier's registry. It
// returns an error matching profile.ErrDuplicateProfile when the name is
// already taken. Register everything at startup; the registry is treated as
// immutable once execution begins.
func RegisterProfile(p Profile) error {
	return defaultRetrier().Profiles().Register(p)
}

// GetProfile returns a profile from the default retrier's registry. The
// error matches profile.ErrUnknownProfile when absent.
func GetProfile(name string) (Profile, error) {
	return defaultRetrier().Profiles().Get(name)
}
