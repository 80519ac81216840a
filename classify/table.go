package classify

import (
	"errors"
	"net"
	"strings"
)

// Rule pairs a predicate with the Kind assigned when it matches.
type Rule struct {
	// Name labels the rule for debugging and table inspection.
	Name string

	// Match reports whether the rule applies to err. err is never nil.
	Match func(err error) bool

	Kind Kind
}

// Table is an ordered rule list evaluated first-match-wins. Errors that
// match no rule classify as KindFatal. A Table is data: append rules to
// extend the policy without touching control flow.
type Table []Rule

func (t Table) Classify(err error) Kind {
	if err == nil {
		return KindFatal
	}
	for _, rule := range t {
		if rule.Match != nil && rule.Match(err) {
			return rule.Kind
		}
	}
	return KindFatal
}

// StatusCoder exposes an HTTP-like status code on an error. Errors from
// provider SDKs typically carry one; the table predicates below check for it
// before falling back to message text.
type StatusCoder interface {
	HTTPStatusCode() int
}

// MatchSubstrings returns a predicate matching when the error message
// contains any of the given phrases, case-insensitively.
func MatchSubstrings(phrases ...string) func(error) bool {
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return func(err error) bool {
		msg := strings.ToLower(err.Error())
		for _, p := range lowered {
			if strings.Contains(msg, p) {
				return true
			}
		}
		return false
	}
}

// MatchStatusCodes returns a predicate matching when any error in the chain
// carries one of the given HTTP status codes via StatusCoder.
func MatchStatusCodes(codes ...int) func(error) bool {
	set := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(err error) bool {
		var sc StatusCoder
		if !errors.As(err, &sc) {
			return false
		}
		_, ok := set[sc.HTTPStatusCode()]
		return ok
	}
}

// MatchNetError matches any network-level I/O failure in the chain.
func MatchNetError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}
