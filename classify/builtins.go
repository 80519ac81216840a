package classify

// Built-in classifier registry names.
const (
	ClassifierDefault = "default"
)

// Rate-limit signals, per observed LLM provider behavior. 529 is Anthropic's
// "overloaded" status and is treated as throttling rather than an outage.
var rateLimitPhrases = []string{
	"rate limit",
	"too many requests",
	"429",
	"quota exceeded",
	"rate_limit_error",
	"overloaded",
	"529",
}

var transientPhrases = []string{
	"timeout",
	"connection",
	"server error",
	"500",
	"502",
	"503",
}

// Default returns the built-in classification table. Rules are evaluated in
// order: rate limiting first, transient faults second, everything else Fatal.
// Status codes on the error chain win over message text so structured SDK
// errors do not depend on message wording.
func Default() Table {
	return Table{
		{Name: "rate_limited_status", Match: MatchStatusCodes(429, 529), Kind: KindRateLimited},
		{Name: "rate_limited_message", Match: MatchSubstrings(rateLimitPhrases...), Kind: KindRateLimited},
		{Name: "transient_status", Match: MatchStatusCodes(500, 502, 503), Kind: KindTransient},
		{Name: "transient_message", Match: MatchSubstrings(transientPhrases...), Kind: KindTransient},
		{Name: "transient_net", Match: MatchNetError, Kind: KindTransient},
	}
}

// RegisterBuiltins registers the default table into reg.
func RegisterBuiltins(reg *Registry) {
	if reg == nil {
		return
	}
	reg.Register(ClassifierDefault, Default())
}
