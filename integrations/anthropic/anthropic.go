// Package anthropic classifies errors returned by the Anthropic SDK
// (github.com/anthropics/anthropic-sdk-go) by status code instead of message
// text, so classification does not depend on provider error wording.
package anthropic

import (
	"errors"
	"net/http"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/limco/steadfast/classify"
)

// Name is the classifier registry name. Profiles select it with
// classifier: "anthropic".
const Name = "anthropic"

// Classifier maps *anthropic.Error values to failure kinds. Errors that do
// not carry an SDK error fall back to Fallback, or to the default table when
// Fallback is nil.
type Classifier struct {
	Fallback classify.Classifier
}

func (c Classifier) Classify(err error) classify.Kind {
	var apierr *sdk.Error
	if !errors.As(err, &apierr) {
		return c.fallback().Classify(err)
	}

	status := apierr.StatusCode
	switch {
	case status == http.StatusTooManyRequests || status == 529:
		// 529 is Anthropic's overloaded_error: throttling, not an outage.
		return classify.KindRateLimited
	case status == http.StatusRequestTimeout:
		return classify.KindTransient
	case status >= 500 && status <= 599:
		return classify.KindTransient
	default:
		// 400/401/403/404 and the rest: retrying the same request cannot
		// succeed.
		return classify.KindFatal
	}
}

func (c Classifier) fallback() classify.Classifier {
	if c.Fallback != nil {
		return c.Fallback
	}
	return classify.Default()
}

// Register adds the classifier to reg under Name.
func Register(reg *classify.Registry) {
	reg.Register(Name, Classifier{})
}
