// Package openai classifies errors returned by the OpenAI SDK
// (github.com/openai/openai-go) by status code instead of message text.
package openai

import (
	"errors"
	"net/http"

	sdk "github.com/openai/openai-go"

	"github.com/limco/steadfast/classify"
)

// Name is the classifier registry name. Profiles select it with
// classifier: "openai".
const Name = "openai"

// Classifier maps *openai.Error values to failure kinds. Errors that do not
// carry an SDK error fall back to Fallback, or to the default table when
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
	case status == http.StatusTooManyRequests:
		return classify.KindRateLimited
	case status == http.StatusRequestTimeout:
		return classify.KindTransient
	case status >= 500 && status <= 599:
		return classify.KindTransient
	default:
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
