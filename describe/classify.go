package describe

import (
	"errors"
	"fmt"

	"github.com/nachoal/describe-go/llm"
)

// responseFormatError marks a reply that arrived but could not be decoded
type responseFormatError struct {
	reason string
	err    error
}

func (e *responseFormatError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.reason, e.err)
	}
	return e.reason
}

func (e *responseFormatError) Unwrap() error {
	return e.err
}

// rule maps one distinguishable failure signal to a kind
type rule struct {
	kind    Kind
	match   func(error) bool
	message func(error) string
}

func fixed(msg string) func(error) string {
	return func(error) string { return msg }
}

// rules is ordered most specific first; the first match wins
var rules = []rule{
	{
		kind: KindInvalidResponseFormat,
		match: func(err error) bool {
			var rf *responseFormatError
			return errors.As(err, &rf)
		},
		message: fixed("the model response is not valid JSON"),
	},
	{
		kind: KindInvalidCredentials,
		match: func(err error) bool {
			if errors.Is(err, llm.ErrMissingAPIKey) {
				return true
			}
			var apiErr *llm.APIError
			return errors.As(err, &apiErr) && apiErr.IsAuthentication()
		},
		message: fixed("invalid API key, check your provider credentials"),
	},
	{
		kind: KindRateLimitExceeded,
		match: func(err error) bool {
			var apiErr *llm.APIError
			return errors.As(err, &apiErr) && apiErr.IsRateLimit()
		},
		message: fixed("rate limit exceeded, try again later"),
	},
	{
		kind:    KindConnectionFailure,
		match:   llm.IsTransportError,
		message: fixed("network connection error, check your internet connection"),
	},
	{
		kind: KindProviderError,
		match: func(err error) bool {
			var apiErr *llm.APIError
			return errors.As(err, &apiErr)
		},
		message: func(err error) string {
			return fmt.Sprintf("an error occurred with the provider API: %v", err)
		},
	},
}

// classify wraps err in an *Error of the first matching kind
func classify(err error) *Error {
	var already *Error
	if errors.As(err, &already) {
		return already
	}
	for _, r := range rules {
		if r.match(err) {
			return &Error{Kind: r.kind, Message: r.message(err), Err: err}
		}
	}
	return &Error{
		Kind:    KindUnexpectedFailure,
		Message: fmt.Sprintf("an unexpected error occurred: %v", err),
		Err:     err,
	}
}

// Classify maps any error onto an *Error using the same rules as Describe.
// It returns nil for nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	return classify(err)
}
