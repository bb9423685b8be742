package describe

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories Describe reports
type Kind int

const (
	// KindUnexpectedFailure covers anything no other kind matches
	KindUnexpectedFailure Kind = iota
	KindInvalidResponseFormat
	KindInvalidCredentials
	KindRateLimitExceeded
	KindConnectionFailure
	KindProviderError
	// KindInvalidInput is raised before any remote call, e.g. for empty input
	KindInvalidInput
)

var kindNames = map[Kind]string{
	KindUnexpectedFailure:     "UnexpectedFailure",
	KindInvalidResponseFormat: "InvalidResponseFormat",
	KindInvalidCredentials:    "InvalidCredentials",
	KindRateLimitExceeded:     "RateLimitExceeded",
	KindConnectionFailure:     "ConnectionFailure",
	KindProviderError:         "ProviderError",
	KindInvalidInput:          "InvalidInput",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the only error type returned by Describe
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrInvalidResponseFormat = &Error{Kind: KindInvalidResponseFormat, Message: "invalid response format"}
	ErrInvalidCredentials    = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrRateLimitExceeded     = &Error{Kind: KindRateLimitExceeded, Message: "rate limit exceeded"}
	ErrConnectionFailure     = &Error{Kind: KindConnectionFailure, Message: "connection failure"}
	ErrProviderError         = &Error{Kind: KindProviderError, Message: "provider error"}
	ErrUnexpectedFailure     = &Error{Kind: KindUnexpectedFailure, Message: "unexpected failure"}
	ErrInvalidInput          = &Error{Kind: KindInvalidInput, Message: "invalid input"}
)

// KindOf returns the kind of err, or KindUnexpectedFailure when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpectedFailure
}
