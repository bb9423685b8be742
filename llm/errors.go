package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
)

// ErrMissingAPIKey is returned by constructors when no credential was supplied
// and none was found in the environment.
var ErrMissingAPIKey = errors.New("API key not provided")

// APIError is a failure reported by the provider itself (a non-2xx reply).
// Backends translate their SDK or HTTP errors into this shape.
type APIError struct {
	Provider   string `json:"provider"`
	StatusCode int    `json:"status_code"`
	Type       string `json:"type,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(" ")
	}
	b.WriteString("API error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAuthentication reports whether the provider rejected the credentials
func (e *APIError) IsAuthentication() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return matchesAny(e.Type, e.Code,
		"authentication_error", "invalid_api_key", "permission_error", "UNAUTHENTICATED", "PERMISSION_DENIED")
}

// IsRateLimit reports whether the provider throttled the request
func (e *APIError) IsRateLimit() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return matchesAny(e.Type, e.Code,
		"rate_limit_exceeded", "rate_limit_error", "RESOURCE_EXHAUSTED")
}

func matchesAny(typ, code string, names ...string) bool {
	for _, n := range names {
		if strings.EqualFold(typ, n) || strings.EqualFold(code, n) {
			return true
		}
	}
	return false
}

// ConnectionError wraps a transport failure: the request never got a reply
type ConnectionError struct {
	Provider string
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s connection error: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err looks like a network failure
// (dial, DNS, TLS, reset, timeout) rather than a provider reply.
func IsTransportError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
