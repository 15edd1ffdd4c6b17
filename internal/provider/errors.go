package provider

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Kind classifies why a provider attempt failed. Every kind is recoverable by
// advancing the fallback chain; none is terminal for the overall request.
type Kind int

const (
	RateLimited Kind = iota
	NetworkFailure
	InvalidResponse
	NoTextDetected
)

// String returns the kind name used in logs and usage records.
func (k Kind) String() string {
	switch k {
	case RateLimited:
		return "rate_limited"
	case NetworkFailure:
		return "network_failure"
	case InvalidResponse:
		return "invalid_response"
	case NoTextDetected:
		return "no_text_detected"
	}
	return "unknown"
}

// Error is the typed failure returned by every provider adapter.
type Error struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a typed provider error.
func NewError(kind Kind, providerName string, err error) *Error {
	return &Error{Kind: kind, Provider: providerName, Err: err}
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ClassifyHTTP maps an HTTP status code from a provider API to an error kind.
func ClassifyHTTP(statusCode int) Kind {
	switch {
	case statusCode == 429:
		return RateLimited
	case statusCode == 408 || statusCode >= 500:
		return NetworkFailure
	default:
		return InvalidResponse
	}
}

// transportPatterns are message fragments that indicate a connection-level
// failure when the error chain carries no typed network error.
var transportPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"temporary failure in name resolution",
	"no such host",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
	"transport connection broken",
	"context deadline exceeded",
}

// Classify wraps an arbitrary transport error as a typed provider error,
// distinguishing network-level failures from malformed responses.
func Classify(providerName string, err error) *Error {
	if pe, ok := AsError(err); ok {
		return pe
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(NetworkFailure, providerName, err)
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return NewError(NetworkFailure, providerName, err)
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transportPatterns {
		if strings.Contains(msg, p) {
			return NewError(NetworkFailure, providerName, err)
		}
	}

	return NewError(InvalidResponse, providerName, err)
}
