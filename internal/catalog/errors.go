package catalog

import (
	"errors"
	"strings"
)

// Error codes used to classify catalog failures.
const (
	CodeAuthFailed  = "AUTH_FAILED"
	CodeRateLimited = "RATE_LIMITED"
	CodeNotFound    = "NOT_FOUND"
	CodeUnavailable = "UNAVAILABLE"
	CodeInvalid     = "INVALID_REQUEST"
	CodeUnknown     = "UNKNOWN"
)

// Error is a classified catalog failure.
type Error struct {
	Catalog    string
	Code       string
	Message    string
	Retry      bool
	RetryAfter int // Seconds to wait before retry
}

func (e *Error) Error() string {
	return e.Catalog + ": " + e.Message
}

// IsAuth reports whether err is an authentication failure, typically an expired token.
func IsAuth(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == CodeAuthFailed
}

// Classify maps a raw client error to an *Error by sniffing its message.
// Client libraries here do not expose status codes, only formatted messages.
func Classify(catalogName string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"), strings.Contains(lower, "apikey"), strings.Contains(lower, "api key"):
		return &Error{Catalog: catalogName, Code: CodeAuthFailed, Message: "authentication failed: " + msg}
	case strings.Contains(lower, "429"), strings.Contains(lower, "too many"):
		return &Error{Catalog: catalogName, Code: CodeRateLimited, Message: msg, Retry: true, RetryAfter: 5}
	case strings.Contains(lower, "404"), strings.Contains(lower, "not found"):
		return &Error{Catalog: catalogName, Code: CodeNotFound, Message: msg}
	case strings.Contains(lower, "503"), strings.Contains(lower, "unavailable"):
		return &Error{Catalog: catalogName, Code: CodeUnavailable, Message: msg, Retry: true, RetryAfter: 30}
	default:
		return &Error{Catalog: catalogName, Code: CodeUnknown, Message: msg}
	}
}
