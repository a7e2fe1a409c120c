package http

import "fmt"

// ErrorType categorizes a model API failure.
type ErrorType int

const (
	ErrTypeAuthentication ErrorType = iota
	ErrTypeRateLimit
	ErrTypeServiceUnavailable
	ErrTypeInvalidRequest
	ErrTypeTimeout
	ErrTypeUnknown
)

// String returns a human-readable description of the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeServiceUnavailable:
		return "service unavailable"
	case ErrTypeInvalidRequest:
		return "invalid request"
	case ErrTypeTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// Error is an API client error carrying enough context to decide whether a
// retry makes sense.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Retryable  bool
	Provider   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s (status: %d)", e.Provider, e.Type.String(), e.Message, e.StatusCode)
}

// Is matches on error type so callers can use errors.Is with a sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsRetryable reports whether retrying the request could succeed.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(provider, message string) *Error {
	return &Error{
		Type:      ErrTypeTimeout,
		Message:   message,
		Retryable: true,
		Provider:  provider,
	}
}

// MapStatusError converts an HTTP error status into a typed Error.
func MapStatusError(provider string, statusCode int, body string) *Error {
	e := &Error{
		Message:    body,
		StatusCode: statusCode,
		Provider:   provider,
	}
	switch {
	case statusCode == 401 || statusCode == 403:
		e.Type = ErrTypeAuthentication
	case statusCode == 429:
		e.Type = ErrTypeRateLimit
		e.Retryable = true
	case statusCode >= 500:
		e.Type = ErrTypeServiceUnavailable
		e.Retryable = true
	case statusCode >= 400:
		e.Type = ErrTypeInvalidRequest
	default:
		e.Type = ErrTypeUnknown
	}
	return e
}
