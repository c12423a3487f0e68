package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is returned when a 401 could not be cured by a token
// refresh. Stored credentials are cleared before it is returned; callers
// should prompt for a fresh login.
var ErrSessionExpired = errors.New("session expired, please log in again")

// ErrorKind buckets non-2xx responses into the handful of cases the CLI
// words differently.
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"
	KindTooLarge    ErrorKind = "too_large"
	KindUnsupported ErrorKind = "unsupported_media"
	KindRateLimited ErrorKind = "rate_limited"
	KindServer      ErrorKind = "server"
	KindClient      ErrorKind = "client"
)

// StatusError is a non-2xx response with whatever message the service
// managed to include.
type StatusError struct {
	StatusCode int
	Kind       ErrorKind
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("request failed with HTTP %d", e.StatusCode)
}

// AsStatus unwraps err to a StatusError, if there is one in the chain.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	ok := errors.As(err, &se)
	return se, ok
}

// IsAuthError reports whether err stems from a failed or expired login.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrSessionExpired) {
		return true
	}
	se, ok := AsStatus(err)
	return ok && se.Kind == KindAuth
}

func classifyStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusRequestEntityTooLarge:
		return KindTooLarge
	case code == http.StatusUnsupportedMediaType:
		return KindUnsupported
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code >= 500:
		return KindServer
	default:
		return KindClient
	}
}

// Humanize converts any error from the client into the message shown to
// the user. Transport errors (not StatusError) read as connectivity
// problems; the caller may refine those with a health probe.
func Humanize(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionExpired) {
		return "Your session has expired. Run `docsmith login` to sign in again."
	}
	se, ok := AsStatus(err)
	if !ok {
		return "Could not reach the docsmith service. Check your connection and the configured base URL."
	}
	switch se.Kind {
	case KindAuth:
		return "Authentication failed. Run `docsmith login` to sign in."
	case KindTooLarge:
		return "The upload was rejected as too large. Remove some files or split the selection."
	case KindUnsupported:
		return "The service rejected the file type as unsupported."
	case KindRateLimited:
		return "You are being rate limited. Wait a moment and try again."
	case KindServer:
		if se.Message != "" {
			return fmt.Sprintf("The service reported an error: %s", se.Message)
		}
		return "The service reported an internal error. Try again shortly."
	default:
		return se.Error()
	}
}
