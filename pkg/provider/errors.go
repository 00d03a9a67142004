package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is raised before any network call when the query payload
// breaks a client-side rule. Handlers map it to HTTP 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConnectionError marks transport-level failures (dial, timeout, DNS) so the
// UI can show a retry hint instead of the raw error. Business errors from
// the provider pass through verbatim as plain errors.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to data provider failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err originates from request validation.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsConnection reports whether err is a transport failure. Besides the
// explicit ConnectionError wrapper it recognizes the usual transport error
// strings, mirroring how retryability is classified.
func IsConnection(err error) bool {
	if err == nil {
		return false
	}
	var cerr *ConnectionError
	if errors.As(err, &cerr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"timeout", "connection", "dns", "no such host", "broken pipe"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// retryable reports whether a failed request is worth another attempt.
// Auth failures and other client errors are final; 429 and transport
// failures are not.
func retryable(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"401", "403", "unauthorized", "forbidden", "400", "404"} {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	return true
}
