package chat

import (
	"errors"
	"fmt"
)

// ErrNoMessages is returned when a text-generation prompt carries neither a
// user turn nor any history.
var ErrNoMessages = errors.New("no messages to send")

// ErrNotConfigured is returned by clients that are missing credentials or an
// endpoint. No request is attempted.
var ErrNotConfigured = errors.New("client not configured")

// TransportError covers network failures, timeouts and non-2xx statuses from a
// remote model service.
type TransportError struct {
	Service    string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is returned when a remote service answered but the
// payload could not be used: bad JSON, missing fields or undecodable image data.
type MalformedResponseError struct {
	Service string
	Reason  string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response: %s: %v", e.Service, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed response: %s", e.Service, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsMalformed reports whether err is (or wraps) a MalformedResponseError.
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
