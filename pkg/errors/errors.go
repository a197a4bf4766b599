// Package errors defines the error types returned by the Rouvy client and the
// remix decoder.
package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// maxBodyPreview caps how much of a response body is echoed in error strings.
const maxBodyPreview = 512

func preview(body string) string {
	if len(body) <= maxBodyPreview {
		return body
	}
	return body[:maxBodyPreview] + "..."
}

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// MalformedInputError is returned by the remix decoder when the node table
// does not have the shape the decoder requires.
type MalformedInputError struct {
	// Index is the node table position being expanded, or -1 when the
	// failure is not tied to a single entry.
	Index int
	// Reason describes the violated assumption.
	Reason string
	// Err contains the underlying error if available
	Err error
}

func (e *MalformedInputError) Error() string {
	var sb strings.Builder
	sb.WriteString("malformed input")
	if e.Index >= 0 {
		fmt.Fprintf(&sb, " at node %d", e.Index)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// UnsupportedMethodError is returned when a caller asks for an HTTP verb the
// client does not implement. No network activity happens in that case.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method %q", e.Method)
}

// AuthError indicates an authentication failure.
type AuthError struct {
	// StatusCode is the HTTP status code (if from an HTTP response)
	StatusCode int
	// Message contains the detailed error message
	Message string
	// Body contains the raw response body (if available)
	Body string
	// Attempts is the number of login attempts made before giving up
	Attempts int
	// Err contains the underlying error if available
	Err error
}

func (e *AuthError) Error() string {
	var parts []string

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.StatusCode))
	}
	if e.Attempts > 1 {
		parts = append(parts, fmt.Sprintf("after %d attempts", e.Attempts))
	}
	if e.Body != "" {
		parts = append(parts, fmt.Sprintf("body: %q", preview(e.Body)))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	}

	if len(parts) == 0 {
		return "auth error"
	}
	return "auth error: " + strings.Join(parts, ", ")
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure came from the network rather than
// from the server rejecting the credentials.
func (e *AuthError) Transient() bool {
	return e.StatusCode == 0 && e.Err != nil
}

// RequestExhaustedError is returned when every attempt of a request ended in
// a transport error or an unacceptable status.
type RequestExhaustedError struct {
	Method   string
	URL      string
	Attempts int
	// StatusCode and Reason describe the last response; zero when the last
	// attempt never produced one.
	StatusCode int
	Reason     string
	// Body is the last response body.
	Body string
	// Err is the last transport error, if any.
	Err error
}

func (e *RequestExhaustedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "request %s %s failed after %d attempts", e.Method, e.URL, e.Attempts)
	if e.StatusCode != 0 {
		reason := e.Reason
		if reason == "" {
			reason = http.StatusText(e.StatusCode)
		}
		fmt.Fprintf(&sb, ": status %d %s", e.StatusCode, reason)
	}
	if e.Body != "" {
		fmt.Fprintf(&sb, ", body: %q", preview(e.Body))
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *RequestExhaustedError) Unwrap() error {
	return e.Err
}

// StateError indicates an operation was attempted when the client is not ready.
type StateError struct {
	// Operation is the name of the operation that was attempted
	Operation string
	// Message contains the detailed error message
	Message string
}

func (e *StateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("state error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("state error: %s", e.Message)
}

// RequestError indicates a request could not be built or sent.
type RequestError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError indicates a decoded payload did not contain the fields an
// operation extracts from it.
type ParseError struct {
	// Operation is the name of the API operation where parsing failed
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
