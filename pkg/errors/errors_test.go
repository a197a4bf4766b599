package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      ConfigError
		contains []string
	}{
		{
			name:     "with field and message",
			err:      ConfigError{Field: "Email", Message: "cannot be empty"},
			contains: []string{"config error", "Email", "cannot be empty"},
		},
		{
			name:     "only message",
			err:      ConfigError{Message: "invalid configuration"},
			contains: []string{"config error", "invalid configuration"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("ConfigError.Error() = %q, want to contain %q", result, want)
				}
			}
		})
	}
}

func TestMalformedInputError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  MalformedInputError
		want string
	}{
		{
			name: "with index",
			err:  MalformedInputError{Index: 3, Reason: "name reference did not resolve to a string"},
			want: "malformed input at node 3: name reference did not resolve to a string",
		},
		{
			name: "without index",
			err:  MalformedInputError{Index: -1, Reason: "first line is not a JSON array"},
			want: "malformed input: first line is not a JSON array",
		},
		{
			name: "with wrapped error",
			err:  MalformedInputError{Index: -1, Reason: "bad ref", Err: errors.New("strconv failure")},
			want: "malformed input: bad ref: strconv failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      AuthError
		contains []string
		exact    string
	}{
		{
			name: "status and body",
			err: AuthError{
				StatusCode: 401,
				Body:       `{"error":"bad credentials"}`,
			},
			contains: []string{"auth error", "401", "bad credentials"},
		},
		{
			name:     "transport error after retries",
			err:      AuthError{Attempts: 4, Err: errors.New("connection refused")},
			contains: []string{"after 4 attempts", "connection refused"},
		},
		{
			name:  "empty",
			err:   AuthError{},
			exact: "auth error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if tt.exact != "" && result != tt.exact {
				t.Errorf("Error() = %q, want %q", result, tt.exact)
			}
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("AuthError.Error() = %q, want to contain %q", result, want)
				}
			}
		})
	}
}

func TestAuthError_Transient(t *testing.T) {
	if !(&AuthError{Err: errors.New("dial tcp")}).Transient() {
		t.Error("transport failure should be transient")
	}
	if (&AuthError{StatusCode: 403}).Transient() {
		t.Error("rejected credentials should not be transient")
	}
	if (&AuthError{StatusCode: 200, Err: errors.New("read body")}).Transient() {
		t.Error("failure after a response should not be transient")
	}
}

func TestRequestExhaustedError_Error(t *testing.T) {
	err := &RequestExhaustedError{
		Method:     "GET",
		URL:        "https://riders.rouvy.com/events/search.data",
		Attempts:   3,
		StatusCode: 503,
		Body:       strings.Repeat("x", 2000),
	}

	msg := err.Error()
	for _, want := range []string{"GET", "search.data", "3 attempts", "503 Service Unavailable"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want to contain %q", msg, want)
		}
	}
	if len(msg) > 1000 {
		t.Errorf("expected body preview to be truncated, got %d bytes", len(msg))
	}
}

func TestRequestExhaustedError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &RequestExhaustedError{Method: "POST", URL: "/x", Attempts: 2, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the last transport error")
	}
}

func TestErrorsAs(t *testing.T) {
	var wrapped error = &ParseError{Operation: "SearchEvents", Err: &MalformedInputError{Index: 0, Reason: "x"}}

	var malformed *MalformedInputError
	if !errors.As(wrapped, &malformed) {
		t.Fatal("expected errors.As to find MalformedInputError through ParseError")
	}
	if malformed.Index != 0 {
		t.Errorf("Index = %d, want 0", malformed.Index)
	}
}

func TestUnsupportedMethodError_Error(t *testing.T) {
	err := &UnsupportedMethodError{Method: "PATCH"}
	if got := err.Error(); got != `unsupported method "PATCH"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestRequestAndStateErrors(t *testing.T) {
	reqErr := &RequestError{Operation: "GetEvent", URL: "events/x", Err: errors.New("bad url")}
	if got := reqErr.Error(); got != "request error during GetEvent to events/x: bad url" {
		t.Errorf("RequestError.Error() = %q", got)
	}

	stateErr := &StateError{Operation: "Request", Message: "client is nil"}
	if got := stateErr.Error(); got != "state error during Request: client is nil" {
		t.Errorf("StateError.Error() = %q", got)
	}

	parseErr := &ParseError{Operation: "GetEvent", Message: "missing route", Err: errors.New("boom")}
	if got := parseErr.Error(); got != "parse error during GetEvent: missing route: boom" {
		t.Errorf("ParseError.Error() = %q", got)
	}
}
