package internal

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
)

const (
	// User agent constraints
	maxUserAgentLength = 256

	// Data path constraints
	maxDataPathLength = 512
)

// Validator checks the values a caller passes into request targets and
// headers before anything is sent.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCredentials requires an email-shaped login and a non-empty password.
func (v *Validator) ValidateCredentials(email, password string) error {
	if email == "" {
		return &pkgerrs.ConfigError{Field: "Email", Message: "email cannot be empty"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &pkgerrs.ConfigError{Field: "Email", Message: fmt.Sprintf("invalid email address: %v", err)}
	}
	if password == "" {
		return &pkgerrs.ConfigError{Field: "Password", Message: "password cannot be empty"}
	}
	return nil
}

// ValidateDataPath checks a relative page path such as "events/search".
// Absolute URLs, queries and dot segments are rejected so the path always
// resolves under the base URL.
func (v *Validator) ValidateDataPath(path string) error {
	if path == "" {
		return &pkgerrs.ConfigError{Field: "path", Message: "path cannot be empty"}
	}
	if len(path) > maxDataPathLength {
		return &pkgerrs.ConfigError{Field: "path", Message: fmt.Sprintf("path cannot exceed %d characters", maxDataPathLength)}
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "://") {
		return &pkgerrs.ConfigError{Field: "path", Message: "path must be relative to the base URL"}
	}
	if strings.ContainsAny(path, "?#%\\ ") || strings.IndexFunc(path, unicode.IsControl) >= 0 {
		return &pkgerrs.ConfigError{Field: "path", Message: "path contains an invalid character"}
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return &pkgerrs.ConfigError{Field: "path", Message: fmt.Sprintf("path has an invalid segment %q", segment)}
		}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	// User-Agent cannot be empty (should have been set to default before this check)
	if len(ua) == 0 {
		return fmt.Errorf("user agent cannot be empty")
	}

	if strings.ContainsAny(ua, "\r\n") {
		return fmt.Errorf("user agent cannot contain newline characters")
	}

	if len(ua) > maxUserAgentLength {
		return fmt.Errorf("user agent too long (max %d characters)", maxUserAgentLength)
	}

	return nil
}
