package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
)

const (
	defaultLoginPath = "login"

	// TimeZoneCookie pins the zone the site renders dates in.
	TimeZoneCookie = "CH-time-zone"
)

// Session is an authenticated HTTP handle. Its cookie jar holds the auth
// cookies set by the login handshake and the pinned time zone.
type Session struct {
	HTTP      *http.Client
	CreatedAt time.Time
}

// Authenticator performs one login handshake. Transport failures should be
// reported as an *errors.AuthError with no status code so they are retried.
type Authenticator interface {
	Login(ctx context.Context) (*Session, error)
}

// PasswordAuthenticator logs in with an email and password form post.
type PasswordAuthenticator struct {
	client    *http.Client
	email     string
	password  string
	userAgent string
	timeZone  string
	BaseURL   *url.URL
	loginURL  *url.URL
}

// NewPasswordAuthenticator creates a new authenticator.
// The loginPath parameter can be an empty string to use the default login endpoint.
func NewPasswordAuthenticator(httpClient *http.Client, email, password, userAgent, baseURL, loginPath, timeZone string) (*PasswordAuthenticator, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	if loginPath == "" {
		loginPath = defaultLoginPath
	}

	resolvedLoginURL, err := parsedURL.Parse(loginPath)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "LoginPath", Message: err.Error()}
	}

	return &PasswordAuthenticator{
		client:    httpClient,
		email:     email,
		password:  password,
		userAgent: userAgent,
		timeZone:  timeZone,
		BaseURL:   parsedURL,
		loginURL:  resolvedLoginURL,
	}, nil
}

// Login posts the credentials on a fresh cookie jar. Only a 200 counts as
// success; the returned session has the time zone cookie set.
func (a *PasswordAuthenticator) Login(ctx context.Context) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to create cookie jar", Err: err}
	}

	httpClient := &http.Client{
		Transport:     a.client.Transport,
		CheckRedirect: a.client.CheckRedirect,
		Timeout:       a.client.Timeout,
		Jar:           jar,
	}

	form := url.Values{}
	form.Set("email", a.email)
	form.Set("password", a.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.loginURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to create login request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &pkgerrs.AuthError{Err: fmt.Errorf("failed to execute login request: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			Message:    "login rejected",
		}
	}

	if a.timeZone != "" {
		jar.SetCookies(a.BaseURL, []*http.Cookie{{
			Name:  TimeZoneCookie,
			Value: a.timeZone,
			Path:  "/",
		}})
	}

	return &Session{HTTP: httpClient, CreatedAt: time.Now()}, nil
}
