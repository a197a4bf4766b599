package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
)

// Client sends paced, retried requests over a single lazily created session.
type Client struct {
	BaseURL   *url.URL
	UserAgent string

	auth     Authenticator
	sessions *SessionManager
	pacer    *pacer
	clock    Clock
	logger   *slog.Logger

	retryLimit     int
	retryDelay     time.Duration
	attemptTimeout time.Duration
}

// ClientConfig configures a Client. Durations are used as given; the public
// package applies defaults before building one.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Auth      Authenticator

	// MinInterval is the least time between the end of one network attempt
	// and the start of the next, across all callers.
	MinInterval time.Duration
	// RetryLimit is the number of retries after the first attempt.
	RetryLimit int
	// RetryDelay is multiplied by the retry number: RetryDelay, 2*RetryDelay, ...
	RetryDelay time.Duration
	// AttemptTimeout bounds a single attempt, including reading the body.
	// Zero means no per-attempt bound.
	AttemptTimeout time.Duration

	RateLimit *RateLimitConfig
	Clock     Clock
	Logger    *slog.Logger
}

// Payload is a request body. It is kept as bytes so retries can resend it.
type Payload struct {
	ContentType string
	Body        []byte
}

// FormPayload encodes values as an application/x-www-form-urlencoded body.
func FormPayload(values url.Values) *Payload {
	return &Payload{
		ContentType: "application/x-www-form-urlencoded",
		Body:        []byte(values.Encode()),
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	// Attempts is how many network attempts the request took.
	Attempts int
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// acceptableStatuses end the retry loop.
var acceptableStatuses = map[int]bool{
	http.StatusOK:        true,
	http.StatusCreated:   true,
	http.StatusAccepted:  true,
	http.StatusNoContent: true,
}

// IsAcceptableStatus reports whether code counts as success.
func IsAcceptableStatus(code int) bool {
	return acceptableStatuses[code]
}

// NewClient returns a new Client. No network activity happens until the
// first request.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Auth == nil {
		return nil, &pkgerrs.ConfigError{Field: "Auth", Message: "an authenticator is required"}
	}
	if cfg.RetryLimit < 0 {
		return nil, &pkgerrs.ConfigError{Field: "RetryLimit", Message: "cannot be negative"}
	}
	if cfg.MinInterval < 0 || cfg.RetryDelay < 0 || cfg.AttemptTimeout < 0 {
		return nil, &pkgerrs.ConfigError{Field: "MinInterval/RetryDelay/AttemptTimeout", Message: "durations cannot be negative"}
	}

	parsedURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		BaseURL:        parsedURL,
		UserAgent:      cfg.UserAgent,
		auth:           cfg.Auth,
		sessions:       NewSessionManager(),
		pacer:          newPacer(clock, cfg.MinInterval, cfg.RateLimit),
		clock:          clock,
		logger:         logger,
		retryLimit:     cfg.RetryLimit,
		retryDelay:     cfg.RetryDelay,
		attemptTimeout: cfg.AttemptTimeout,
	}, nil
}

// Session returns the shared session, logging in if there is none yet.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	return c.sessions.Get(ctx, c.login)
}

// HasSession reports whether a login has succeeded.
func (c *Client) HasSession() bool {
	return c.sessions.IsInitialized()
}

// LastRequest returns when the most recent network attempt finished.
func (c *Client) LastRequest() time.Time {
	return c.pacer.Last()
}

// login runs the handshake, retrying transport failures only. A login the
// server answers with anything but success is returned at once.
func (c *Client) login(ctx context.Context) (*Session, error) {
	attempts := 0
	session, err := retry.DoWithData(func() (*Session, error) {
		attempts++

		var (
			s        *Session
			loginErr error
		)
		gateErr := c.pacer.Do(ctx, func() {
			attemptCtx, cancel := c.attemptContext(ctx)
			defer cancel()
			s, loginErr = c.auth.Login(attemptCtx)
		})
		if gateErr != nil {
			return nil, retry.Unrecoverable(gateErr)
		}
		if loginErr != nil {
			var authErr *pkgerrs.AuthError
			if errors.As(loginErr, &authErr) && authErr.Transient() && ctx.Err() == nil {
				return nil, loginErr
			}
			return nil, retry.Unrecoverable(loginErr)
		}
		if s == nil || s.HTTP == nil {
			return nil, retry.Unrecoverable(&pkgerrs.AuthError{Message: "authenticator returned no session"})
		}
		return s, nil
	}, c.retryOptions(ctx, func() int { return attempts }, "login")...)
	if err != nil {
		var authErr *pkgerrs.AuthError
		if !errors.As(err, &authErr) {
			authErr = &pkgerrs.AuthError{Err: err}
		}
		authErr.Attempts = attempts
		c.logger.Error("login failed", "attempts", attempts, "error", authErr)
		return nil, authErr
	}

	c.logger.Info("login succeeded", "attempts", attempts)
	return session, nil
}

// Request sends method to target, which is resolved against BaseURL.
// Only GET and POST are supported; the payload is ignored for GET.
// Statuses outside the acceptable set are retried with linear backoff; once
// retries run out a *errors.RequestExhaustedError describes the last attempt.
func (c *Client) Request(ctx context.Context, method, target string, payload *Payload) (*Response, error) {
	switch method {
	case http.MethodGet, http.MethodPost:
	default:
		return nil, &pkgerrs.UnsupportedMethodError{Method: method}
	}

	u, err := c.BaseURL.Parse(target)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: method, URL: target, Err: err}
	}

	session, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}

	var (
		attempts     int
		last         *Response
		lastNetError error
	)
	resp, err := retry.DoWithData(func() (*Response, error) {
		attempts++

		var (
			r       *Response
			sendErr error
		)
		gateErr := c.pacer.Do(ctx, func() {
			r, sendErr = c.send(ctx, session, method, u, payload)
		})
		if gateErr != nil {
			return nil, retry.Unrecoverable(gateErr)
		}

		if sendErr != nil {
			if ctx.Err() != nil {
				return nil, retry.Unrecoverable(ctx.Err())
			}
			lastNetError = sendErr
			last = nil
			return nil, sendErr
		}

		r.Attempts = attempts
		last, lastNetError = r, nil
		c.logger.Debug("request attempt", "method", method, "url", u.String(), "attempt", attempts, "status", r.StatusCode)

		if !IsAcceptableStatus(r.StatusCode) {
			return nil, &statusError{response: r, retryAfter: c.retryAfter(r.Header)}
		}
		return r, nil
	}, c.retryOptions(ctx, func() int { return attempts }, method+" "+u.Path)...)

	if err == nil {
		if attempts > 1 {
			c.logger.Info("request succeeded after retry", "method", method, "url", u.String(), "attempts", attempts)
		}
		return resp, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &pkgerrs.RequestError{Operation: method, URL: u.String(), Err: ctxErr}
	}

	exhausted := &pkgerrs.RequestExhaustedError{
		Method:   method,
		URL:      u.String(),
		Attempts: attempts,
		Err:      lastNetError,
	}
	if last != nil {
		exhausted.StatusCode = last.StatusCode
		exhausted.Reason = reason(last)
		exhausted.Body = last.Text()
	}
	c.logger.Error("request failed", "method", method, "url", u.String(), "attempts", attempts, "status", exhausted.StatusCode)
	return nil, exhausted
}

// send performs one network attempt and reads the whole body.
func (c *Client) send(ctx context.Context, session *Session, method string, u *url.URL, payload *Payload) (*Response, error) {
	attemptCtx, cancel := c.attemptContext(ctx)
	defer cancel()

	var body io.Reader
	if method == http.MethodPost && payload != nil {
		body = bytes.NewReader(payload.Body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if body != nil && payload.ContentType != "" {
		req.Header.Set("Content-Type", payload.ContentType)
	}

	resp, err := session.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (c *Client) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.attemptTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.attemptTimeout)
}

// retryOptions builds the shared retry policy: RetryLimit+1 attempts and a
// delay of RetryDelay times the retry number, or longer if the server asked.
func (c *Client) retryOptions(ctx context.Context, attempts func() int, what string) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(c.retryLimit + 1)),
		retry.WithTimer(c.clock),
		retry.LastErrorOnly(true),
		retry.DelayType(func(_ uint, err error, _ *retry.Config) time.Duration {
			d := c.retryDelay * time.Duration(attempts())
			var se *statusError
			if errors.As(err, &se) && se.retryAfter > d {
				d = se.retryAfter
			}
			return d
		}),
		retry.OnRetry(func(_ uint, err error) {
			c.logger.Warn("attempt failed", "op", what, "attempt", attempts(), "limit", c.retryLimit+1, "error", err)
		}),
	}
}

// retryAfter reads a Retry-After header in seconds or HTTP-date form.
func (c *Client) retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if seconds, err := strconv.ParseFloat(v, 64); err == nil && seconds > 0 {
		return time.Duration(seconds * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(c.clock.Now()); d > 0 {
			return d
		}
	}
	return 0
}

// statusError marks an attempt that got an unacceptable status.
type statusError struct {
	response   *Response
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return "unacceptable status " + e.response.Status
}

func reason(r *Response) string {
	code := strconv.Itoa(r.StatusCode)
	if text, ok := strings.CutPrefix(r.Status, code+" "); ok {
		return text
	}
	if r.Status != "" && r.Status != code {
		return r.Status
	}
	return http.StatusText(r.StatusCode)
}
