package rouvy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jamesprial/go-rouvy-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/remix"
	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/validation"
)

const (
	// DefaultBaseURL is the Rouvy riders site
	DefaultBaseURL = "https://riders.rouvy.com/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-rouvy-api-wrapper/0.1"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
	// DefaultTimeZone is pinned so timestamps come back in UTC
	DefaultTimeZone = "Greenwich"

	// DefaultMinInterval is the least time between two network attempts
	DefaultMinInterval = time.Second
	// DefaultRetryLimit is the number of retries after the first attempt
	DefaultRetryLimit = 3
	// DefaultRetryDelay is the base of the linear backoff
	DefaultRetryDelay = 2 * time.Second
)

// Config holds the configuration for the Rouvy client.
//
// Only Email and Password are required. Zero values take the defaults above.
// For MinInterval, RetryLimit and RetryDelay a negative value means none:
// no pacing, a single attempt, or no wait between attempts.
//
//	config := &Config{
//		Email:    "rider@example.com",
//		Password: "secret",
//	}
type Config struct {
	// Email and Password for the login form.
	Email    string
	Password string

	// UserAgent string to identify your application.
	UserAgent string

	// BaseURL of the riders site. Defaults to DefaultBaseURL.
	BaseURL string

	// LoginPath is resolved against BaseURL. Defaults to "login".
	LoginPath string

	// TimeZone is sent in the CH-time-zone cookie. Defaults to DefaultTimeZone.
	TimeZone string

	// MinInterval is the least time between the end of one network attempt
	// and the start of the next.
	MinInterval time.Duration

	// RetryLimit is the number of retries after the first attempt.
	RetryLimit int

	// RetryDelay is multiplied by the retry number to get the backoff.
	RetryDelay time.Duration

	// AttemptTimeout bounds a single attempt. Zero leaves it to HTTPClient.
	AttemptTimeout time.Duration

	// RequestsPerMinute and Burst add a sustained ceiling on top of
	// MinInterval. Zero RequestsPerMinute disables it.
	RequestsPerMinute float64
	Burst             int

	// HTTPClient to use for requests. Its Transport, CheckRedirect and
	// Timeout are copied into the session client.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client

	// Logger for structured diagnostics.
	// Optional. If provided, attempts, retries and unknown nodes are logged.
	Logger *slog.Logger
}

// Client is the Rouvy client. It logs in lazily on the first request and
// paces every request it sends, so one Client should be shared.
type Client struct {
	client    *internal.Client
	config    *Config
	parser    *internal.Parser
	validator *internal.Validator
	logger    *slog.Logger
}

// NewClient creates a new Rouvy client with the provided configuration.
// It validates the configuration and sets up the login handshake; no
// network activity happens until Connect or the first request.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}

	validator := internal.NewValidator()
	if err := validator.ValidateCredentials(config.Email, config.Password); err != nil {
		return nil, err
	}

	cfg := *config
	applyDefaults(&cfg)

	if err := validator.ValidateUserAgent(cfg.UserAgent); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "UserAgent", Message: err.Error()}
	}
	if cfg.RequestsPerMinute < 0 || cfg.Burst < 0 {
		return nil, &pkgerrs.ConfigError{Field: "RequestsPerMinute/Burst", Message: "cannot be negative"}
	}

	auth, err := internal.NewPasswordAuthenticator(
		cfg.HTTPClient,
		cfg.Email,
		cfg.Password,
		cfg.UserAgent,
		cfg.BaseURL,
		cfg.LoginPath,
		cfg.TimeZone,
	)
	if err != nil {
		return nil, err
	}

	var limit *internal.RateLimitConfig
	if cfg.RequestsPerMinute > 0 {
		limit = &internal.RateLimitConfig{RequestsPerMinute: cfg.RequestsPerMinute, Burst: cfg.Burst}
	}

	client, err := internal.NewClient(internal.ClientConfig{
		BaseURL:        cfg.BaseURL,
		UserAgent:      cfg.UserAgent,
		Auth:           auth,
		MinInterval:    cfg.MinInterval,
		RetryLimit:     cfg.RetryLimit,
		RetryDelay:     cfg.RetryDelay,
		AttemptTimeout: cfg.AttemptTimeout,
		RateLimit:      limit,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		client:    client,
		config:    &cfg,
		parser:    internal.NewParser(),
		validator: validator,
		logger:    cfg.Logger,
	}, nil
}

func applyDefaults(cfg *Config) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = DefaultTimeZone
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	switch {
	case cfg.MinInterval == 0:
		cfg.MinInterval = DefaultMinInterval
	case cfg.MinInterval < 0:
		cfg.MinInterval = 0
	}
	switch {
	case cfg.RetryLimit == 0:
		cfg.RetryLimit = DefaultRetryLimit
	case cfg.RetryLimit < 0:
		cfg.RetryLimit = 0
	}
	switch {
	case cfg.RetryDelay == 0:
		cfg.RetryDelay = DefaultRetryDelay
	case cfg.RetryDelay < 0:
		cfg.RetryDelay = 0
	}
}

// Connect logs in now rather than on the first request. It is safe to
// call more than once; after a success it returns immediately. A failed
// login is not remembered, so calling Connect again retries it.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.ready("Connect"); err != nil {
		return err
	}
	_, err := c.client.Session(ctx)
	return err
}

// IsConnected returns true once a login has succeeded.
func (c *Client) IsConnected() bool {
	return c != nil && c.client != nil && c.client.HasSession()
}

// ready reports a *errors.StateError for a client not built by NewClient.
func (c *Client) ready(op string) error {
	if c == nil || c.client == nil {
		return &pkgerrs.StateError{Operation: op, Message: "client is not initialized; use NewClient"}
	}
	return nil
}

// Request sends a GET or POST to target, resolved against the base URL,
// with pacing and retries. Any other method fails with
// *errors.UnsupportedMethodError before anything is sent.
func (c *Client) Request(ctx context.Context, method, target string, payload *Payload) (*Response, error) {
	if err := c.ready("Request"); err != nil {
		return nil, err
	}
	return c.client.Request(ctx, method, target, payload)
}

// Document fetches path.data and decodes the whole node table. An empty
// route leaves out the _routes selector.
func (c *Client) Document(ctx context.Context, path, route string, query url.Values) (remix.Value, error) {
	if err := c.ready("Document"); err != nil {
		return nil, err
	}
	path = strings.TrimSuffix(path, ".data")
	if err := c.validator.ValidateDataPath(path); err != nil {
		return nil, err
	}
	if route != "" && !validation.IsValidRouteName(route) {
		return nil, &pkgerrs.ConfigError{Field: "route", Message: fmt.Sprintf("invalid route name %q", route)}
	}

	resp, err := c.client.Request(ctx, http.MethodGet, internal.DataTarget(path, route, query), nil)
	if err != nil {
		return nil, err
	}

	doc, err := remix.DecodeBytes(resp.Body)
	if err != nil {
		return nil, err
	}
	c.reportUnknowns(path, doc)
	return doc, nil
}

// RouteData fetches the data for one route of a page and returns the
// subtree under "routes/_main.<route>".
func (c *Client) RouteData(ctx context.Context, path, route string, query url.Values) (remix.Value, error) {
	if !validation.IsValidRouteName(route) {
		return nil, &pkgerrs.ConfigError{Field: "route", Message: fmt.Sprintf("invalid route name %q", route)}
	}
	doc, err := c.Document(ctx, path, route, query)
	if err != nil {
		return nil, err
	}
	return c.parser.RouteData(doc, route)
}

// reportUnknowns logs every placeholder whose meaning is not known yet.
func (c *Client) reportUnknowns(path string, doc remix.Value) {
	for _, u := range remix.Unknowns(doc) {
		c.logger.Warn("unknown remix node", "path", path, "field", u.Path.String(), "index", u.Index)
	}
}
