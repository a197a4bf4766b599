package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ChaosMode defines the type of chaos to inject
type ChaosMode int

const (
	// ChaosNone performs normal HTTP requests
	ChaosNone ChaosMode = iota

	// ChaosConnectionReset fails before the request reaches the server
	ChaosConnectionReset

	// ChaosDNSFailure fails with a temporary lookup error
	ChaosDNSFailure

	// ChaosPartialRead lets the server answer, then breaks the body midway
	ChaosPartialRead

	// ChaosEmptyBody answers 200 with no body
	ChaosEmptyBody

	// ChaosGarbageBody answers 200 with bytes that are not a node table
	ChaosGarbageBody

	// ChaosServiceUnavailable answers 503 without reaching the server
	ChaosServiceUnavailable
)

func (m ChaosMode) String() string {
	switch m {
	case ChaosNone:
		return "none"
	case ChaosConnectionReset:
		return "connection-reset"
	case ChaosDNSFailure:
		return "dns-failure"
	case ChaosPartialRead:
		return "partial-read"
	case ChaosEmptyBody:
		return "empty-body"
	case ChaosGarbageBody:
		return "garbage-body"
	case ChaosServiceUnavailable:
		return "service-unavailable"
	default:
		return fmt.Sprintf("chaos(%d)", int(m))
	}
}

// ChaosConfig configures the chaos transport behavior
type ChaosConfig struct {
	// Script gives the mode of each request in order. After the script
	// runs out, requests use Mode.
	Script []ChaosMode

	// Mode applies once Script is exhausted
	Mode ChaosMode

	// FailureRate is the probability (0.0 to 1.0) that a request after the
	// script gets Mode instead of passing through. Zero means always Mode.
	FailureRate float64

	// Seed makes FailureRate decisions repeatable
	Seed int64

	// Delay adds artificial delay to every request
	Delay time.Duration
}

// ChaosTransport wraps an http.RoundTripper and injects failure modes
type ChaosTransport struct {
	base   http.RoundTripper
	config ChaosConfig

	mu      sync.Mutex
	rnd     *rand.Rand
	applied []ChaosMode
}

// NewChaosTransport wraps base, or http.DefaultTransport when base is nil
func NewChaosTransport(base http.RoundTripper, config ChaosConfig) *ChaosTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &ChaosTransport{
		base:   base,
		config: config,
		rnd:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Applied returns the mode used for every request so far
func (c *ChaosTransport) Applied() []ChaosMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChaosMode(nil), c.applied...)
}

// Failures counts the requests that did not pass through untouched
func (c *ChaosTransport) Failures() int {
	n := 0
	for _, m := range c.Applied() {
		if m != ChaosNone {
			n++
		}
	}
	return n
}

func (c *ChaosTransport) next() ChaosMode {
	c.mu.Lock()
	defer c.mu.Unlock()

	var mode ChaosMode
	switch n := len(c.applied); {
	case n < len(c.config.Script):
		mode = c.config.Script[n]
	case c.config.FailureRate > 0 && c.rnd.Float64() >= c.config.FailureRate:
		mode = ChaosNone
	default:
		mode = c.config.Mode
	}
	c.applied = append(c.applied, mode)
	return mode
}

// RoundTrip implements http.RoundTripper interface
func (c *ChaosTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mode := c.next()

	if c.config.Delay > 0 {
		select {
		case <-time.After(c.config.Delay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	switch mode {
	case ChaosConnectionReset:
		return nil, errors.New("connection reset by peer")

	case ChaosDNSFailure:
		return nil, &DNSError{Err: "no such host", Server: "8.8.8.8"}

	case ChaosPartialRead:
		resp, err := c.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		half := len(body) / 2
		resp.Body = &partialReadCloser{reader: bytes.NewReader(body[:half]), failAfter: half}
		return resp, nil

	case ChaosEmptyBody:
		return NewMockResponseBuilder().WithStatus(http.StatusOK).Build(req), nil

	case ChaosGarbageBody:
		return NewMockResponseBuilder().WithStatus(http.StatusOK).WithBody("<html>not a node table\x00\x01</html>").Build(req), nil

	case ChaosServiceUnavailable:
		return NewMockResponseBuilder().WithStatus(http.StatusServiceUnavailable).WithBody("maintenance").Build(req), nil

	default:
		return c.base.RoundTrip(req)
	}
}

// partialReadCloser is an io.ReadCloser that fails after reading a certain amount
type partialReadCloser struct {
	reader    io.Reader
	failAfter int
	totalRead int
}

func (p *partialReadCloser) Read(buf []byte) (int, error) {
	if p.totalRead >= p.failAfter {
		return 0, errors.New("connection reset during read")
	}

	n, err := p.reader.Read(buf)
	p.totalRead += n

	if p.totalRead >= p.failAfter {
		return n, errors.New("connection reset during read")
	}

	return n, err
}

func (p *partialReadCloser) Close() error {
	return nil
}

// DNSError simulates DNS lookup failures
type DNSError struct {
	Err    string
	Server string
}

func (e *DNSError) Error() string {
	return fmt.Sprintf("lookup failed: %s (server: %s)", e.Err, e.Server)
}

func (e *DNSError) Temporary() bool {
	return true
}

func (e *DNSError) Timeout() bool {
	return false
}

// MockResponseBuilder helps build custom mock responses
type MockResponseBuilder struct {
	status  int
	body    string
	headers map[string]string
}

// NewMockResponseBuilder creates a new mock response builder
func NewMockResponseBuilder() *MockResponseBuilder {
	return &MockResponseBuilder{
		status:  http.StatusOK,
		headers: make(map[string]string),
	}
}

// WithStatus sets the HTTP status code
func (b *MockResponseBuilder) WithStatus(code int) *MockResponseBuilder {
	b.status = code
	return b
}

// WithBody sets the response body
func (b *MockResponseBuilder) WithBody(body string) *MockResponseBuilder {
	b.body = body
	return b
}

// WithHeader adds a header to the response
func (b *MockResponseBuilder) WithHeader(key, value string) *MockResponseBuilder {
	b.headers[key] = value
	return b
}

// Build creates the HTTP response
func (b *MockResponseBuilder) Build(req *http.Request) *http.Response {
	header := make(http.Header)
	for k, v := range b.headers {
		header.Set(k, v)
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", b.status, http.StatusText(b.status)),
		StatusCode:    b.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Body:          io.NopCloser(strings.NewReader(b.body)),
		ContentLength: int64(len(b.body)),
		Request:       req,
		Header:        header,
	}
}
