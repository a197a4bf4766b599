package test_helpers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

const (
	// SessionCookie is the cookie the mock login hands out.
	SessionCookie = "rouvy-session"

	defaultEmail    = "rider@example.com"
	defaultPassword = "secret"
)

// MockServer is a scripted riders site: a login form plus data endpoints
// that answer from per-path response queues.
type MockServer struct {
	server *httptest.Server

	mu          sync.Mutex
	email       string
	password    string
	loginStatus int
	sessions    int
	responses   map[string][]*MockResponse
	defaultResp *MockResponse
	delay       time.Duration
	requestLog  []RequestEntry
	callCount   map[string]int
}

// RequestEntry logs incoming requests for assertions
type RequestEntry struct {
	Method       string
	Path         string
	Query        url.Values
	Headers      http.Header
	Cookies      map[string]string
	Body         string
	Timestamp    time.Time
	ResponseCode int
}

// MockResponse defines one scripted answer
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
}

// NewMockServer starts a mock server that accepts the default credentials.
func NewMockServer() *MockServer {
	ms := &MockServer{
		email:     defaultEmail,
		password:  defaultPassword,
		responses: make(map[string][]*MockResponse),
		callCount: make(map[string]int),
		defaultResp: &MockResponse{
			Status: http.StatusNotFound,
			Body:   "not found",
		},
	}
	ms.server = httptest.NewServer(ms)
	return ms
}

// URL returns the base URL of the mock server, with a trailing slash
func (ms *MockServer) URL() string {
	return ms.server.URL + "/"
}

// Email and Password return the accepted credentials
func (ms *MockServer) Email() string    { return ms.email }
func (ms *MockServer) Password() string { return ms.password }

// Client returns an HTTP client wired to the mock server
func (ms *MockServer) Client() *http.Client {
	return ms.server.Client()
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetLoginStatus makes every login answer with status. Zero restores
// normal credential checking.
func (ms *MockServer) SetLoginStatus(status int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.loginStatus = status
}

// SetResponse configures the response for a path, e.g. "/events/search.data"
func (ms *MockServer) SetResponse(path string, response *MockResponse) {
	ms.SetResponses(path, response)
}

// SetResponses queues responses for a path. Each request takes the next
// one; the last is repeated.
func (ms *MockServer) SetResponses(path string, responses ...*MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = responses
}

// SetStatuses queues bare statuses for a path, finishing with body on the
// last one.
func (ms *MockServer) SetStatuses(path, body string, statuses ...int) {
	responses := make([]*MockResponse, len(statuses))
	for i, status := range statuses {
		responses[i] = &MockResponse{Status: status, Body: http.StatusText(status)}
	}
	if len(responses) > 0 {
		responses[len(responses)-1].Body = body
	}
	ms.SetResponses(path, responses...)
}

// SetDelay adds delay to all data responses
func (ms *MockServer) SetDelay(delay time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.delay = delay
}

// GetRequestLog returns the request log
func (ms *MockServer) GetRequestLog() []RequestEntry {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]RequestEntry, len(ms.requestLog))
	copy(out, ms.requestLog)
	return out
}

// GetCallCount returns how many requests hit path
func (ms *MockServer) GetCallCount(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.callCount[path]
}

// LoginCount returns how many login attempts were made
func (ms *MockServer) LoginCount() int {
	return ms.GetCallCount("/login")
}

// GetLastRequest returns the most recent request to path
func (ms *MockServer) GetLastRequest(path string) (*RequestEntry, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for i := len(ms.requestLog) - 1; i >= 0; i-- {
		if ms.requestLog[i].Path == path {
			entry := ms.requestLog[i]
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("no requests found for path %s", path)
}

// ServeHTTP implements http.Handler
func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	entry := RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Headers:   r.Header.Clone(),
		Cookies:   make(map[string]string),
		Body:      string(body),
		Timestamp: time.Now(),
	}
	for _, c := range r.Cookies() {
		entry.Cookies[c.Name] = c.Value
	}

	var status int
	if r.URL.Path == "/login" {
		status = ms.login(w, r, body)
	} else {
		status = ms.data(w, entry)
	}

	entry.ResponseCode = status
	ms.mu.Lock()
	ms.requestLog = append(ms.requestLog, entry)
	ms.callCount[r.URL.Path]++
	ms.mu.Unlock()
}

func (ms *MockServer) login(w http.ResponseWriter, r *http.Request, body []byte) int {
	ms.mu.Lock()
	forced := ms.loginStatus
	ms.mu.Unlock()

	if forced != 0 {
		w.WriteHeader(forced)
		fmt.Fprint(w, http.StatusText(forced))
		return forced
	}

	form, err := url.ParseQuery(string(body))
	if r.Method != http.MethodPost || err != nil || form.Get("email") != ms.email || form.Get("password") != ms.password {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "invalid credentials")
		return http.StatusUnauthorized
	}

	ms.mu.Lock()
	ms.sessions++
	token := fmt.Sprintf("session-%d", ms.sessions)
	ms.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/"})
	w.WriteHeader(http.StatusOK)
	return http.StatusOK
}

func (ms *MockServer) data(w http.ResponseWriter, entry RequestEntry) int {
	if _, ok := entry.Cookies[SessionCookie]; !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return http.StatusUnauthorized
	}

	ms.mu.Lock()
	delay := ms.delay
	response := ms.defaultResp
	if queue := ms.responses[entry.Path]; len(queue) > 0 {
		response = queue[0]
		if len(queue) > 1 {
			ms.responses[entry.Path] = queue[1:]
		}
	}
	ms.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(response.Status)
	fmt.Fprint(w, response.Body)
	return response.Status
}
