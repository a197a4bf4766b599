package adversarial_tests

import (
	"context"
	"errors"
	"net/url"
	"testing"

	rouvy "github.com/jamesprial/go-rouvy-api-wrapper"
	"github.com/jamesprial/go-rouvy-api-wrapper/adversarial_tests/helpers"
	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/validation"
)

func isConfigError(err error) bool {
	var cfgErr *pkgerrs.ConfigError
	return errors.As(err, &cfgErr)
}

// TestDataPathFuzzing ensures hostile page paths are refused before any
// network activity
func TestDataPathFuzzing(t *testing.T) {
	ms := newServer(t)
	client, transport := createChaosClient(t, ms, helpers.ChaosConfig{}, 0)
	fuzzer := helpers.NewFuzzer(1)

	for _, path := range fuzzer.FuzzDataPath() {
		_, err := client.Document(context.Background(), path, "", nil)
		if !isConfigError(err) {
			t.Errorf("Document(%q): expected ConfigError, got %T (%v)", path, err, err)
		}
	}
	if got := len(transport.Applied()); got != 0 {
		t.Errorf("expected no requests, got %d", got)
	}
}

// TestRouteNameFuzzing feeds route selectors that could smuggle query syntax
func TestRouteNameFuzzing(t *testing.T) {
	ms := newServer(t)
	client, transport := createChaosClient(t, ms, helpers.ChaosConfig{}, 0)

	routes := []string{
		"",
		"events.search&_routes=root",
		"events search",
		"events/search",
		"events.search#x",
		"events.search\n",
		"événements",
	}
	for _, route := range routes {
		_, err := client.RouteData(context.Background(), "events/search", route, nil)
		if !isConfigError(err) {
			t.Errorf("RouteData(route %q): expected ConfigError, got %T (%v)", route, err, err)
		}
	}
	if got := len(transport.Applied()); got != 0 {
		t.Errorf("expected no requests, got %d", got)
	}
}

// TestEventIDFuzzing checks event lookups only accept canonical UUIDs
func TestEventIDFuzzing(t *testing.T) {
	ms := newServer(t)
	client, transport := createChaosClient(t, ms, helpers.ChaosConfig{}, 0)
	fuzzer := helpers.NewFuzzer(1)

	for _, id := range fuzzer.FuzzEventID() {
		if validation.IsValidEventID(id) {
			t.Errorf("IsValidEventID(%q) = true", id)
		}
		if _, err := client.GetEvent(context.Background(), id); !isConfigError(err) {
			t.Errorf("GetEvent(%q): expected ConfigError, got %T (%v)", id, err, err)
		}
		if _, err := client.Leaderboard(context.Background(), id); !isConfigError(err) {
			t.Errorf("Leaderboard(%q): expected ConfigError, got %T (%v)", id, err, err)
		}
	}
	if got := len(transport.Applied()); got != 0 {
		t.Errorf("expected no requests, got %d", got)
	}
}

// TestUserAgentFuzzing rejects header injection through the user agent
func TestUserAgentFuzzing(t *testing.T) {
	fuzzer := helpers.NewFuzzer(1)

	for _, ua := range fuzzer.FuzzUserAgent() {
		_, err := rouvy.NewClient(&rouvy.Config{
			Email:     "rider@example.com",
			Password:  "secret",
			UserAgent: ua,
		})
		if !isConfigError(err) {
			t.Errorf("NewClient(UserAgent %q): expected ConfigError, got %v", ua, err)
		}
	}
}

// TestQueryValuesAreEscaped sends hostile query values and checks they
// arrive intact instead of adding parameters
func TestQueryValuesAreEscaped(t *testing.T) {
	ms := newServer(t)
	client, _ := createChaosClient(t, ms, helpers.ChaosConfig{}, 0)
	fuzzer := helpers.NewFuzzer(1)

	values := append([]string{
		"a&_routes=root",
		"x#fragment",
		"../../login",
		"' OR '1'='1",
		fuzzer.GenerateRandomString(64, true),
	}, fuzzer.GenerateControlCharString()...)

	for _, value := range values {
		_, err := client.Document(context.Background(), "dashboard", "", url.Values{"q": {value}})
		if err != nil {
			t.Fatalf("Document with q=%q failed: %v", value, err)
		}
		entry, err := ms.GetLastRequest(dashboardPath)
		if err != nil {
			t.Fatal(err)
		}
		if got := entry.Query.Get("q"); got != value {
			t.Errorf("q arrived as %q, want %q", got, value)
		}
		if entry.Query.Has("_routes") {
			t.Errorf("q=%q injected a _routes parameter", value)
		}
	}
}
