// Package rouvy provides a Go client for the Rouvy riders site.
//
// # Overview
//
// The riders site is a Remix application. Its pages load their data from
// "<page>.data" endpoints that answer with a flattened node table rather
// than plain JSON. This package logs in with an email and password, paces
// and retries every request, and decodes those node tables into ordinary
// nested values (see package remix) and typed events (see package types).
//
// # Features
//
//   - Lazy login on the first request, shared by every caller
//   - A minimum interval between requests, with an optional sustained ceiling
//   - Linear backoff retries for unacceptable statuses and transport errors
//   - Remix route data decoding with unknown-node reporting
//   - Event search, event detail lookups and a race event finder
//   - Structured logging support via Go's slog package
//
// # Quick Start
//
//	client, err := rouvy.NewClient(&rouvy.Config{
//		Email:    os.Getenv("ROUVY_EMAIL"),
//		Password: os.Getenv("ROUVY_PASSWORD"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	events, err := client.SearchEvents(ctx, &types.EventSearchRequest{
//		Query: "rvy_racing",
//		Type:  types.EventTypeRace,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, e := range events {
//		fmt.Println(e.Title, e.StartDateTime)
//	}
//
// # Connection Lifecycle
//
// NewClient performs no network activity. The first request logs in; every
// request after that reuses the same cookie session. Call Connect to log in
// eagerly and surface credential problems early. A failed login is returned
// to the caller and not remembered, so the next request tries again.
//
// # Pacing and Retries
//
// All network attempts, login attempts included, pass through one gate. An
// attempt starts no sooner than MinInterval after the previous one finished.
// A response outside 200, 201, 202 and 204 is retried up to RetryLimit
// times, waiting RetryDelay, then 2*RetryDelay and so on, or longer if the
// server sent Retry-After.
//
// # Route Data
//
// Any page can be read directly:
//
//	subtree, err := client.RouteData(ctx, "events/search", "events.search", url.Values{
//		"searchQuery": {"rvy_racing"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	titles, _ := remix.Query(subtree, "$.data.events[*].title")
//
// # Error Handling
//
// Errors are typed structs from package errors:
//
//	_, err := client.GetEvent(ctx, id)
//	if err != nil {
//		switch e := err.(type) {
//		case *errors.ConfigError:
//			// invalid configuration or argument
//		case *errors.AuthError:
//			// login rejected, or the network failed on every login attempt
//		case *errors.RequestExhaustedError:
//			// every attempt failed; e.StatusCode and e.Body describe the last one
//		case *errors.MalformedInputError:
//			// the node table did not have the expected shape
//		case *errors.ParseError:
//			// decoded data did not contain the expected fields
//		}
//	}
//
// # Logging
//
// Provide a logger in the config to see attempts, retries and unknown nodes:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//		Level: slog.LevelDebug,
//	}))
package rouvy
