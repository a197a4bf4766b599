package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"time"

	rouvy "github.com/jamesprial/go-rouvy-api-wrapper"
	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/remix"
	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/types"
)

func main() {
	// Get credentials from environment variables
	email := os.Getenv("ROUVY_EMAIL")
	password := os.Getenv("ROUVY_PASSWORD")

	if email == "" || password == "" {
		log.Fatal("ROUVY_EMAIL and ROUVY_PASSWORD environment variables are required")
	}

	// Route structured logs to stdout; adjust the level as needed.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	config := &rouvy.Config{
		Email:     email,
		Password:  password,
		UserAgent: "example-bot/1.0",
		Logger:    logger,
	}

	client, err := rouvy.NewClient(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	if err := client.Connect(ctx); err != nil {
		log.Fatalf("Failed to log in to Rouvy: %v", err)
	}
	fmt.Println("Successfully logged in to Rouvy!")

	// Search this week's smart-trainer races
	today := time.Now().UTC().Truncate(24 * time.Hour)
	events, err := client.SearchEvents(ctx, &types.EventSearchRequest{
		Query:             "rvy_racing",
		Type:              types.EventTypeRace,
		SmartTrainersOnly: true,
		From:              today,
		To:                today.AddDate(0, 0, 7),
	})
	if err != nil {
		log.Fatalf("Failed to search events: %v", err)
	}

	fmt.Printf("\nUpcoming races (%d):\n", len(events))
	for i, e := range events {
		fmt.Printf("%d. %s at %s (%d laps)\n", i+1, e.Title, e.StartDateTime.Format(time.RFC1123), e.Laps)
	}
	if len(events) == 0 {
		return
	}

	// The search results leave out the route; the detail page has it
	detail, err := client.GetEvent(ctx, events[0].ID)
	if err != nil {
		log.Printf("Failed to get event detail: %v", err)
	} else if detail.Route != nil {
		fmt.Printf("\nFirst race rides route %s (%s)\n", detail.Route.ID, detail.Route.Name)
	}

	// Find every event of that race on its day
	if detail != nil && detail.RouteID() != "" {
		race, err := client.FindRaceEvents(ctx, &types.RaceQuery{
			Title:             "rvy_racing",
			Date:              detail.StartDateTime,
			RouteID:           detail.RouteID(),
			Laps:              detail.Laps,
			SearchBackDays:    -1,
			SearchForwardDays: 1,
			AllowPlusHours:    3,
		})
		if err != nil {
			log.Printf("Failed to find race events: %v", err)
		} else {
			fmt.Printf("\nThe race runs %d times:\n", len(race))
			for _, e := range race {
				fmt.Printf("  - %s\n", e)
			}
		}
	}

	// Any page can be read as raw route data and queried with JSONPath
	subtree, err := client.RouteData(ctx, "events/search", "events.search", url.Values{"searchQuery": {"rvy_racing"}})
	if err != nil {
		log.Printf("Failed to read route data: %v", err)
		return
	}
	titles, err := remix.Query(subtree, "$.data.events[*].title")
	if err != nil {
		log.Printf("Failed to query route data: %v", err)
		return
	}
	fmt.Printf("\nTitles straight from the route data: %v\n", titles)
}
