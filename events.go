package rouvy

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/jamesprial/go-rouvy-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/remix"
	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/types"
	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/validation"
)

const (
	searchPath = "events/search"
	eventsPath = "events/"

	// maxConcurrentLookups bounds GetEvents fan-out. Sends are still
	// serialised by the client's pacing.
	maxConcurrentLookups = 4
)

// SearchEvents runs an events.search query and returns the events in the
// order the site lists them.
func (c *Client) SearchEvents(ctx context.Context, request *types.EventSearchRequest) ([]*types.Event, error) {
	if err := validation.ValidateSearchRequest(request); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "EventSearchRequest", Message: err.Error()}
	}

	subtree, err := c.RouteData(ctx, searchPath, internal.RouteSearch, searchQuery(request))
	if err != nil {
		return nil, err
	}
	return c.parser.ParseEvents(subtree)
}

func searchQuery(request *types.EventSearchRequest) url.Values {
	q := url.Values{}
	if request.Query != "" {
		q.Set("searchQuery", request.Query)
	}
	if request.SmartTrainersOnly {
		q.Set("smartTrainersOnly", strconv.FormatBool(true))
	}
	if request.Type != "" {
		q.Set("type", string(request.Type))
	}
	if request.Organizer != "" {
		q.Set("organizer", string(request.Organizer))
	}
	if !request.From.IsZero() {
		q.Set("dateRange", "custom")
		q.Set("dateFrom", request.From.Format(types.DateLayout))
		q.Set("dateTo", request.To.Format(types.DateLayout))
	}
	return q
}

// GetEvent fetches the detail of one event. The detail carries fields the
// search results leave out, the route in particular.
func (c *Client) GetEvent(ctx context.Context, id string) (*types.Event, error) {
	if !validation.IsValidEventID(id) {
		return nil, &pkgerrs.ConfigError{Field: "id", Message: fmt.Sprintf("invalid event ID %q", id)}
	}

	subtree, err := c.RouteData(ctx, eventsPath+id, internal.RouteEventID, nil)
	if err != nil {
		return nil, err
	}

	event, err := c.parser.ParseEvent(subtree)
	if err != nil {
		return nil, err
	}
	if event.ID == "" {
		event.ID = id
	}
	return event, nil
}

// GetEvents fetches several event details concurrently. The result is in
// the order of ids; the first failure cancels the rest.
func (c *Client) GetEvents(ctx context.Context, ids []string) ([]*types.Event, error) {
	events := make([]*types.Event, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, id := range ids {
		g.Go(func() error {
			event, err := c.GetEvent(ctx, id)
			if err != nil {
				return fmt.Errorf("event %s: %w", id, err)
			}
			events[i] = event
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return events, nil
}

// Leaderboard returns the decoded leaderboard document of an event as is.
func (c *Client) Leaderboard(ctx context.Context, id string) (remix.Value, error) {
	if !validation.IsValidEventID(id) {
		return nil, &pkgerrs.ConfigError{Field: "id", Message: fmt.Sprintf("invalid event ID %q", id)}
	}
	return c.Document(ctx, eventsPath+id+"/leaderboard", "", nil)
}

// FindRaceEvents returns the events that make up one race: smart-trainer
// races matching the title that start within the race window, have the
// requested lap count and are ridden on the requested route. Results are
// sorted by start time.
func (c *Client) FindRaceEvents(ctx context.Context, q *types.RaceQuery) ([]*types.Event, error) {
	if err := validation.ValidateRaceQuery(q); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "RaceQuery", Message: err.Error()}
	}

	day := q.Day()
	found, err := c.SearchEvents(ctx, &types.EventSearchRequest{
		Query:             q.Title,
		Type:              types.EventTypeRace,
		SmartTrainersOnly: true,
		From:              day.AddDate(0, 0, q.SearchBackDays),
		To:                day.AddDate(0, 0, q.SearchForwardDays),
	})
	if err != nil {
		return nil, err
	}

	start, end := q.Window()
	var candidates []*types.Event
	for _, event := range found {
		if event.StartDateTime.Before(start) || event.StartDateTime.After(end) {
			continue
		}
		if event.Laps != q.Laps {
			continue
		}
		if err := validation.ValidateEvent(event); err != nil {
			c.logger.Warn("race candidate skipped", "event", event.ID, "error", err)
			continue
		}
		c.logger.Debug("race candidate", "event", event.String())
		candidates = append(candidates, event)
	}

	ids := make([]string, len(candidates))
	for i, event := range candidates {
		ids[i] = event.ID
	}
	details, err := c.GetEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	var matched []*types.Event
	for i, detail := range details {
		if detail.RouteID() != q.RouteID {
			c.logger.Info("race candidate rejected", "event", candidates[i].ID, "route", detail.RouteID(), "want", q.RouteID)
			continue
		}
		fillFromSearch(detail, candidates[i])
		matched = append(matched, detail)
	}

	slices.SortStableFunc(matched, func(a, b *types.Event) int {
		return a.StartDateTime.Compare(b.StartDateTime)
	})
	return matched, nil
}

// fillFromSearch copies fields the detail page left empty from the search hit.
func fillFromSearch(detail, hit *types.Event) {
	if detail.Title == "" {
		detail.Title = hit.Title
	}
	if detail.StartDateTime.IsZero() {
		detail.StartDateTime = hit.StartDateTime
	}
	if detail.Laps == 0 {
		detail.Laps = hit.Laps
	}
	if detail.Type == "" {
		detail.Type = hit.Type
	}
}
