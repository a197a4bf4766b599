// Package types holds the Rouvy records extracted from decoded route data.
package types

import (
	"fmt"
	"strings"
	"time"
)

// EventType selects the kind of event in a search.
type EventType string

const (
	EventTypeRace      EventType = "RACE"
	EventTypeGroupRide EventType = "GROUP_RIDE"
)

// Organizer filters events by who created them.
type Organizer string

const (
	OrganizerAll        Organizer = "all"
	OrganizerOfficial   Organizer = "official"
	OrganizerUnofficial Organizer = "unofficial"
)

// EventStatus is the completion state reported for an event.
type EventStatus string

const (
	EventStatusFinished   EventStatus = "FINISHED"
	EventStatusUnfinished EventStatus = "UNFINISHED"
)

// DateLayout is the format of the dateFrom and dateTo search parameters.
const DateLayout = "2006-01-02"

// RouteRef identifies the route an event is ridden on.
type RouteRef struct {
	ID   string `mapstructure:"id" json:"id"`
	Name string `mapstructure:"name" json:"name,omitempty"`
}

// Event is a single entry from an events.search result.
type Event struct {
	ID            string      `mapstructure:"id" json:"id"`
	Title         string      `mapstructure:"title" json:"title"`
	StartDateTime time.Time   `mapstructure:"startDateTime" json:"startDateTime"`
	Laps          int         `mapstructure:"laps" json:"laps"`
	Type          EventType   `mapstructure:"type" json:"type,omitempty"`
	Status        EventStatus `mapstructure:"status" json:"status,omitempty"`
	Route         *RouteRef   `mapstructure:"route" json:"route,omitempty"`

	// Extra keeps the fields this package does not model.
	Extra map[string]any `mapstructure:",remain" json:"-"`
}

// String returns a short description used in logs.
func (e *Event) String() string {
	if e == nil {
		return "<nil event>"
	}
	return fmt.Sprintf("%s %q at %s (%d laps)", e.ID, e.Title, e.StartDateTime.Format(time.RFC3339), e.Laps)
}

// RouteID returns the route ID, or "" when the event carries no route.
func (e *Event) RouteID() string {
	if e == nil || e.Route == nil {
		return ""
	}
	return e.Route.ID
}

// EventSearchRequest parameters for an events.search query.
type EventSearchRequest struct {
	// Query is matched against event titles.
	Query string
	// Type restricts results to races or group rides. Empty means any.
	Type EventType
	// Organizer restricts who created the event. Empty means any.
	Organizer Organizer
	// SmartTrainersOnly limits results to smart-trainer events.
	SmartTrainersOnly bool
	// From and To bound the search by day, inclusive. Both or neither.
	From time.Time
	To   time.Time
}

// RaceQuery describes the race a caller wants matching events for.
type RaceQuery struct {
	// Title is the search query; events must contain it in their title.
	Title string
	// Date is the UTC day of the race; only the date part is used.
	Date time.Time
	// RouteID the event must be ridden on.
	RouteID string
	// Laps the event must have.
	Laps int
	// SearchBackDays and SearchForwardDays widen the upstream search window
	// around Date. SearchBackDays is usually negative.
	SearchBackDays    int
	SearchForwardDays int
	// AllowPlusHours lets events that start early the next day match.
	AllowPlusHours int
}

// Window returns the start-time window accepted for the race:
// [Date, Date + 1 day + AllowPlusHours].
func (q *RaceQuery) Window() (time.Time, time.Time) {
	day := q.Day()
	return day, day.Add(24*time.Hour + time.Duration(q.AllowPlusHours)*time.Hour)
}

// Day returns Date truncated to midnight UTC.
func (q *RaceQuery) Day() time.Time {
	y, m, d := q.Date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseEventType maps a user supplied name to an EventType.
func ParseEventType(s string) (EventType, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "":
		return "", nil
	case string(EventTypeRace):
		return EventTypeRace, nil
	case string(EventTypeGroupRide):
		return EventTypeGroupRide, nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}
