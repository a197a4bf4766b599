package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/types"
)

var (
	// routeIDRegex matches numeric Rouvy route IDs
	routeIDRegex = regexp.MustCompile(`^[0-9]{1,12}$`)

	// routeNameRegex matches Remix route names such as "events_.$id"
	routeNameRegex = regexp.MustCompile(`^[A-Za-z0-9_.$-]+$`)
)

// maxLaps is a sanity cap for lap counts in race queries
const maxLaps = 100

// IsValidEventID checks that s is a UUID in its canonical hyphenated form
func IsValidEventID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	return err == nil && id.String() == strings.ToLower(s)
}

// IsValidRouteID checks that s is a numeric route ID
func IsValidRouteID(s string) bool {
	return routeIDRegex.MatchString(s)
}

// IsValidRouteName checks that s can be used in a _routes query parameter
func IsValidRouteName(s string) bool {
	return routeNameRegex.MatchString(s)
}

// ValidateSearchRequest validates an events.search request
func ValidateSearchRequest(req *types.EventSearchRequest) error {
	if req == nil {
		return fmt.Errorf("search request is nil")
	}

	var errs []error

	if req.From.IsZero() != req.To.IsZero() {
		errs = append(errs, fmt.Errorf("From and To must be set together"))
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		errs = append(errs, fmt.Errorf("To (%s) is before From (%s)", req.To.Format(types.DateLayout), req.From.Format(types.DateLayout)))
	}

	switch req.Type {
	case "", types.EventTypeRace, types.EventTypeGroupRide:
	default:
		errs = append(errs, fmt.Errorf("Type has invalid value: %s", req.Type))
	}

	switch req.Organizer {
	case "", types.OrganizerAll, types.OrganizerOfficial, types.OrganizerUnofficial:
	default:
		errs = append(errs, fmt.Errorf("Organizer has invalid value: %s", req.Organizer))
	}

	if len(errs) > 0 {
		return fmt.Errorf("search request validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateRaceQuery validates a race lookup
func ValidateRaceQuery(q *types.RaceQuery) error {
	if q == nil {
		return fmt.Errorf("race query is nil")
	}

	var errs []error

	if strings.TrimSpace(q.Title) == "" {
		errs = append(errs, fmt.Errorf("Title is required"))
	}
	if q.Date.IsZero() {
		errs = append(errs, fmt.Errorf("Date is required"))
	}
	if !IsValidRouteID(q.RouteID) {
		errs = append(errs, fmt.Errorf("RouteID has invalid format: %q", q.RouteID))
	}
	if q.Laps < 1 || q.Laps > maxLaps {
		errs = append(errs, fmt.Errorf("Laps must be between 1 and %d, got %d", maxLaps, q.Laps))
	}
	if q.SearchBackDays > q.SearchForwardDays {
		errs = append(errs, fmt.Errorf("SearchBackDays (%d) is after SearchForwardDays (%d)", q.SearchBackDays, q.SearchForwardDays))
	}
	if q.AllowPlusHours < 0 {
		errs = append(errs, fmt.Errorf("AllowPlusHours cannot be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("race query validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateEvent checks the fields every extracted event must carry
func ValidateEvent(e *types.Event) error {
	if e == nil {
		return fmt.Errorf("event is nil")
	}

	var errs []error

	if !IsValidEventID(e.ID) {
		errs = append(errs, fmt.Errorf("ID has invalid format: %q", e.ID))
	}
	if e.Title == "" {
		errs = append(errs, fmt.Errorf("Title is required"))
	}
	if e.StartDateTime.IsZero() {
		errs = append(errs, fmt.Errorf("StartDateTime is required"))
	}
	if e.Laps < 0 {
		errs = append(errs, fmt.Errorf("Laps cannot be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("event validation failed: %w", errors.Join(errs...))
	}
	return nil
}
