package types

import (
	"strings"
	"testing"
	"time"
)

func TestRaceQuery_Window(t *testing.T) {
	q := &RaceQuery{
		Date:           time.Date(2024, 10, 5, 17, 30, 0, 0, time.UTC),
		AllowPlusHours: 2,
	}

	from, to := q.Window()
	if want := time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("from = %s, want %s", from, want)
	}
	if want := time.Date(2024, 10, 6, 2, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Errorf("to = %s, want %s", to, want)
	}
}

func TestRaceQuery_DayUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	q := &RaceQuery{Date: time.Date(2024, 10, 6, 5, 0, 0, 0, loc)}

	if got, want := q.Day(), time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Day() = %s, want %s", got, want)
	}
}

func TestEvent_String(t *testing.T) {
	var nilEvent *Event
	if nilEvent.String() != "<nil event>" {
		t.Errorf("unexpected nil string %q", nilEvent.String())
	}

	e := &Event{
		ID:            "041c2d52-1230-4f82-be89-fb6abdec970f",
		Title:         "rvy_racing Race 12",
		StartDateTime: time.Date(2024, 10, 5, 18, 0, 0, 0, time.UTC),
		Laps:          3,
	}
	s := e.String()
	for _, want := range []string{e.ID, "rvy_racing Race 12", "2024-10-05T18:00:00Z", "3 laps"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, want to contain %q", s, want)
		}
	}
}

func TestEvent_RouteID(t *testing.T) {
	if got := (&Event{}).RouteID(); got != "" {
		t.Errorf("RouteID() = %q, want empty", got)
	}
	if got := (&Event{Route: &RouteRef{ID: "96635"}}).RouteID(); got != "96635" {
		t.Errorf("RouteID() = %q, want 96635", got)
	}
}

func TestParseEventType(t *testing.T) {
	tests := []struct {
		in      string
		want    EventType
		wantErr bool
	}{
		{"race", EventTypeRace, false},
		{"RACE", EventTypeRace, false},
		{"group-ride", EventTypeGroupRide, false},
		{" group_ride ", EventTypeGroupRide, false},
		{"", "", false},
		{"crit", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEventType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
