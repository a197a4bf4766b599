package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/types"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func parseDay(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse(types.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be a date like 2024-10-05: %w", flag, err)
	}
	return day, nil
}

func (a *app) printEvents(events []*types.Event, withRoute bool) error {
	if a.jsonOutput {
		return a.printJSON(events)
	}
	if len(events) == 0 {
		warnLabel.Fprintln(a.out, "No events found")
		return nil
	}

	t := newTable(a.out)
	header := table.Row{"ID", "Title", "Start (UTC)", "Laps", "Type"}
	if withRoute {
		header = append(header, "Route")
	}
	t.AppendHeader(header)
	for _, e := range events {
		row := table.Row{e.ID, e.Title, e.StartDateTime.UTC().Format("2006-01-02 15:04"), e.Laps, e.Type}
		if withRoute {
			route := e.RouteID()
			if e.Route != nil && e.Route.Name != "" {
				route = fmt.Sprintf("%s (%s)", e.Route.ID, e.Route.Name)
			}
			row = append(row, route)
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

func newLoginCmd(a *app) *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and check the configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.rouvyClient()
			if err != nil {
				return err
			}
			if err := client.Connect(cmd.Context()); err != nil {
				return err
			}

			if a.jsonOutput {
				return a.printJSON(map[string]string{"status": "ok", "email": a.cfg.Email})
			}
			okLabel.Fprintf(a.out, "Logged in as %s\n", a.cfg.Email)

			if save != "" {
				if err := a.cfg.Write(save); err != nil {
					return err
				}
				okLabel.Fprintf(a.out, "Configuration saved to %s\n", save)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "Write the working configuration to this file")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		eventType string
		organizer string
		smart     bool
		from, to  string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &types.EventSearchRequest{
				Organizer:         types.Organizer(organizer),
				SmartTrainersOnly: smart,
			}
			if len(args) == 1 {
				req.Query = args[0]
			}

			var err error
			if req.Type, err = types.ParseEventType(eventType); err != nil {
				return err
			}
			if req.From, err = parseDay("from", from); err != nil {
				return err
			}
			if req.To, err = parseDay("to", to); err != nil {
				return err
			}

			client, err := a.rouvyClient()
			if err != nil {
				return err
			}
			events, err := client.SearchEvents(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printEvents(events, false)
		},
	}
	cmd.Flags().StringVar(&eventType, "type", "", "Event type: race or group-ride")
	cmd.Flags().StringVar(&organizer, "organizer", "", "Organizer: all, official or unofficial")
	cmd.Flags().BoolVar(&smart, "smart-trainers", false, "Only smart-trainer events")
	cmd.Flags().StringVar(&from, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last day, YYYY-MM-DD")
	return cmd
}

func newEventCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "event <id>...",
		Short: "Show event details",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.rouvyClient()
			if err != nil {
				return err
			}
			events, err := client.GetEvents(cmd.Context(), args)
			if err != nil {
				return err
			}
			return a.printEvents(events, true)
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	var (
		q    types.RaceQuery
		date string
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find the events that make up a race",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay("date", date)
			if err != nil {
				return err
			}
			q.Date = day

			client, err := a.rouvyClient()
			if err != nil {
				return err
			}
			events, err := client.FindRaceEvents(cmd.Context(), &q)
			if err != nil {
				return err
			}
			return a.printEvents(events, true)
		},
	}
	cmd.Flags().StringVar(&q.Title, "title", "", "Text the event titles contain")
	cmd.Flags().StringVar(&date, "date", "", "Race day, YYYY-MM-DD")
	cmd.Flags().StringVar(&q.RouteID, "route", "", "Route ID the events are ridden on")
	cmd.Flags().IntVar(&q.Laps, "laps", 1, "Lap count")
	cmd.Flags().IntVar(&q.SearchBackDays, "back", -1, "Days before the race day to search")
	cmd.Flags().IntVar(&q.SearchForwardDays, "forward", 1, "Days after the race day to search")
	cmd.Flags().IntVar(&q.AllowPlusHours, "plus-hours", 0, "Hours into the next day an event may start")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("route")
	return cmd
}

func newLeaderboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard <id>",
		Short: "Print the decoded leaderboard of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.rouvyClient()
			if err != nil {
				return err
			}
			doc, err := client.Leaderboard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(doc)
		},
	}
}
