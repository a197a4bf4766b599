package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/remix"
)

// printValue prints v as JSON, or the matches of a JSONPath selector.
func (a *app) printValue(v remix.Value, selector string) error {
	if selector == "" {
		return a.printJSON(v)
	}
	matches, err := remix.Query(v, selector)
	if err != nil {
		return err
	}
	return a.printJSON(matches)
}

func parseQuery(pairs []string) (url.Values, error) {
	q := url.Values{}
	for _, pair := range pairs {
		k, val, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--query %q must look like key=value", pair)
		}
		q.Add(k, val)
	}
	return q, nil
}

func newDataCmd(a *app) *cobra.Command {
	var (
		route    string
		pairs    []string
		selector string
	)

	cmd := &cobra.Command{
		Use:   "data <path>",
		Short: "Fetch and decode the route data of a page",
		Long: `Fetch <path>.data and print it decoded as JSON.

With --route only that route's subtree is requested and printed.

Examples:
  rouvy data events/search --route events.search --query searchQuery=rvy_racing
  rouvy data events/search --route events.search --select '$.data.events[*].title'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseQuery(pairs)
			if err != nil {
				return err
			}
			client, err := a.rouvyClient()
			if err != nil {
				return err
			}

			var v remix.Value
			if route != "" {
				v, err = client.RouteData(cmd.Context(), args[0], route, query)
			} else {
				v, err = client.Document(cmd.Context(), args[0], "", query)
			}
			if err != nil {
				return err
			}
			return a.printValue(v, selector)
		},
	}
	cmd.Flags().StringVar(&route, "route", "", "Route name, e.g. events.search")
	cmd.Flags().StringArrayVarP(&pairs, "query", "q", nil, "Query parameter key=value (repeatable)")
	cmd.Flags().StringVar(&selector, "select", "", "JSONPath selector applied to the result")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var (
		selector string
		unknowns bool
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a saved node table without logging in",
		Long:  "Decode a node table read from file, or from stdin when file is omitted or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("unable to read input: %w", err)
			}

			v, err := remix.DecodeBytes(data)
			if err != nil {
				return err
			}
			if unknowns {
				return a.printUnknowns(v)
			}
			return a.printValue(v, selector)
		},
	}
	cmd.Flags().StringVar(&selector, "select", "", "JSONPath selector applied to the result")
	cmd.Flags().BoolVar(&unknowns, "unknowns", false, "List the unknown nodes instead of the value")
	return cmd
}

func (a *app) printUnknowns(v remix.Value) error {
	nodes := remix.Unknowns(v)
	if a.jsonOutput {
		out := make([]map[string]any, len(nodes))
		for i, n := range nodes {
			out[i] = map[string]any{"path": n.Path.String(), "index": n.Index}
		}
		return a.printJSON(out)
	}
	if len(nodes) == 0 {
		okLabel.Fprintln(a.out, "No unknown nodes")
		return nil
	}

	t := newTable(a.out)
	t.AppendHeader(table.Row{"Path", "Index"})
	for _, n := range nodes {
		t.AppendRow(table.Row{n.Path.String(), n.Index})
	}
	t.Render()
	return nil
}
