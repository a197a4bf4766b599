// Package cli implements the rouvy command line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	rouvy "github.com/jamesprial/go-rouvy-api-wrapper"
	"github.com/jamesprial/go-rouvy-api-wrapper/internal/config"
)

var okLabel = color.New(color.FgGreen)
var warnLabel = color.New(color.FgYellow)
var errorLabel = color.New(color.FgRed)

// app is the state shared by the commands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	configFile string
	envFile    string
	jsonOutput bool
	verbose    bool
	noColor    bool

	cfg    *config.File
	client *rouvy.Client
}

// NewRootCmd builds the command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "rouvy [command] [flags]",
		Short: "Rouvy CLI - query events on the Rouvy riders site",
		Long: `Rouvy CLI logs in to the Rouvy riders site and reads its route data.

Credentials come from the config file, a .env file or the
ROUVY_EMAIL and ROUVY_PASSWORD environment variables.

Examples:
  # Check the credentials
  rouvy login

  # Search for races
  rouvy search rvy_racing --type race --from 2024-10-05 --to 2024-10-07

  # Find the events of one race
  rouvy find --title rvy_racing --date 2024-10-05 --route 96635 --laps 3

  # Decode a saved .data response
  rouvy decode search.data --select "$['routes/_main.events.search'].data.events[*].title"`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.noColor {
				color.NoColor = true
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().StringVarP(&a.envFile, "env-file", "", "", "Path to a .env file (default .env)")
	rootCmd.PersistentFlags().BoolVarP(&a.jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log requests to stderr")
	rootCmd.PersistentFlags().BoolVarP(&a.noColor, "no-color", "", false, "Disable colored output")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newSearchCmd(a),
		newEventCmd(a),
		newFindCmd(a),
		newLeaderboardCmd(a),
		newDataCmd(a),
		newDecodeCmd(a),
	)
	return rootCmd
}

// Execute runs the CLI against os.Args and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration once per invocation.
func (a *app) loadConfig() (*config.File, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(config.Options{Path: a.configFile, EnvFile: a.envFile})
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

// rouvyClient builds the client from the configuration on first use.
func (a *app) rouvyClient() (*rouvy.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if a.verbose {
		logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	client, err := rouvy.NewClient(cfg.ClientConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	a.client = client
	return client, nil
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}
