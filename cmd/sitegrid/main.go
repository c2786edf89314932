// Package main provides the CLI entry point for sitegrid.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sitegrid-go/internal/config"
	"github.com/ukaji3/sitegrid-go/internal/logger"
	"github.com/ukaji3/sitegrid-go/internal/tui"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/store"
)

// app holds state shared by every subcommand.
type app struct {
	configPath string
	debug      bool
	cfg        config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sitegrid",
		Short: "Import construction schedules and budgets from spreadsheets",
		Long: `sitegrid reads schedule and budget spreadsheets (.xlsx, .xls), normalizes
them into per-project JSON documents stored in Postgres or SQLite, and
renders schedules as paginated Gantt charts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./"+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		a.newInspectCmd(),
		a.newImportCmd(),
		a.newShowCmd(),
		a.newGanttCmd(),
		a.newServeCmd(),
		a.newResetCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Log.Debug = true
	}
	a.cfg = cfg

	return logger.Init(logger.Config{
		Debug:  cfg.Log.Debug,
		LogDir: cfg.Log.Dir,
		Stderr: cmd.Name() == "serve",
	})
}

// openStore connects to the configured database and ensures the schema.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	url, err := a.cfg.DatabaseURL()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, a.cfg.Driver(), url)
	if err != nil {
		return nil, err
	}
	if err := s.CreateSchema(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// projectID returns the --project value, prompting when it is empty and
// stdin is a terminal.
func projectID(flag string) (string, error) {
	if strings.TrimSpace(flag) != "" {
		return flag, nil
	}
	if !tui.IsInteractive() {
		return "", fmt.Errorf("--project is required")
	}
	return tui.PromptProjectID()
}

func toJSON(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
