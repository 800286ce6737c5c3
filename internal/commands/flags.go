// Package commands implements the dayplan operator CLI. Each subcommand is a
// struct with a Register method that attaches it to the root command.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pkordes/dayplanner/internal/config"
	"github.com/pkordes/dayplanner/internal/repo"
)

// Flags holds the global flags and the state the root Before hook derives
// from them.
type Flags struct {
	EnvFile  string
	LogLevel string

	// Config and Logger are populated in the Before hook and available to
	// all commands.
	Config config.Config
	Logger *slog.Logger
}

// OpenStore opens the configured store. Callers close it.
func (f *Flags) OpenStore(ctx context.Context) (repo.Store, error) {
	store, err := repo.Open(ctx, f.Config.StoreOptions())
	if err != nil {
		return repo.Store{}, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// NewRoot builds the dayplan root command with every subcommand registered.
func NewRoot(version string) *cli.Command {
	flags := &Flags{}

	app := &cli.Command{
		Name:      "dayplan",
		Usage:     "Operate the day planner store",
		UsageText: "dayplan [global options] command [command options]",
		Description: `dayplan migrates the configured store, seeds it from YAML fixtures and
prints the derived groups of a day.

Store selection follows the server's environment: STORE_DRIVER, DATABASE_URL,
SQLITE_PATH and FILE_STORE_DIR, optionally read from an env file.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "env file to read before the environment",
				Sources:     cli.EnvVars("DAYPLAN_ENV_FILE"),
				Value:       ".env",
				Destination: &flags.EnvFile,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var level slog.Level
			if err := level.UnmarshalText([]byte(flags.LogLevel)); err != nil {
				return ctx, fmt.Errorf("invalid log level %q", flags.LogLevel)
			}
			flags.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			cfg, err := config.Load(flags.EnvFile)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg
			return ctx, nil
		},
	}

	app = NewMigrateCmd(flags).Register(app)
	app = NewSeedCmd(flags).Register(app)
	app = NewShowCmd(flags).Register(app)
	return app
}
