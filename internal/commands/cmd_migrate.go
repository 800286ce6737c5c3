package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/pkordes/dayplanner/internal/repo"
)

type MigrateCmd struct {
	flags *Flags
}

// NewMigrateCmd creates a new migrate command
func NewMigrateCmd(flags *Flags) *MigrateCmd {
	return &MigrateCmd{flags: flags}
}

// Register adds the migrate command to the application
func (cmd *MigrateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "migrate",
		Usage:     "Apply pending schema migrations",
		UsageText: "dayplan migrate",
		Description: `Applies the embedded goose migrations for the configured SQL driver.
The file driver has no schema; migrate is a no-op for it.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *MigrateCmd) run(ctx context.Context, c *cli.Command) error {
	opts := cmd.flags.Config.StoreOptions()
	n, err := repo.Migrate(ctx, opts)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	cmd.flags.Logger.Info("migrations applied", "driver", opts.Driver, "count", n)
	_, _ = fmt.Fprintf(c.Root().Writer, "%s: %d migration(s) applied\n", opts.Driver, n)
	return nil
}
