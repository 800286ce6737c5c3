package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

type SeedCmd struct {
	flags *Flags
	file  string
}

// NewSeedCmd creates a new seed command
func NewSeedCmd(flags *Flags) *SeedCmd {
	return &SeedCmd{flags: flags}
}

// Register adds the seed command to the application
func (cmd *SeedCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "seed",
		Usage:     "Load a trip's catalog and days from a YAML fixture",
		UsageText: "dayplan seed --file trip.yaml",
		Description: `Upserts the fixture's points of interest and transportations, then
creates each listed day and overwrites its activities and transport
segments. Seeding the same file twice leaves the store unchanged.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to the YAML fixture",
				Required:    true,
				Destination: &cmd.file,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *SeedCmd) run(ctx context.Context, c *cli.Command) error {
	f, err := os.Open(cmd.file)
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	fixture, err := ReadFixture(f)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.file, err)
	}

	store, err := cmd.flags.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := fixture.Apply(ctx, store.Days, store.Catalog)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	cmd.flags.Logger.Info("fixture applied",
		"trip_id", fixture.Trip,
		"pois", sum.POIs,
		"transportations", sum.Transportations,
		"days", sum.Days,
	)
	_, _ = fmt.Fprintf(c.Root().Writer, "trip %s: %d poi(s), %d transportation(s), %d day(s)\n",
		fixture.Trip, sum.POIs, sum.Transportations, sum.Days)
	return nil
}
