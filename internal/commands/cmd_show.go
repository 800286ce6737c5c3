package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/pkordes/dayplanner/internal/notify"
	"github.com/pkordes/dayplanner/internal/service"
)

type ShowCmd struct {
	flags *Flags
	trip  string
	day   int
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags) *ShowCmd {
	return &ShowCmd{flags: flags}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Print a day's groups and potential pool",
		UsageText: "dayplan show --trip <uuid> --day <n>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "trip",
				Usage:       "trip id",
				Required:    true,
				Destination: &cmd.trip,
			},
			&cli.IntFlag{
				Name:        "day",
				Usage:       "day number, starting at 1",
				Value:       1,
				Destination: &cmd.day,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	tripID, err := uuid.Parse(cmd.trip)
	if err != nil {
		return fmt.Errorf("invalid trip id %q: %w", cmd.trip, err)
	}

	store, err := cmd.flags.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := cmd.flags.Logger
	planner := service.NewPlanner(store.Days, store.Catalog,
		service.NewDayWriter(store.Days, notify.Nop{}, logger), logger)

	view, err := planner.View(ctx, tripID, cmd.day)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	header := fmt.Sprintf("Day %d", view.DayNumber)
	if view.Date != "" {
		header += " (" + view.Date + ")"
	}
	if view.LocationContext != "" {
		header += " " + view.LocationContext
	}
	_, _ = fmt.Fprintln(out, header)

	names := make(map[string]string, len(view.Scheduled)+len(view.Potential))
	for _, it := range append(append([]service.ItemView{}, view.Scheduled...), view.Potential...) {
		names[it.ID] = displayName(it)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "GROUP\tLABEL\tFLAGS\tITEMS")
	for _, g := range view.Groups {
		items := make([]string, 0, len(g.ItemIDs))
		for _, id := range g.ItemIDs {
			items = append(items, names[id])
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", g.Index, g.Label, groupFlags(g), strings.Join(items, ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	potential := make([]string, 0, len(view.Potential))
	for _, it := range view.Potential {
		potential = append(potential, names[it.ID])
	}
	if len(potential) == 0 {
		_, _ = fmt.Fprintln(out, "potential: (none)")
	} else {
		_, _ = fmt.Fprintf(out, "potential: %s\n", strings.Join(potential, ", "))
	}
	return nil
}

func displayName(it service.ItemView) string {
	switch {
	case it.Leg != nil:
		return fmt.Sprintf("%s %s-%s", it.Leg.Category, it.Leg.From, it.Leg.To)
	case it.Name != "":
		return it.Name
	case it.Label != "":
		return it.Label
	}
	return it.ID
}

func groupFlags(g service.GroupView) string {
	var flags []string
	if g.Marker {
		flags = append(flags, "marker")
	}
	if g.Locked {
		flags = append(flags, "locked")
	}
	if g.Deletable {
		flags = append(flags, "deletable")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
