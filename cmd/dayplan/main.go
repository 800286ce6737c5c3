// Command dayplan is the operator CLI for the day planner store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkordes/dayplanner/internal/commands"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRoot(version).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "dayplan:", err)
		os.Exit(1)
	}
}
