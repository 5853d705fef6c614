package cli

import (
	"context"
	"log/slog"

	"github.com/tripboard/tripboard/internal/config"
)

// Root builds the command tree for a.
func Root(a *App) *Command {
	return &Command{
		Name:    "tripboard",
		Summary: "Plan trips together: stops, tasks, expenses and invites.",
		Help:    a.out,
		Subcommands: []*Command{
			a.openCommand(),
			a.registerCommand(),
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.tripsCommand(),
			a.stopsCommand(),
			a.tasksCommand(),
			a.expensesCommand(),
			a.inviteCommand(),
			a.placesCommand(),
		},
		Examples: []Example{
			{Description: "Start planning", Command: "tripboard register --first Ada --last Lovelace -e ada@example.com -p secret123"},
			{Command: "tripboard trips create -n Coast --from 'San Francisco' --to 'Big Sur' --start 2026-06-01 --end 2026-06-05"},
			{Command: "tripboard stops add --place 'Bixby Bridge'"},
		},
	}
}

// Run opens an App for cfg, executes args against the command tree and
// closes the App.
func Run(ctx context.Context, cfg config.Config, streams IO, log *slog.Logger, args []string) error {
	a, err := NewApp(ctx, cfg, streams, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.log.WarnContext(ctx, "close token store", "error", err)
		}
	}()
	return Root(a).Execute(ctx, args)
}
