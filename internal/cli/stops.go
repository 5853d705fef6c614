package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/tripboard/tripboard/internal/domain"
)

func tripFlag(fs *pflag.FlagSet, id *int64) {
	fs.Int64VarP(id, "trip", "t", 0, "trip id (default: the selected trip)")
}

func (a *App) stopsCommand() *Command {
	return &Command{
		Name:    "stops",
		Summary: "Manage the stops (pins) of a trip",
		Subcommands: []*Command{
			a.stopsListCommand(),
			a.stopsAddCommand(),
			a.stopsDeleteCommand(),
			a.stopsVoteCommand(),
			a.stopsMoveCommand(),
		},
	}
}

func (a *App) printStops(stops []domain.Stop) {
	if len(stops) == 0 {
		a.note("No stops yet. Add one with 'tripboard stops add'.")
		return
	}
	rows := make([][]string, 0, len(stops))
	for i, s := range stops {
		mine := ""
		switch s.CurrentUserVote {
		case domain.VoteLike:
			mine = a.style.good.Render("liked")
		case domain.VoteDislike:
			mine = a.style.bad.Render("disliked")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fmt.Sprint(s.ID),
			s.Name,
			orDash(s.Address),
			fmt.Sprintf("%d/%d", s.LikesCount, s.DislikesCount),
			mine,
			orDash(s.AddedBy),
		})
	}
	a.table([]string{"#", "ID", "NAME", "ADDRESS", "VOTES +/-", "YOU", "ADDED BY"}, rows)
}

func (a *App) stopsListCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "list",
		Summary: "List stops in trip order",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			trip, err := a.openTrip(ctx, tripID)
			if err != nil {
				return err
			}
			a.heading(trip.Name)
			a.printStops(a.workspace.Stops(trip.ID))
			return nil
		},
	}
}

func (a *App) stopsAddCommand() *Command {
	var (
		tripID int64
		in     domain.StopInput
		place  string
	)
	return &Command{
		Name:    "add",
		Summary: "Add a stop",
		Usage:   "tripboard stops add --name <name> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			fs.StringVarP(&in.Name, "name", "n", "", "stop name")
			fs.StringVar(&in.Address, "address", "", "full address")
			fs.StringVar(&in.Description, "description", "", "notes")
			fs.Float64Var(&in.Lat, "lat", 0, "latitude")
			fs.Float64Var(&in.Lng, "lng", 0, "longitude")
			fs.StringVar(&place, "place", "", "look up name, address and coordinates from a place search")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			trip, err := a.openTrip(ctx, tripID)
			if err != nil {
				return err
			}
			if place != "" {
				places, err := a.places.Search(ctx, place)
				if err != nil {
					return err
				}
				if len(places) == 0 {
					return fmt.Errorf("no place matches %q: %w", place, domain.ErrNotFound)
				}
				p := places[0]
				if in.Name == "" {
					in.Name = p.ShortName
				}
				if in.Address == "" {
					in.Address = p.Name
				}
				in.Lat, in.Lng = p.Coordinates.Lat, p.Coordinates.Lng
			}
			stops, err := a.workspace.AddStop(ctx, trip.ID, in)
			if err != nil {
				return err
			}
			a.printStops(stops)
			return nil
		},
	}
}

func (a *App) stopsDeleteCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "delete",
		Summary: "Delete a stop",
		Usage:   "tripboard stops delete <stop-id>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := wantArgs(args, 1, "tripboard stops delete <stop-id>"); err != nil {
				return err
			}
			stopID, err := parseID(args[0])
			if err != nil {
				return err
			}
			trip, err := a.openTrip(ctx, tripID)
			if err != nil {
				return err
			}
			stops, err := a.workspace.DeleteStop(ctx, trip.ID, stopID)
			if err != nil {
				return err
			}
			a.printStops(stops)
			return nil
		},
	}
}

func (a *App) stopsVoteCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "vote",
		Summary: "Like or dislike a stop; voting the same way again clears your vote",
		Usage:   "tripboard stops vote <stop-id> like|dislike",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("vote", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := wantArgs(args, 2, "tripboard stops vote <stop-id> like|dislike"); err != nil {
				return err
			}
			stopID, err := parseID(args[0])
			if err != nil {
				return err
			}
			vote, err := domain.ParseVoteType(args[1])
			if err != nil {
				return err
			}
			trip, err := a.openTrip(ctx, tripID)
			if err != nil {
				return err
			}
			stops, err := a.workspace.Vote(ctx, trip.ID, stopID, vote)
			if err != nil {
				return err
			}
			a.printStops(stops)
			return nil
		},
	}
}

func (a *App) stopsMoveCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "move",
		Summary: "Move a stop to a new position (1 is first)",
		Usage:   "tripboard stops move <stop-id> <position>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("move", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := wantArgs(args, 2, "tripboard stops move <stop-id> <position>"); err != nil {
				return err
			}
			stopID, err := parseID(args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil || pos < 1 {
				return fmt.Errorf("%w: position must be 1 or more", domain.ErrValidation)
			}
			trip, err := a.openTrip(ctx, tripID)
			if err != nil {
				return err
			}
			current := a.workspace.Stops(trip.ID)
			from := slices.IndexFunc(current, func(s domain.Stop) bool { return s.ID == stopID })
			if from < 0 {
				return fmt.Errorf("stop %d: %w", stopID, domain.ErrNotFound)
			}
			to := min(pos, len(current)) - 1

			stops, err := a.workspace.ReorderStops(ctx, trip.ID, from, to)
			if err != nil {
				return err
			}
			a.printf("Moved %q to %s place.\n", current[from].Name, humanize.Ordinal(to+1))
			a.printStops(stops)
			return nil
		},
	}
}
