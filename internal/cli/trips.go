package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tripboard/tripboard/internal/domain"
)

func (a *App) tripsCommand() *Command {
	return &Command{
		Name:    "trips",
		Summary: "List, create, edit and select trips",
		Subcommands: []*Command{
			a.tripsListCommand(),
			a.tripsShowCommand(),
			a.tripsCreateCommand(),
			a.tripsUpdateCommand(),
			a.tripsDeleteCommand(),
			a.tripsSelectCommand(),
		},
	}
}

func (a *App) tripsListCommand() *Command {
	return &Command{
		Name:    "list",
		Summary: "List your trips",
		Run: func(ctx context.Context, _ []string) error {
			user, err := a.requireUser(ctx)
			if err != nil {
				return err
			}
			trips, err := a.workspace.LoadTrips(ctx)
			if err != nil {
				return err
			}
			if len(trips) == 0 {
				a.note("No trips yet. Create one with 'tripboard trips create'.")
				return nil
			}
			active, err := a.tokens.ActiveTrip(ctx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(trips))
			for _, t := range trips {
				marker := " "
				if t.ID == active {
					marker = a.style.accent.Render("*")
				}
				role := "joined"
				if t.CreatedByUser(user.ID) {
					role = "owner"
				}
				rows = append(rows, []string{
					marker + fmt.Sprint(t.ID),
					t.Name,
					t.StartingPoint + " → " + t.Destination,
					dateRange(t.StartDate, t.EndDate),
					fmt.Sprint(len(a.workspace.Participants(t.ID))),
					role,
					t.ShareCode,
				})
			}
			a.table([]string{" ID", "NAME", "ROUTE", "DATES", "PEOPLE", "ROLE", "CODE"}, rows)
			return nil
		},
	}
}

func (a *App) tripsShowCommand() *Command {
	return &Command{
		Name:    "show",
		Summary: "Show a trip (the selected one by default)",
		Usage:   "tripboard trips show [id]",
		Run: func(ctx context.Context, args []string) error {
			var id int64
			if len(args) > 0 {
				var err error
				if id, err = parseID(args[0]); err != nil {
					return err
				}
			}
			trip, err := a.openTrip(ctx, id)
			if err != nil {
				return err
			}

			a.heading(trip.Name)
			a.printf("Route:        %s → %s\n", trip.StartingPoint, trip.Destination)
			a.printf("Dates:        %s\n", dateRange(trip.StartDate, trip.EndDate))
			a.printf("Description:  %s\n", orDash(trip.Description))
			a.printf("Created by:   %s\n", trip.CreatorName())
			a.printf("Share code:   %s\n", trip.ShareCode)
			if c := trip.DestCoordinates; c != nil {
				a.printf("Destination:  %.4f, %.4f\n", c.Lat, c.Lng)
			}

			people := a.workspace.Participants(trip.ID)
			names := make([]string, len(people))
			for i, p := range people {
				names[i] = p.FullName()
			}
			a.printf("Participants: %s\n", orDash(strings.Join(names, ", ")))
			a.printf("Stops:        %d\n", len(a.workspace.Stops(trip.ID)))
			return nil
		},
	}
}

// tripForm binds the trip form fields to flags.
type tripForm struct {
	name, description, from, to, start, end string
	geocode                                 bool
}

func (f *tripForm) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&f.name, "name", "n", "", "trip name")
	fs.StringVar(&f.description, "description", "", "description (default \"Trip from <from> to <to>\")")
	fs.StringVar(&f.from, "from", "", "starting point")
	fs.StringVar(&f.to, "to", "", "destination")
	fs.StringVar(&f.start, "start", "", "start date, "+domain.DateLayout)
	fs.StringVar(&f.end, "end", "", "end date, "+domain.DateLayout)
	fs.BoolVar(&f.geocode, "geocode", false, "look up coordinates for --from and --to")
	return fs
}

// apply overlays the flags that were set onto in.
func (f *tripForm) apply(fs *pflag.FlagSet, in *domain.TripInput) error {
	set := func(name string) bool { return fs == nil || fs.Changed(name) }
	if set("name") {
		in.Name = f.name
	}
	if set("description") {
		in.Description = f.description
	}
	if set("from") {
		in.StartingPoint = f.from
		in.StartCoordinates = nil
	}
	if set("to") {
		in.Destination = f.to
		in.DestCoordinates = nil
	}
	if set("start") {
		d, err := domain.ParseDate(f.start)
		if err != nil {
			return err
		}
		in.StartDate = d
	}
	if set("end") {
		d, err := domain.ParseDate(f.end)
		if err != nil {
			return err
		}
		in.EndDate = d
	}
	return nil
}

// resolve fills missing coordinates from the geocoder's first suggestion.
// Lookup failures leave the coordinates empty.
func (a *App) resolve(ctx context.Context, in *domain.TripInput) {
	lookup := func(q string) *domain.Coordinates {
		places, err := a.places.Search(ctx, q)
		if err != nil {
			a.log.WarnContext(ctx, "geocode lookup", "query", q, "error", err)
			return nil
		}
		if len(places) == 0 {
			return nil
		}
		c := places[0].Coordinates
		return &c
	}
	if in.StartCoordinates == nil && in.StartingPoint != "" {
		in.StartCoordinates = lookup(in.StartingPoint)
	}
	if in.DestCoordinates == nil && in.Destination != "" {
		in.DestCoordinates = lookup(in.Destination)
	}
}

func (a *App) tripsCreateCommand() *Command {
	var form tripForm
	return &Command{
		Name:    "create",
		Summary: "Create a trip and select it",
		Flags:   func() *pflag.FlagSet { return form.flags("create") },
		Examples: []Example{{
			Command: "tripboard trips create --name Coast --from 'San Francisco' --to 'Big Sur' --start 2026-06-01 --end 2026-06-05",
		}},
		Run: func(ctx context.Context, _ []string) error {
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}
			var in domain.TripInput
			if err := form.apply(nil, &in); err != nil {
				return err
			}
			if form.geocode {
				a.resolve(ctx, &in)
			}
			trip, err := a.workspace.CreateTrip(ctx, in)
			if err != nil {
				return err
			}
			if err := a.tokens.SetActiveTrip(ctx, trip.ID); err != nil {
				return err
			}
			a.printf("Created trip %d %q (code %s) and selected it.\n", trip.ID, trip.Name, trip.ShareCode)
			return nil
		},
	}
}

func (a *App) tripsUpdateCommand() *Command {
	var form tripForm
	var fs *pflag.FlagSet
	return &Command{
		Name:    "update",
		Summary: "Edit a trip; only the flags given change",
		Usage:   "tripboard trips update <id> [flags]",
		Flags: func() *pflag.FlagSet {
			fs = form.flags("update")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := wantArgs(args, 1, "tripboard trips update <id> [flags]"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}
			if _, err := a.workspace.LoadTrips(ctx); err != nil {
				return err
			}
			current, ok := a.workspace.Trip(id)
			if !ok {
				return fmt.Errorf("trip %d: %w", id, domain.ErrNotFound)
			}
			in := domain.TripInput{
				Name:             current.Name,
				Description:      current.Description,
				StartingPoint:    current.StartingPoint,
				Destination:      current.Destination,
				StartDate:        current.StartDate,
				EndDate:          current.EndDate,
				StartCoordinates: current.StartCoordinates,
				DestCoordinates:  current.DestCoordinates,
			}
			if err := form.apply(fs, &in); err != nil {
				return err
			}
			if form.geocode {
				a.resolve(ctx, &in)
			}
			trip, err := a.workspace.UpdateTrip(ctx, id, in)
			if err != nil {
				return err
			}
			a.printf("Updated trip %d %q.\n", trip.ID, trip.Name)
			return nil
		},
	}
}

func (a *App) tripsDeleteCommand() *Command {
	return &Command{
		Name:    "delete",
		Summary: "Delete a trip you created",
		Usage:   "tripboard trips delete <id>",
		Run: func(ctx context.Context, args []string) error {
			if err := wantArgs(args, 1, "tripboard trips delete <id>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}
			if _, err := a.workspace.LoadTrips(ctx); err != nil {
				return err
			}
			if err := a.workspace.DeleteTrip(ctx, id); err != nil {
				return err
			}
			if active, err := a.tokens.ActiveTrip(ctx); err == nil && active == id {
				if err := a.tokens.ClearActiveTrip(ctx); err != nil {
					return err
				}
			}
			a.printf("Deleted trip %d.\n", id)
			return nil
		},
	}
}

func (a *App) tripsSelectCommand() *Command {
	return &Command{
		Name:    "select",
		Summary: "Make a trip the default for stops, tasks, expenses and invites",
		Usage:   "tripboard trips select <id>",
		Run: func(ctx context.Context, args []string) error {
			if err := wantArgs(args, 1, "tripboard trips select <id>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			trip, err := a.openTrip(ctx, id)
			if err != nil {
				return err
			}
			if err := a.tokens.SetActiveTrip(ctx, trip.ID); err != nil {
				return err
			}
			a.printf("Selected trip %d %q.\n", trip.ID, trip.Name)
			return nil
		},
	}
}
