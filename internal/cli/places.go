package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"

	"github.com/tripboard/tripboard/internal/domain"
	"github.com/tripboard/tripboard/internal/geocode"
)

func (a *App) placesCommand() *Command {
	return &Command{
		Name:    "places",
		Summary: "Look up place suggestions for trips and stops",
		Subcommands: []*Command{
			a.placesSearchCommand(),
			a.placesWatchCommand(),
		},
	}
}

func (a *App) printPlaces(query string, places []domain.Place) {
	if len(places) == 0 {
		a.note(fmt.Sprintf("No places match %q.", query))
		return
	}
	rows := make([][]string, 0, len(places))
	for _, p := range places {
		rows = append(rows, []string{
			p.ShortName,
			p.Name,
			fmt.Sprintf("%.4f, %.4f", p.Coordinates.Lat, p.Coordinates.Lng),
		})
	}
	a.table([]string{"PLACE", "FULL NAME", "LAT, LNG"}, rows)
}

func (a *App) placesSearchCommand() *Command {
	return &Command{
		Name:    "search",
		Summary: "Print up to five suggestions for a query",
		Usage:   "tripboard places search <query...>",
		Run: func(ctx context.Context, args []string) error {
			query := strings.Join(args, " ")
			if len(strings.TrimSpace(query)) < geocode.MinQueryLength {
				return fmt.Errorf("%w: query must be at least %d characters", domain.ErrValidation, geocode.MinQueryLength)
			}
			places, err := a.places.Search(ctx, query)
			if err != nil {
				return err
			}
			a.printPlaces(query, places)
			return nil
		},
	}
}

// placesWatchCommand treats every stdin line as the current contents of a
// search box. Lookups are debounced; the final line is always resolved.
func (a *App) placesWatchCommand() *Command {
	var interval int
	return &Command{
		Name:    "watch",
		Summary: "Search as you type: one query per stdin line, debounced",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("watch", pflag.ContinueOnError)
			fs.IntVar(&interval, "debounce-ms", int(geocode.DefaultDebounceInterval.Milliseconds()), "quiet period before a lookup")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			var mu sync.Mutex
			show := func(ctx context.Context, query string) {
				places, err := a.places.Search(ctx, query)
				if errors.Is(err, context.Canceled) {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					a.log.WarnContext(ctx, "place search", "query", query, "error", err)
					return
				}
				if places != nil {
					a.printPlaces(query, places)
				}
			}

			d := geocode.NewDebouncer(time.Duration(interval) * time.Millisecond)
			defer d.Stop()

			var last string
			scanner := bufio.NewScanner(a.in)
			for scanner.Scan() {
				query := scanner.Text()
				last = query
				d.Trigger(ctx, func(ctx context.Context) { show(ctx, query) })
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read queries: %w", err)
			}

			d.Stop()
			if strings.TrimSpace(last) != "" {
				show(ctx, last)
			}
			return nil
		},
	}
}
