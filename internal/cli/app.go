package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/tripboard/tripboard/internal/api"
	"github.com/tripboard/tripboard/internal/board"
	"github.com/tripboard/tripboard/internal/config"
	"github.com/tripboard/tripboard/internal/domain"
	"github.com/tripboard/tripboard/internal/geocode"
	"github.com/tripboard/tripboard/internal/ledger"
	"github.com/tripboard/tripboard/internal/repo"
	"github.com/tripboard/tripboard/internal/session"
	"github.com/tripboard/tripboard/internal/workspace"
)

// App wires the controllers for one CLI invocation. State that must
// outlive the process (token, pending invite, selected trip) lives in the
// sqlite token store.
type App struct {
	cfg config.Config
	log *slog.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	style  styles

	db        *sql.DB
	tokens    *repo.TokenStore
	api       *api.API
	session   *session.Controller
	workspace *workspace.Controller
	board     *board.Board
	ledger    *ledger.Ledger
	places    *geocode.Client
}

// IO bundles the process streams.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// NewApp opens the token store at cfg.StorePath and builds every controller.
// Call Close when done.
func NewApp(ctx context.Context, cfg config.Config, streams IO, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := repo.Open(ctx, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("cli.NewApp: %w", err)
	}
	tokens := repo.NewTokenStore(repo.NewLocalRepo(db))
	client := api.New(cfg.APIURL, tokens, api.WithTimeout(cfg.HTTPTimeout), api.WithLogger(log))

	return &App{
		cfg:       cfg,
		log:       log,
		in:        streams.In,
		out:       streams.Out,
		errOut:    streams.Err,
		style:     newStyles(streams.Out),
		db:        db,
		tokens:    tokens,
		api:       client,
		session:   session.New(client.Auth, tokens, log),
		workspace: workspace.New(client.Trips, client.Stops, client.Invites, cfg.AppOrigin, log),
		board:     board.New(client.Tasks, client.Invites, log),
		ledger:    ledger.New(client.Expenses, log),
		places:    geocode.New(cfg.MapboxURL, cfg.MapboxToken, geocode.WithTimeout(cfg.HTTPTimeout), geocode.WithLogger(log)),
	}, nil
}

// Close releases the token store.
func (a *App) Close() error {
	return a.db.Close()
}

// errNotLoggedIn is returned by commands that need a session.
var errNotLoggedIn = fmt.Errorf("%w: not logged in; run 'tripboard login' or 'tripboard register'", domain.ErrUnauthorized)

// requireUser restores the session and fails when nobody is logged in.
func (a *App) requireUser(ctx context.Context) (domain.User, error) {
	if _, err := a.session.Start(ctx, ""); err != nil {
		return domain.User{}, err
	}
	state := a.session.State()
	if !state.LoggedIn || state.User == nil {
		return domain.User{}, errNotLoggedIn
	}
	a.workspace.SetCurrentUser(state.User)
	return *state.User, nil
}

// openTrip loads the trip list and selects tripID, or the remembered trip
// when tripID is 0. A remembered trip that no longer exists is forgotten.
func (a *App) openTrip(ctx context.Context, tripID int64) (domain.Trip, error) {
	if _, err := a.requireUser(ctx); err != nil {
		return domain.Trip{}, err
	}
	if _, err := a.workspace.LoadTrips(ctx); err != nil {
		return domain.Trip{}, err
	}

	remembered := tripID == 0
	if remembered {
		id, err := a.tokens.ActiveTrip(ctx)
		if err != nil {
			return domain.Trip{}, err
		}
		if id == 0 {
			return domain.Trip{}, fmt.Errorf("%w: no trip selected; run 'tripboard trips select <id>' or pass --trip", domain.ErrValidation)
		}
		tripID = id
	}

	if err := a.workspace.SelectTrip(ctx, tripID); err != nil {
		if remembered && errors.Is(err, domain.ErrNotFound) {
			if clearErr := a.tokens.ClearActiveTrip(ctx); clearErr != nil {
				a.log.WarnContext(ctx, "forget missing trip", "trip_id", tripID, "error", clearErr)
			}
		}
		return domain.Trip{}, err
	}
	trip, _ := a.workspace.ActiveTrip()
	return trip, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid id", domain.ErrValidation, s)
	}
	return id, nil
}

func wantArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("%w: usage: %s", domain.ErrValidation, usage)
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
