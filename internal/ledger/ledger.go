// Package ledger is the shared-expense tab. Totals and balances always come
// from the server; nothing is summed locally.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tripboard/tripboard/internal/cache"
	"github.com/tripboard/tripboard/internal/domain"
)

// ExpenseAPI is the expense resource of the remote API.
type ExpenseAPI interface {
	List(ctx context.Context, tripID int64) ([]domain.Expense, error)
	Create(ctx context.Context, tripID int64, in domain.ExpenseInput) (domain.Expense, error)
	Balances(ctx context.Context, tripID int64) (domain.Balances, error)
	Total(ctx context.Context, tripID int64) (float64, error)
	Delete(ctx context.Context, expenseID int64) error
}

// Snapshot is one consistent fetch of a trip's expenses and aggregates.
type Snapshot struct {
	Expenses []domain.Expense
	Balances domain.Balances
	Total    float64
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{Expenses: slices.Clone(s.Expenses), Balances: maps.Clone(s.Balances), Total: s.Total}
}

// Ledger holds the expenses of its current trip. Safe for concurrent use.
type Ledger struct {
	api ExpenseAPI
	log *slog.Logger
	now func() time.Time

	cache *cache.Keyed[int64, Snapshot]

	mu     sync.Mutex
	tripID int64
}

// New returns a Ledger with no trip.
func New(api ExpenseAPI, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{
		api:   api,
		log:   log,
		now:   time.Now,
		cache: cache.NewKeyed[int64, Snapshot](),
	}
}

// SetTrip switches the ledger to tripID and loads it.
func (l *Ledger) SetTrip(ctx context.Context, tripID int64) (Snapshot, error) {
	l.mu.Lock()
	l.tripID = tripID
	l.mu.Unlock()

	snap, err := l.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("ledger.Ledger.SetTrip: %w", err)
	}
	return snap, nil
}

// TripID returns the ledger's current trip, 0 for none.
func (l *Ledger) TripID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tripID
}

// Load fetches expenses, balances and total concurrently and replaces the
// snapshot only when all three succeed. A result for a trip the ledger has
// since moved away from is dropped with domain.ErrStale.
func (l *Ledger) Load(ctx context.Context) (Snapshot, error) {
	tripID := l.TripID()
	if tripID == 0 {
		return Snapshot{}, fmt.Errorf("ledger.Ledger.Load: %w: no trip selected", domain.ErrValidation)
	}
	ticket := l.cache.Begin(tripID)

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Expenses, err = l.api.List(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Balances, err = l.api.Balances(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Total, err = l.api.Total(gctx, tripID)
		return err
	})
	if err := g.Wait(); err != nil {
		l.log.ErrorContext(ctx, "load expenses", "trip_id", tripID, "error", err)
		return Snapshot{}, fmt.Errorf("ledger.Ledger.Load: %w", err)
	}

	if l.TripID() != tripID || !l.cache.Commit(ticket, snap) {
		return Snapshot{}, fmt.Errorf("ledger.Ledger.Load: trip %d: %w", tripID, domain.ErrStale)
	}
	return snap.clone(), nil
}

// Snapshot returns the last loaded snapshot for the current trip.
func (l *Ledger) Snapshot() Snapshot {
	snap, _ := l.cache.Get(l.TripID())
	return snap.clone()
}

// Create fills form defaults, validates locally, records the expense and
// reloads the snapshot.
func (l *Ledger) Create(ctx context.Context, in domain.ExpenseInput) (Snapshot, error) {
	in = in.Normalize(l.now())
	if err := in.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("ledger.Ledger.Create: %w", err)
	}
	tripID := l.TripID()
	if tripID == 0 {
		return Snapshot{}, fmt.Errorf("ledger.Ledger.Create: %w: no trip selected", domain.ErrValidation)
	}
	if _, err := l.api.Create(ctx, tripID, in); err != nil {
		l.log.ErrorContext(ctx, "create expense", "trip_id", tripID, "error", err)
		return Snapshot{}, fmt.Errorf("ledger.Ledger.Create: %w", err)
	}
	snap, err := l.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("ledger.Ledger.Create: reload: %w", err)
	}
	return snap, nil
}

// Delete removes an expense and reloads the snapshot.
func (l *Ledger) Delete(ctx context.Context, expenseID int64) (Snapshot, error) {
	if err := l.api.Delete(ctx, expenseID); err != nil {
		l.log.ErrorContext(ctx, "delete expense", "expense_id", expenseID, "error", err)
		return Snapshot{}, fmt.Errorf("ledger.Ledger.Delete: %w", err)
	}
	snap, err := l.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("ledger.Ledger.Delete: reload: %w", err)
	}
	return snap, nil
}
