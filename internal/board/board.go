// Package board is the task board tab: one trip's tasks in three fixed
// status columns.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/tripboard/tripboard/internal/cache"
	"github.com/tripboard/tripboard/internal/domain"
)

// TaskAPI is the task resource of the remote API.
type TaskAPI interface {
	List(ctx context.Context, tripID int64) ([]domain.Task, error)
	Create(ctx context.Context, tripID int64, in domain.TaskInput) (domain.Task, error)
	UpdateStatus(ctx context.Context, taskID int64, status domain.TaskStatus) (domain.Task, error)
	Delete(ctx context.Context, taskID int64) error
}

// ParticipantAPI lists who can be assigned a task.
type ParticipantAPI interface {
	Participants(ctx context.Context, tripID int64) ([]domain.Participant, error)
}

// Board holds the tasks of the board's current trip. Safe for concurrent use.
type Board struct {
	tasks  TaskAPI
	people ParticipantAPI
	log    *slog.Logger

	cache *cache.Keyed[int64, []domain.Task]

	mu       sync.Mutex
	tripID   int64
	assignee []domain.Participant
}

// New returns a Board with no trip.
func New(tasks TaskAPI, people ParticipantAPI, log *slog.Logger) *Board {
	if log == nil {
		log = slog.Default()
	}
	return &Board{
		tasks:  tasks,
		people: people,
		log:    log,
		cache:  cache.NewKeyed[int64, []domain.Task](),
	}
}

// SetTrip switches the board to trip and loads its tasks and the people
// tasks can be assigned to. When participants cannot be fetched the trip's
// creator is the only assignee.
func (b *Board) SetTrip(ctx context.Context, trip domain.Trip) error {
	b.mu.Lock()
	b.tripID = trip.ID
	b.assignee = nil
	b.mu.Unlock()

	people, err := b.people.Participants(ctx, trip.ID)
	if err != nil {
		b.log.WarnContext(ctx, "load assignees, falling back to creator", "trip_id", trip.ID, "error", err)
		people = nil
		if u := trip.CreatedBy; u != nil {
			people = []domain.Participant{{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}}
		}
	}
	b.mu.Lock()
	if b.tripID == trip.ID {
		b.assignee = people
	}
	b.mu.Unlock()

	if _, err := b.Load(ctx); err != nil {
		return fmt.Errorf("board.Board.SetTrip: %w", err)
	}
	return nil
}

// TripID returns the board's current trip, 0 for none.
func (b *Board) TripID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripID
}

// Assignees returns the people tasks can be assigned to.
func (b *Board) Assignees() []domain.Participant {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.assignee)
}

// Load replaces the current trip's tasks with the server's. A result for a
// trip the board has since moved away from is dropped with domain.ErrStale.
func (b *Board) Load(ctx context.Context) ([]domain.Task, error) {
	tripID := b.TripID()
	if tripID == 0 {
		return nil, fmt.Errorf("board.Board.Load: %w: no trip selected", domain.ErrValidation)
	}
	ticket := b.cache.Begin(tripID)
	tasks, err := b.tasks.List(ctx, tripID)
	if err != nil {
		b.log.ErrorContext(ctx, "load tasks", "trip_id", tripID, "error", err)
		return nil, fmt.Errorf("board.Board.Load: %w", err)
	}
	if b.TripID() != tripID || !b.cache.Commit(ticket, tasks) {
		return nil, fmt.Errorf("board.Board.Load: trip %d: %w", tripID, domain.ErrStale)
	}
	return slices.Clone(tasks), nil
}

// Tasks returns the current trip's tasks in server order.
func (b *Board) Tasks() []domain.Task {
	tasks, _ := b.cache.Get(b.TripID())
	return slices.Clone(tasks)
}

// Create validates locally, creates a task in the TODO column and reloads.
func (b *Board) Create(ctx context.Context, in domain.TaskInput) ([]domain.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("board.Board.Create: %w", err)
	}
	tripID := b.TripID()
	if tripID == 0 {
		return nil, fmt.Errorf("board.Board.Create: %w: no trip selected", domain.ErrValidation)
	}
	if _, err := b.tasks.Create(ctx, tripID, in); err != nil {
		b.log.ErrorContext(ctx, "create task", "error", err)
		return nil, fmt.Errorf("board.Board.Create: %w", err)
	}
	tasks, err := b.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("board.Board.Create: reload: %w", err)
	}
	return tasks, nil
}

// Delete removes a task and reloads.
func (b *Board) Delete(ctx context.Context, taskID int64) ([]domain.Task, error) {
	if err := b.tasks.Delete(ctx, taskID); err != nil {
		b.log.ErrorContext(ctx, "delete task", "task_id", taskID, "error", err)
		return nil, fmt.Errorf("board.Board.Delete: %w", err)
	}
	tasks, err := b.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("board.Board.Delete: reload: %w", err)
	}
	return tasks, nil
}

// Move drops a task into a column. It sends one status update and replaces
// only that task with the server's copy. Dropping a task into the column it
// is already in sends nothing.
func (b *Board) Move(ctx context.Context, taskID int64, status domain.TaskStatus) (domain.Task, error) {
	tripID := b.TripID()
	current := b.Tasks()
	i := slices.IndexFunc(current, func(t domain.Task) bool { return t.ID == taskID })
	if i < 0 {
		return domain.Task{}, fmt.Errorf("board.Board.Move: task %d: %w", taskID, domain.ErrNotFound)
	}
	if current[i].Status == status {
		return current[i], nil
	}

	updated, err := b.tasks.UpdateStatus(ctx, taskID, status)
	if err != nil {
		b.log.ErrorContext(ctx, "move task", "task_id", taskID, "status", status, "error", err)
		return domain.Task{}, fmt.Errorf("board.Board.Move: %w", err)
	}
	if b.TripID() != tripID {
		return updated, fmt.Errorf("board.Board.Move: trip %d: %w", tripID, domain.ErrStale)
	}

	latest, _ := b.cache.Get(tripID)
	latest = slices.Clone(latest)
	if j := slices.IndexFunc(latest, func(t domain.Task) bool { return t.ID == taskID }); j >= 0 {
		latest[j] = updated
		b.cache.Put(tripID, latest)
	}
	return updated, nil
}

// ByStatus groups the tasks into the three columns, keeping server order
// within each column.
func (b *Board) ByStatus() map[domain.TaskStatus][]domain.Task {
	out := make(map[domain.TaskStatus][]domain.Task, len(domain.TaskStatuses))
	for _, st := range domain.TaskStatuses {
		out[st] = nil
	}
	for _, t := range b.Tasks() {
		out[t.Status] = append(out[t.Status], t)
	}
	return out
}

// CompletionRate is the share of tasks that are DONE, in [0, 1]. An empty
// board is 0.
func (b *Board) CompletionRate() float64 {
	tasks := b.Tasks()
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Status == domain.TaskDone {
			done++
		}
	}
	return float64(done) / float64(len(tasks))
}
