// Package devapi is an in-memory implementation of the remote trip-planning
// API. It backs the client's integration tests and `cmd/devapi`, a local
// server for working on the client without the real backend.
//
// Store holds the business rules (validation, membership, vote toggling,
// balance splitting); the HTTP handlers in this package only decode
// requests, call Store, and encode responses.
package devapi

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripboard/tripboard/internal/domain"
)

// ErrConflict is returned when registering an email that is already taken.
var ErrConflict = errors.New("conflict")

type userRecord struct {
	user domain.User
	hash []byte
}

type tripRecord struct {
	trip         domain.Trip
	creatorID    int64
	participants []int64
	stops        []int64
}

type stopRecord struct {
	tripID  int64
	stop    domain.Stop
	addedBy int64
	votes   map[int64]domain.VoteType
}

type taskRecord struct {
	tripID     int64
	task       domain.Task
	assigneeID int64
}

type expenseRecord struct {
	tripID  int64
	expense domain.Expense
	payerID int64
}

// Store is the in-memory state of the development API. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	nextID int64
	now    func() time.Time
	cost   int

	users    map[int64]*userRecord
	byEmail  map[string]int64
	trips    map[int64]*tripRecord
	stops    map[int64]*stopRecord
	tasks    map[int64]*taskRecord
	expenses map[int64]*expenseRecord
	invites  map[string]int64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithBcryptCost overrides the password hashing cost. Tests use
// bcrypt.MinCost to keep registration fast.
func WithBcryptCost(cost int) StoreOption {
	return func(s *Store) { s.cost = cost }
}

// NewStore returns an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		now:      time.Now,
		cost:     bcrypt.DefaultCost,
		users:    map[int64]*userRecord{},
		byEmail:  map[string]int64{},
		trips:    map[int64]*tripRecord{},
		stops:    map[int64]*stopRecord{},
		tasks:    map[int64]*taskRecord{},
		expenses: map[int64]*expenseRecord{},
		invites:  map[string]int64{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// --- users ------------------------------------------------------------------

// Register creates a user account.
func (s *Store) Register(in domain.RegisterInput) (domain.User, error) {
	if err := in.Validate(); err != nil {
		return domain.User{}, fmt.Errorf("devapi.Store.Register: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("devapi.Store.Register: %w", err)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[email]; taken {
		return domain.User{}, fmt.Errorf("devapi.Store.Register: %w: email already registered", ErrConflict)
	}
	u := domain.User{
		ID:        s.id(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
	}
	s.users[u.ID] = &userRecord{user: u, hash: hash}
	s.byEmail[email] = u.ID
	return u, nil
}

// Authenticate checks credentials and returns the matching user.
func (s *Store) Authenticate(email, password string) (domain.User, error) {
	s.mu.Lock()
	rec, ok := s.users[s.byEmail[strings.ToLower(strings.TrimSpace(email))]]
	s.mu.Unlock()
	if !ok {
		return domain.User{}, fmt.Errorf("devapi.Store.Authenticate: %w: invalid credentials", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return domain.User{}, fmt.Errorf("devapi.Store.Authenticate: %w: invalid credentials", domain.ErrUnauthorized)
	}
	return rec.user, nil
}

// User returns the account with the given id.
func (s *Store) User(id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("devapi.Store.User: %w", domain.ErrUnauthorized)
	}
	return rec.user, nil
}

func (s *Store) userPtr(id int64) *domain.User {
	if rec, ok := s.users[id]; ok {
		u := rec.user
		return &u
	}
	return nil
}

// --- trips ------------------------------------------------------------------

// member returns the trip if userID participates in it. Callers hold s.mu.
func (s *Store) member(userID, tripID int64) (*tripRecord, error) {
	t, ok := s.trips[tripID]
	if !ok {
		return nil, fmt.Errorf("trip %d: %w", tripID, domain.ErrNotFound)
	}
	if !slices.Contains(t.participants, userID) {
		return nil, fmt.Errorf("trip %d: %w", tripID, domain.ErrForbidden)
	}
	return t, nil
}

func (s *Store) tripView(t *tripRecord) domain.Trip {
	trip := t.trip
	trip.CreatedBy = s.userPtr(t.creatorID)
	return trip
}

// Trips lists the trips userID participates in, oldest first.
func (s *Store) Trips(userID int64) []domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Trip
	for _, t := range s.trips {
		if slices.Contains(t.participants, userID) {
			out = append(out, s.tripView(t))
		}
	}
	slices.SortFunc(out, func(a, b domain.Trip) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Trip returns one trip visible to userID.
func (s *Store) Trip(userID, tripID int64) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.member(userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("devapi.Store.Trip: %w", err)
	}
	return s.tripView(t), nil
}

// CreateTrip stores a new trip with userID as creator and first participant.
func (s *Store) CreateTrip(userID int64, in domain.TripInput) (domain.Trip, error) {
	if err := in.Validate(); err != nil {
		return domain.Trip{}, fmt.Errorf("devapi.Store.CreateTrip: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	t := &tripRecord{
		trip:         applyTrip(domain.Trip{ID: s.id(), CreatedAt: now}, in, now),
		creatorID:    userID,
		participants: []int64{userID},
	}
	s.trips[t.trip.ID] = t
	return s.tripView(t), nil
}

// UpdateTrip overwrites the editable fields of a trip. Any participant may edit.
func (s *Store) UpdateTrip(userID, tripID int64, in domain.TripInput) (domain.Trip, error) {
	if err := in.Validate(); err != nil {
		return domain.Trip{}, fmt.Errorf("devapi.Store.UpdateTrip: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.member(userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("devapi.Store.UpdateTrip: %w", err)
	}
	t.trip = applyTrip(t.trip, in, s.now().UTC())
	return s.tripView(t), nil
}

func applyTrip(t domain.Trip, in domain.TripInput, now time.Time) domain.Trip {
	t.Name = strings.TrimSpace(in.Name)
	t.Description = strings.TrimSpace(in.Description)
	t.StartingPoint = strings.TrimSpace(in.StartingPoint)
	t.Destination = strings.TrimSpace(in.Destination)
	t.StartDate = in.StartDate
	t.EndDate = in.EndDate
	t.StartCoordinates = in.StartCoordinates
	t.DestCoordinates = in.DestCoordinates
	t.UpdatedAt = now
	return t
}

// DeleteTrip removes a trip and everything attached to it. Only the
// creator may delete.
func (s *Store) DeleteTrip(userID, tripID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.member(userID, tripID)
	if err != nil {
		return fmt.Errorf("devapi.Store.DeleteTrip: %w", err)
	}
	if t.creatorID != userID {
		return fmt.Errorf("devapi.Store.DeleteTrip: %w: only the creator can delete a trip", domain.ErrForbidden)
	}
	for id, st := range s.stops {
		if st.tripID == tripID {
			delete(s.stops, id)
		}
	}
	for id, tk := range s.tasks {
		if tk.tripID == tripID {
			delete(s.tasks, id)
		}
	}
	for id, e := range s.expenses {
		if e.tripID == tripID {
			delete(s.expenses, id)
		}
	}
	for tok, id := range s.invites {
		if id == tripID {
			delete(s.invites, tok)
		}
	}
	delete(s.trips, tripID)
	return nil
}

// Participants lists everyone with access to a trip, creator first.
func (s *Store) Participants(userID, tripID int64) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.member(userID, tripID)
	if err != nil {
		return nil, fmt.Errorf("devapi.Store.Participants: %w", err)
	}
	out := make([]domain.User, 0, len(t.participants))
	for _, id := range t.participants {
		if u := s.userPtr(id); u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

// --- stops ------------------------------------------------------------------

func (s *Store) stopView(st *stopRecord, viewerID int64) domain.Stop {
	stop := st.stop
	stop.AddedByID = st.addedBy
	if u := s.userPtr(st.addedBy); u != nil {
		stop.AddedBy = u.FullName()
	}
	stop.LikesCount, stop.DislikesCount = 0, 0
	for _, v := range st.votes {
		switch v {
		case domain.VoteLike:
			stop.LikesCount++
		case domain.VoteDislike:
			stop.DislikesCount++
		}
	}
	stop.CurrentUserVote = st.votes[viewerID]
	return stop
}

// Stops returns a trip's stops in their stored order, with vote counts and
// the viewer's own vote.
func (s *Store) Stops(userID, tripID int64) ([]domain.Stop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.member(userID, tripID)
	if err != nil {
		return nil, fmt.Errorf("devapi.Store.Stops: %w", err)
	}
	out := make([]domain.Stop, 0, len(t.stops))
	for _, id := range t.stops {
		out = append(out, s.stopView(s.stops[id], userID))
	}
	return out, nil
}

// AddStop appends a stop to the end of a trip's sequence.
func (s *Store) AddStop(userID, tripID int64, in domain.StopInput) (domain.Stop, error) {
	if err := in.Validate(); err != nil {
		return domain.Stop{}, fmt.Errorf("devapi.Store.AddStop: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.member(userID, tripID)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("devapi.Store.AddStop: %w", err)
	}
	st := &stopRecord{
		tripID: tripID,
		stop: domain.Stop{
			ID:          s.id(),
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Address:     in.Address,
			Lat:         in.Lat,
			Lng:         in.Lng,
		},
		addedBy: userID,
		votes:   map[int64]domain.VoteType{},
	}
	s.stops[st.stop.ID] = st
	t.stops = append(t.stops, st.stop.ID)
	return s.stopView(st, userID), nil
}

// memberStop returns a stop whose trip userID participates in. Callers hold s.mu.
func (s *Store) memberStop(userID, stopID int64) (*stopRecord, *tripRecord, error) {
	st, ok := s.stops[stopID]
	if !ok {
		return nil, nil, fmt.Errorf("stop %d: %w", stopID, domain.ErrNotFound)
	}
	t, err := s.member(userID, st.tripID)
	if err != nil {
		return nil, nil, err
	}
	return st, t, nil
}

// Vote records userID's vote on a stop. A user holds at most one vote per
// stop; sending the vote they already hold withdraws it.
func (s *Store) Vote(userID, stopID int64, vote domain.VoteType) (domain.Stop, error) {
	if vote != domain.VoteLike && vote != domain.VoteDislike {
		return domain.Stop{}, fmt.Errorf("devapi.Store.Vote: %w: vote must be LIKE or DISLIKE", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, _, err := s.memberStop(userID, stopID)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("devapi.Store.Vote: %w", err)
	}
	if st.votes[userID] == vote {
		delete(st.votes, userID)
	} else {
		st.votes[userID] = vote
	}
	return s.stopView(st, userID), nil
}

// ReorderStops replaces a trip's stop order. ids must be a permutation of
// the trip's current stop ids.
func (s *Store) ReorderStops(userID, tripID int64, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.member(userID, tripID)
	if err != nil {
		return fmt.Errorf("devapi.Store.ReorderStops: %w", err)
	}
	want := slices.Clone(t.stops)
	got := slices.Clone(ids)
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		return fmt.Errorf("devapi.Store.ReorderStops: %w: stopIds must list every stop of the trip exactly once", domain.ErrValidation)
	}
	t.stops = slices.Clone(ids)
	return nil
}

// DeleteStop removes a stop from its trip.
func (s *Store) DeleteStop(userID, stopID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, t, err := s.memberStop(userID, stopID)
	if err != nil {
		return fmt.Errorf("devapi.Store.DeleteStop: %w", err)
	}
	t.stops = slices.DeleteFunc(t.stops, func(id int64) bool { return id == stopID })
	delete(s.stops, stopID)
	return nil
}

// --- tasks ------------------------------------------------------------------

func (s *Store) taskView(tk *taskRecord) domain.Task {
	task := tk.task
	task.AssignedTo = s.userPtr(tk.assigneeID)
	return task
}

// Tasks lists a trip's tasks in creation order.
func (s *Store) Tasks(userID, tripID int64) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.member(userID, tripID); err != nil {
		return nil, fmt.Errorf("devapi.Store.Tasks: %w", err)
	}
	var out []domain.Task
	for _, tk := range s.tasks {
		if tk.tripID == tripID {
			out = append(out, s.taskView(tk))
		}
	}
	slices.SortFunc(out, func(a, b domain.Task) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// CreateTask adds a task. The assignee must be a participant of the trip.
func (s *Store) CreateTask(userID, tripID int64, in domain.TaskInput, status domain.TaskStatus) (domain.Task, error) {
	if err := in.Validate(); err != nil {
		return domain.Task{}, fmt.Errorf("devapi.Store.CreateTask: %w", err)
	}
	if status == "" {
		status = domain.TaskTodo
	}
	if _, err := domain.ParseTaskStatus(string(status)); err != nil {
		return domain.Task{}, fmt.Errorf("devapi.Store.CreateTask: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.member(userID, tripID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("devapi.Store.CreateTask: %w", err)
	}
	if !slices.Contains(t.participants, in.AssigneeID) {
		return domain.Task{}, fmt.Errorf("devapi.Store.CreateTask: %w: assignee is not a participant", domain.ErrValidation)
	}
	tk := &taskRecord{
		tripID: tripID,
		task: domain.Task{
			ID:          s.id(),
			Title:       strings.TrimSpace(in.Title),
			Description: in.EffectiveDescription(),
			Status:      status,
			DueDate:     in.DueDate,
			CreatedAt:   s.now().UTC(),
		},
		assigneeID: in.AssigneeID,
	}
	s.tasks[tk.task.ID] = tk
	return s.taskView(tk), nil
}

func (s *Store) memberTask(userID, taskID int64) (*taskRecord, error) {
	tk, ok := s.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", taskID, domain.ErrNotFound)
	}
	if _, err := s.member(userID, tk.tripID); err != nil {
		return nil, err
	}
	return tk, nil
}

// UpdateTaskStatus moves a task to another column.
func (s *Store) UpdateTaskStatus(userID, taskID int64, status domain.TaskStatus) (domain.Task, error) {
	if _, err := domain.ParseTaskStatus(string(status)); err != nil {
		return domain.Task{}, fmt.Errorf("devapi.Store.UpdateTaskStatus: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tk, err := s.memberTask(userID, taskID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("devapi.Store.UpdateTaskStatus: %w", err)
	}
	tk.task.Status = status
	return s.taskView(tk), nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(userID, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.memberTask(userID, taskID); err != nil {
		return fmt.Errorf("devapi.Store.DeleteTask: %w", err)
	}
	delete(s.tasks, taskID)
	return nil
}

// --- expenses ---------------------------------------------------------------

func (s *Store) expenseView(e *expenseRecord) domain.Expense {
	exp := e.expense
	exp.PaidBy = s.userPtr(e.payerID)
	return exp
}

func (s *Store) tripExpenses(tripID int64) []*expenseRecord {
	var out []*expenseRecord
	for _, e := range s.expenses {
		if e.tripID == tripID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *expenseRecord) int { return cmp.Compare(a.expense.ID, b.expense.ID) })
	return out
}

// Expenses lists a trip's expenses in creation order.
func (s *Store) Expenses(userID, tripID int64) ([]domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.member(userID, tripID); err != nil {
		return nil, fmt.Errorf("devapi.Store.Expenses: %w", err)
	}
	recs := s.tripExpenses(tripID)
	out := make([]domain.Expense, len(recs))
	for i, e := range recs {
		out[i] = s.expenseView(e)
	}
	return out, nil
}

// CreateExpense records an expense paid by userID.
func (s *Store) CreateExpense(userID, tripID int64, in domain.ExpenseInput) (domain.Expense, error) {
	in = in.Normalize(s.now())
	if err := in.Validate(); err != nil {
		return domain.Expense{}, fmt.Errorf("devapi.Store.CreateExpense: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.member(userID, tripID); err != nil {
		return domain.Expense{}, fmt.Errorf("devapi.Store.CreateExpense: %w", err)
	}
	e := &expenseRecord{
		tripID: tripID,
		expense: domain.Expense{
			ID:          s.id(),
			Amount:      in.Amount,
			Currency:    in.Currency,
			Description: strings.TrimSpace(in.Description),
			Category:    in.Category,
			ExpenseDate: in.ExpenseDate,
			CreatedAt:   s.now().UTC(),
		},
		payerID: userID,
	}
	s.expenses[e.expense.ID] = e
	return s.expenseView(e), nil
}

// DeleteExpense removes an expense.
func (s *Store) DeleteExpense(userID, expenseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[expenseID]
	if !ok {
		return fmt.Errorf("devapi.Store.DeleteExpense: expense %d: %w", expenseID, domain.ErrNotFound)
	}
	if _, err := s.member(userID, e.tripID); err != nil {
		return fmt.Errorf("devapi.Store.DeleteExpense: %w", err)
	}
	delete(s.expenses, expenseID)
	return nil
}

// Total sums a trip's expense amounts. Currencies are not converted.
func (s *Store) Total(userID, tripID int64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.member(userID, tripID); err != nil {
		return 0, fmt.Errorf("devapi.Store.Total: %w", err)
	}
	var total float64
	for _, e := range s.tripExpenses(tripID) {
		total += e.expense.Amount
	}
	return round2(total), nil
}

// Balances splits every expense equally across the trip's participants and
// returns, per participant name, what they paid minus their share.
func (s *Store) Balances(userID, tripID int64) (domain.Balances, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.member(userID, tripID)
	if err != nil {
		return nil, fmt.Errorf("devapi.Store.Balances: %w", err)
	}
	paid := map[int64]float64{}
	var total float64
	for _, e := range s.tripExpenses(tripID) {
		paid[e.payerID] += e.expense.Amount
		total += e.expense.Amount
	}
	share := total / float64(len(t.participants))
	out := domain.Balances{}
	for _, id := range t.participants {
		if u := s.userPtr(id); u != nil {
			out[u.FullName()] = round2(paid[id] - share)
		}
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// --- invites ----------------------------------------------------------------

// CreateInvite issues a new invite token for a trip.
func (s *Store) CreateInvite(userID, tripID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.member(userID, tripID); err != nil {
		return "", fmt.Errorf("devapi.Store.CreateInvite: %w", err)
	}
	token := uuid.NewString()
	s.invites[token] = tripID
	return token, nil
}

// Invites lists the outstanding tokens for a trip.
func (s *Store) Invites(userID, tripID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.member(userID, tripID); err != nil {
		return nil, fmt.Errorf("devapi.Store.Invites: %w", err)
	}
	var out []string
	for tok, id := range s.invites {
		if id == tripID {
			out = append(out, tok)
		}
	}
	slices.Sort(out)
	return out, nil
}

// RevokeInvite invalidates a token.
func (s *Store) RevokeInvite(userID, tripID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.member(userID, tripID); err != nil {
		return fmt.Errorf("devapi.Store.RevokeInvite: %w", err)
	}
	if s.invites[token] != tripID {
		return fmt.Errorf("devapi.Store.RevokeInvite: invite: %w", domain.ErrNotFound)
	}
	delete(s.invites, token)
	return nil
}

// InviteTrip returns the trip a token grants access to. Anyone holding the
// token may look it up.
func (s *Store) InviteTrip(token string) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[s.invites[token]]
	if !ok {
		return domain.Trip{}, fmt.Errorf("devapi.Store.InviteTrip: invite: %w", domain.ErrNotFound)
	}
	return s.tripView(t), nil
}

// AcceptInvite adds userID to the token's trip. Accepting twice is a no-op.
// Tokens stay valid until revoked.
func (s *Store) AcceptInvite(userID int64, token string) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[s.invites[token]]
	if !ok {
		return domain.Trip{}, fmt.Errorf("devapi.Store.AcceptInvite: invite: %w", domain.ErrNotFound)
	}
	if _, ok := s.users[userID]; !ok {
		return domain.Trip{}, fmt.Errorf("devapi.Store.AcceptInvite: %w", domain.ErrUnauthorized)
	}
	if !slices.Contains(t.participants, userID) {
		t.participants = append(t.participants, userID)
	}
	return s.tripView(t), nil
}
