// Package workspace is the single source of truth for which trips exist,
// which one is open, and that trip's stops, participants and invite link.
//
// Every per-trip collection lives in a cache.Keyed and is replaced
// wholesale from the server after each mutation, successful or not. Loads
// that lose a race against a newer load for the same key are discarded and
// reported as domain.ErrStale.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tripboard/tripboard/internal/cache"
	"github.com/tripboard/tripboard/internal/domain"
)

// TripAPI is the trip resource of the remote API.
type TripAPI interface {
	List(ctx context.Context) ([]domain.Trip, error)
	Create(ctx context.Context, in domain.TripInput) (domain.Trip, error)
	Update(ctx context.Context, id int64, in domain.TripInput) (domain.Trip, error)
	Delete(ctx context.Context, id int64) error
}

// StopAPI is the stop resource of the remote API.
type StopAPI interface {
	List(ctx context.Context, tripID int64) ([]domain.Stop, error)
	Add(ctx context.Context, tripID int64, in domain.StopInput) (domain.Stop, error)
	Vote(ctx context.Context, stopID int64, vote domain.VoteType) error
	Reorder(ctx context.Context, tripID int64, stopIDs []int64) error
	Delete(ctx context.Context, stopID int64) error
}

// InviteAPI is the invite and participant resource of the remote API.
type InviteAPI interface {
	Generate(ctx context.Context, tripID int64) (domain.Invite, error)
	Participants(ctx context.Context, tripID int64) ([]domain.Participant, error)
}

// participantFanOut bounds concurrent participant loads after LoadTrips.
const participantFanOut = 4

// shareCodeNamespace seeds the deterministic share codes.
var shareCodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tripboard:trip"))

// ShareCode returns the display-only share code for a trip id: nine
// uppercase hex characters derived from a name-based UUID, so the same trip
// always shows the same code.
func ShareCode(tripID int64) string {
	id := uuid.NewSHA1(shareCodeNamespace, []byte(strconv.FormatInt(tripID, 10)))
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:9]
}

type tripsKey struct{}

// Stats summarises the current user's trips for the profile view.
type Stats struct {
	Created int
	Joined  int
}

// Controller holds the workspace state. Safe for concurrent use.
type Controller struct {
	trips   TripAPI
	stops   StopAPI
	invites InviteAPI
	origin  string
	log     *slog.Logger

	tripList     *cache.Keyed[tripsKey, []domain.Trip]
	stopCache    *cache.Keyed[int64, []domain.Stop]
	participants *cache.Keyed[int64, []domain.Participant]

	mu      sync.Mutex
	me      *domain.User
	active  int64
	links   map[int64]domain.Invite
	members map[int64][]string
}

// New returns an empty Controller. origin is the app origin used to build
// invite links.
func New(trips TripAPI, stops StopAPI, invites InviteAPI, origin string, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		trips:        trips,
		stops:        stops,
		invites:      invites,
		origin:       origin,
		log:          log,
		tripList:     cache.NewKeyed[tripsKey, []domain.Trip](),
		stopCache:    cache.NewKeyed[int64, []domain.Stop](),
		participants: cache.NewKeyed[int64, []domain.Participant](),
		links:        map[int64]domain.Invite{},
		members:      map[int64][]string{},
	}
}

// SetCurrentUser records who is logged in. Creator-only actions and Stats
// depend on it.
func (c *Controller) SetCurrentUser(u *domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.me = u
}

func (c *Controller) currentUserID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.me == nil {
		return 0
	}
	return c.me.ID
}

// --- trips ------------------------------------------------------------------

// LoadTrips replaces the trip list with the server's, then refreshes every
// trip's participants. Participant failures are logged and do not fail the load.
func (c *Controller) LoadTrips(ctx context.Context) ([]domain.Trip, error) {
	ticket := c.tripList.Begin(tripsKey{})
	trips, err := c.trips.List(ctx)
	if err != nil {
		c.log.ErrorContext(ctx, "load trips", "error", err)
		return nil, fmt.Errorf("workspace.Controller.LoadTrips: %w", err)
	}
	for i := range trips {
		trips[i].ShareCode = ShareCode(trips[i].ID)
	}
	if !c.tripList.Commit(ticket, trips) {
		return nil, fmt.Errorf("workspace.Controller.LoadTrips: %w", domain.ErrStale)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(participantFanOut)
	for _, t := range trips {
		g.Go(func() error {
			if _, err := c.LoadParticipants(gctx, t.ID); err != nil {
				c.log.WarnContext(gctx, "load participants", "trip_id", t.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return slices.Clone(trips), nil
}

// Trips returns the cached trip list.
func (c *Controller) Trips() []domain.Trip {
	trips, _ := c.tripList.Get(tripsKey{})
	return slices.Clone(trips)
}

// Trip returns one trip from the cached list.
func (c *Controller) Trip(id int64) (domain.Trip, bool) {
	trips, _ := c.tripList.Get(tripsKey{})
	for _, t := range trips {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Trip{}, false
}

// CreateTrip validates locally, creates the trip, and reloads the list. It
// returns the trip as it appears in the reloaded list.
func (c *Controller) CreateTrip(ctx context.Context, in domain.TripInput) (domain.Trip, error) {
	if err := in.Validate(); err != nil {
		return domain.Trip{}, fmt.Errorf("workspace.Controller.CreateTrip: %w", err)
	}
	created, err := c.trips.Create(ctx, in)
	if err != nil {
		c.log.ErrorContext(ctx, "create trip", "error", err)
		return domain.Trip{}, fmt.Errorf("workspace.Controller.CreateTrip: %w", err)
	}
	return c.reloadTrip(ctx, created, "workspace.Controller.CreateTrip")
}

// UpdateTrip validates locally, updates the trip, and reloads the list.
func (c *Controller) UpdateTrip(ctx context.Context, id int64, in domain.TripInput) (domain.Trip, error) {
	if err := in.Validate(); err != nil {
		return domain.Trip{}, fmt.Errorf("workspace.Controller.UpdateTrip: %w", err)
	}
	updated, err := c.trips.Update(ctx, id, in)
	if err != nil {
		c.log.ErrorContext(ctx, "update trip", "trip_id", id, "error", err)
		return domain.Trip{}, fmt.Errorf("workspace.Controller.UpdateTrip: %w", err)
	}
	return c.reloadTrip(ctx, updated, "workspace.Controller.UpdateTrip")
}

func (c *Controller) reloadTrip(ctx context.Context, fallback domain.Trip, op string) (domain.Trip, error) {
	fallback.ShareCode = ShareCode(fallback.ID)
	if _, err := c.LoadTrips(ctx); err != nil {
		return fallback, fmt.Errorf("%s: reload: %w", op, err)
	}
	if t, ok := c.Trip(fallback.ID); ok {
		return t, nil
	}
	return fallback, nil
}

// DeleteTrip deletes a trip the current user created. Other users' trips
// are refused with domain.ErrForbidden without a request. Cached data for
// the trip is dropped and the list reloaded.
func (c *Controller) DeleteTrip(ctx context.Context, id int64) error {
	trip, ok := c.Trip(id)
	if !ok {
		return fmt.Errorf("workspace.Controller.DeleteTrip: trip %d: %w", id, domain.ErrNotFound)
	}
	if !trip.CreatedByUser(c.currentUserID()) {
		return fmt.Errorf("workspace.Controller.DeleteTrip: %w: only the creator can delete %q", domain.ErrForbidden, trip.Name)
	}
	if err := c.trips.Delete(ctx, id); err != nil {
		c.log.ErrorContext(ctx, "delete trip", "trip_id", id, "error", err)
		return fmt.Errorf("workspace.Controller.DeleteTrip: %w", err)
	}

	c.mu.Lock()
	if c.active == id {
		c.active = 0
	}
	delete(c.links, id)
	delete(c.members, id)
	c.mu.Unlock()
	c.stopCache.Delete(id)
	c.participants.Delete(id)

	if _, err := c.LoadTrips(ctx); err != nil {
		return fmt.Errorf("workspace.Controller.DeleteTrip: reload: %w", err)
	}
	return nil
}

// Stats counts the trips the current user created and the ones they joined.
func (c *Controller) Stats() Stats {
	me := c.currentUserID()
	var s Stats
	for _, t := range c.Trips() {
		if t.CreatedByUser(me) {
			s.Created++
		} else {
			s.Joined++
		}
	}
	return s
}

// --- selection --------------------------------------------------------------

// SelectTrip makes tripID the active trip and loads its stops and
// participants. Data cached for other trips is kept. If another trip is
// selected before the loads finish, SelectTrip returns domain.ErrStale; the
// loaded data stays cached under tripID.
func (c *Controller) SelectTrip(ctx context.Context, tripID int64) error {
	if _, ok := c.Trip(tripID); !ok {
		return fmt.Errorf("workspace.Controller.SelectTrip: trip %d: %w", tripID, domain.ErrNotFound)
	}
	c.mu.Lock()
	c.active = tripID
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.LoadStops(gctx, tripID)
		return err
	})
	g.Go(func() error {
		_, err := c.LoadParticipants(gctx, tripID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("workspace.Controller.SelectTrip: %w", err)
	}

	if active, _ := c.ActiveTrip(); active.ID != tripID {
		return fmt.Errorf("workspace.Controller.SelectTrip: trip %d: %w", tripID, domain.ErrStale)
	}
	return nil
}

// ClearSelection closes the active trip.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = 0
}

// ActiveTrip returns the active trip, if any.
func (c *Controller) ActiveTrip() (domain.Trip, bool) {
	c.mu.Lock()
	id := c.active
	c.mu.Unlock()
	if id == 0 {
		return domain.Trip{}, false
	}
	return c.Trip(id)
}

// --- stops ------------------------------------------------------------------

// LoadStops replaces tripID's stop list with the server's.
func (c *Controller) LoadStops(ctx context.Context, tripID int64) ([]domain.Stop, error) {
	ticket := c.stopCache.Begin(tripID)
	stops, err := c.stops.List(ctx, tripID)
	if err != nil {
		c.log.ErrorContext(ctx, "load stops", "trip_id", tripID, "error", err)
		return nil, fmt.Errorf("workspace.Controller.LoadStops: %w", err)
	}
	if !c.stopCache.Commit(ticket, stops) {
		return nil, fmt.Errorf("workspace.Controller.LoadStops: trip %d: %w", tripID, domain.ErrStale)
	}
	return slices.Clone(stops), nil
}

// Stops returns the cached stop list for tripID.
func (c *Controller) Stops(tripID int64) []domain.Stop {
	stops, _ := c.stopCache.Get(tripID)
	return slices.Clone(stops)
}

// AddStop adds a stop and reloads the trip's stops.
func (c *Controller) AddStop(ctx context.Context, tripID int64, in domain.StopInput) ([]domain.Stop, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("workspace.Controller.AddStop: %w", err)
	}
	_, err := c.stops.Add(ctx, tripID, in)
	return c.afterStopMutation(ctx, tripID, "workspace.Controller.AddStop", err)
}

// DeleteStop deletes a stop and reloads the trip's stops.
func (c *Controller) DeleteStop(ctx context.Context, tripID, stopID int64) ([]domain.Stop, error) {
	err := c.stops.Delete(ctx, stopID)
	return c.afterStopMutation(ctx, tripID, "workspace.Controller.DeleteStop", err)
}

// Vote records a vote and reloads the trip's stops, so counts and the
// user's own vote always come from the server.
func (c *Controller) Vote(ctx context.Context, tripID, stopID int64, vote domain.VoteType) ([]domain.Stop, error) {
	if vote != domain.VoteLike && vote != domain.VoteDislike {
		return nil, fmt.Errorf("workspace.Controller.Vote: %w: vote must be LIKE or DISLIKE", domain.ErrValidation)
	}
	err := c.stops.Vote(ctx, stopID, vote)
	return c.afterStopMutation(ctx, tripID, "workspace.Controller.Vote", err)
}

// afterStopMutation reloads the stops whether or not the mutation
// succeeded. A failed mutation is logged and returned even when the
// resynchronizing reload succeeds.
func (c *Controller) afterStopMutation(ctx context.Context, tripID int64, op string, mutErr error) ([]domain.Stop, error) {
	if mutErr != nil {
		c.log.ErrorContext(ctx, "stop mutation failed, resynchronizing", "op", op, "trip_id", tripID, "error", mutErr)
		if _, err := c.LoadStops(ctx, tripID); err != nil {
			c.log.ErrorContext(ctx, "resynchronize stops", "trip_id", tripID, "error", err)
		}
		return c.Stops(tripID), fmt.Errorf("%s: %w", op, mutErr)
	}
	stops, err := c.LoadStops(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: reload: %w", op, err)
	}
	return stops, nil
}

// ReorderStops moves the stop at index from to index to, adopts the new
// order locally at once, and sends the full id sequence. On failure the
// list is reloaded from the server instead of rolled back.
func (c *Controller) ReorderStops(ctx context.Context, tripID int64, from, to int) ([]domain.Stop, error) {
	current := c.Stops(tripID)
	for _, st := range current {
		if st.ID == 0 {
			return nil, fmt.Errorf("workspace.Controller.ReorderStops: %w: some stops have no id", domain.ErrInvariant)
		}
	}
	if from < 0 || from >= len(current) || to < 0 || to >= len(current) {
		return nil, fmt.Errorf("workspace.Controller.ReorderStops: %w: position out of range", domain.ErrInvariant)
	}
	if from == to {
		return current, nil
	}

	moved := current[from]
	reordered := slices.Delete(slices.Clone(current), from, from+1)
	reordered = slices.Insert(reordered, to, moved)
	ids := make([]int64, len(reordered))
	for i, st := range reordered {
		ids[i] = st.ID
	}

	c.stopCache.Put(tripID, reordered)
	if err := c.stops.Reorder(ctx, tripID, ids); err != nil {
		return c.afterStopMutation(ctx, tripID, "workspace.Controller.ReorderStops", err)
	}
	return slices.Clone(reordered), nil
}

// --- participants and invites -----------------------------------------------

// LoadParticipants replaces tripID's participant list with the server's.
func (c *Controller) LoadParticipants(ctx context.Context, tripID int64) ([]domain.Participant, error) {
	ticket := c.participants.Begin(tripID)
	people, err := c.invites.Participants(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("workspace.Controller.LoadParticipants: %w", err)
	}
	if !c.participants.Commit(ticket, people) {
		return nil, fmt.Errorf("workspace.Controller.LoadParticipants: trip %d: %w", tripID, domain.ErrStale)
	}
	return slices.Clone(people), nil
}

// Participants returns the cached participant list for tripID.
func (c *Controller) Participants(tripID int64) []domain.Participant {
	people, _ := c.participants.Get(tripID)
	return slices.Clone(people)
}

// GenerateInviteLink asks the server for a new token and keeps the link
// built from it as the trip's current link, replacing any earlier one.
// Participants are refreshed afterwards; a failed refresh is only logged.
func (c *Controller) GenerateInviteLink(ctx context.Context, tripID int64) (domain.Invite, error) {
	inv, err := c.invites.Generate(ctx, tripID)
	if err != nil {
		c.log.ErrorContext(ctx, "generate invite link", "trip_id", tripID, "error", err)
		return domain.Invite{}, fmt.Errorf("workspace.Controller.GenerateInviteLink: %w", err)
	}
	inv.TripID = tripID
	inv.Link = domain.InviteLink(c.origin, inv.Token)

	c.mu.Lock()
	c.links[tripID] = inv
	c.mu.Unlock()

	if _, err := c.LoadParticipants(ctx, tripID); err != nil {
		c.log.WarnContext(ctx, "refresh participants after invite", "trip_id", tripID, "error", err)
	}
	return inv, nil
}

// InviteLink returns the most recently generated link for tripID.
func (c *Controller) InviteLink(tripID int64) (domain.Invite, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inv, ok := c.links[tripID]
	return inv, ok
}

// InviteMember adds an email to the trip's local member list. Nothing is
// sent to the server, so the server's participant list does not change.
func (c *Controller) InviteMember(tripID int64, email string) error {
	email = strings.TrimSpace(email)
	if err := domain.ValidateEmail(email); err != nil {
		return fmt.Errorf("workspace.Controller.InviteMember: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.members[tripID], email) {
		return fmt.Errorf("workspace.Controller.InviteMember: %w: %s is already invited", domain.ErrValidation, email)
	}
	c.members[tripID] = append(c.members[tripID], email)
	return nil
}

// RemoveMember drops an email from the trip's local member list.
func (c *Controller) RemoveMember(tripID int64, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.members[tripID]
	i := slices.Index(list, strings.TrimSpace(email))
	if i < 0 {
		return fmt.Errorf("workspace.Controller.RemoveMember: %s: %w", email, domain.ErrNotFound)
	}
	c.members[tripID] = slices.Delete(slices.Clone(list), i, i+1)
	return nil
}

// Members is the local display list: the creator's name followed by the
// locally invited emails.
func (c *Controller) Members(tripID int64) []string {
	var out []string
	if t, ok := c.Trip(tripID); ok {
		out = append(out, t.CreatorName())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(out, c.members[tripID]...)
}
