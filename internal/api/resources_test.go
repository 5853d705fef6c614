package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripboard/tripboard/internal/api"
	"github.com/tripboard/tripboard/internal/domain"
	"github.com/tripboard/tripboard/testutil"
)

func date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func alpsInput() domain.TripInput {
	return domain.TripInput{
		Name:            "Alps",
		StartingPoint:   "Munich",
		Destination:     "Zermatt",
		StartDate:       date("2026-07-01"),
		EndDate:         date("2026-07-10"),
		DestCoordinates: &domain.Coordinates{Lng: 7.75, Lat: 46.02},
	}
}

func TestAuth_RegisterLoginCurrentUser(t *testing.T) {
	d := testutil.NewDevAPI(t)
	ctx := context.Background()
	anon := d.Client("")

	reg, err := anon.Auth.Register(ctx, domain.RegisterInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret1",
	}, "")
	require.NoError(t, err)
	require.NotNil(t, reg.User)
	assert.NotEmpty(t, reg.Token)

	login, err := anon.Auth.Login(ctx, domain.LoginInput{Email: "ada@example.com", Password: "secret1"}, "")
	require.NoError(t, err)

	me, err := d.Client(login.Token).Auth.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", me.FullName())
	assert.Equal(t, reg.User.ID, me.ID)

	_, err = anon.Auth.Login(ctx, domain.LoginInput{Email: "ada@example.com", Password: "nope"}, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = d.Client("garbage").Auth.CurrentUser(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuth_LoginWithInviteJoinsTrip(t *testing.T) {
	d := testutil.NewDevAPI(t)
	ctx := context.Background()
	_, ownerToken := d.SignUp(t, "Ada", "Lovelace")
	owner := d.Client(ownerToken)

	trip, err := owner.Trips.Create(ctx, alpsInput())
	require.NoError(t, err)
	inv, err := owner.Invites.Generate(ctx, trip.ID)
	require.NoError(t, err)

	_, err = d.Client("").Auth.Register(ctx, domain.RegisterInput{
		FirstName: "Bob", LastName: "Stone", Email: "bob@example.com", Password: "secret1",
	}, inv.Token)
	require.NoError(t, err)

	people, err := owner.Invites.Participants(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Bob Stone", people[1].FullName())
}

func TestTrips_CRUD(t *testing.T) {
	d := testutil.NewDevAPI(t)
	ctx := context.Background()
	_, token := d.SignUp(t, "Ada", "Lovelace")
	c := d.Client(token)

	created, err := c.Trips.Create(ctx, alpsInput())
	require.NoError(t, err)
	assert.Equal(t, "Trip from Munich to Zermatt", created.Description)
	assert.Equal(t, date("2026-07-01"), created.StartDate)
	assert.Nil(t, created.StartCoordinates)
	require.NotNil(t, created.DestCoordinates)
	assert.InDelta(t, 46.02, created.DestCoordinates.Lat, 1e-9)
	assert.Equal(t, "Ada Lovelace", created.CreatorName())

	in := alpsInput()
	in.Name = "Alps 2"
	in.Description = "Second try"
	updated, err := c.Trips.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Alps 2", updated.Name)
	assert.Equal(t, "Second try", updated.Description)

	got, err := c.Trips.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alps 2", got.Name)

	list, err := c.Trips.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.Trips.Delete(ctx, created.ID))
	_, err = c.Trips.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStops_AddVoteReorderDelete(t *testing.T) {
	d := testutil.NewDevAPI(t)
	ctx := context.Background()
	_, token := d.SignUp(t, "Ada", "Lovelace")
	c := d.Client(token)
	trip, err := c.Trips.Create(ctx, alpsInput())
	require.NoError(t, err)

	var ids []int64
	for _, name := range []string{"Lake", "Peak", "Hut"} {
		st, err := c.Stops.Add(ctx, trip.ID, domain.StopInput{Name: name, Lat: 46, Lng: 7})
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", st.AddedBy)
		ids = append(ids, st.ID)
	}

	require.NoError(t, c.Stops.Vote(ctx, ids[0], domain.VoteLike))
	require.NoError(t, c.Stops.Reorder(ctx, trip.ID, []int64{ids[2], ids[0], ids[1]}))

	stops, err := c.Stops.List(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, stops, 3)
	assert.Equal(t, "Hut", stops[0].Name)
	assert.Equal(t, "Lake", stops[1].Name)
	assert.Equal(t, 1, stops[1].LikesCount)
	assert.Equal(t, domain.VoteLike, stops[1].CurrentUserVote)

	err = c.Stops.Reorder(ctx, trip.ID, []int64{ids[0]})
	assert.Equal(t, http.StatusUnprocessableEntity, api.StatusCode(err))

	require.NoError(t, c.Stops.Delete(ctx, ids[1]))
	stops, err = c.Stops.List(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, stops, 2)
}

func TestTasks_Lifecycle(t *testing.T) {
	d := testutil.NewDevAPI(t)
	ctx := context.Background()
	user, token := d.SignUp(t, "Ada", "Lovelace")
	c := d.Client(token)
	trip, err := c.Trips.Create(ctx, alpsInput())
	require.NoError(t, err)

	due := date("2026-06-20")
	task, err := c.Tasks.Create(ctx, trip.ID, domain.TaskInput{Title: "Book hut", AssigneeID: user.ID, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskTodo, task.Status)
	assert.Equal(t, "Book hut", task.Description)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, due, *task.DueDate)

	moved, err := c.Tasks.UpdateStatus(ctx, task.ID, domain.TaskInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, moved.Status)

	tasks, err := c.Tasks.List(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ada Lovelace", tasks[0].AssignedTo.FullName())

	require.NoError(t, c.Tasks.Delete(ctx, task.ID))
	tasks, err = c.Tasks.List(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestExpenses_Lifecycle(t *testing.T) {
	d := testutil.NewDevAPI(t)
	ctx := context.Background()
	_, token := d.SignUp(t, "Ada", "Lovelace")
	c := d.Client(token)
	trip, err := c.Trips.Create(ctx, alpsInput())
	require.NoError(t, err)

	in := domain.ExpenseInput{Amount: 42.5, Description: "Fondue"}.Normalize(time.Now())
	e, err := c.Expenses.Create(ctx, trip.ID, in)
	require.NoError(t, err)
	assert.InDelta(t, 42.5, e.Amount, 1e-9)
	assert.Equal(t, "USD", e.Currency)
	require.NotNil(t, e.PaidBy)

	total, err := c.Expenses.Total(ctx, trip.ID)
	require.NoError(t, err)
	assert.InDelta(t, 42.5, total, 1e-9)

	balances, err := c.Expenses.Balances(ctx, trip.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0, balances["Ada Lovelace"], 1e-9)

	list, err := c.Expenses.List(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.Expenses.Delete(ctx, e.ID))
	total, err = c.Expenses.Total(ctx, trip.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestInvites_Lifecycle(t *testing.T) {
	d := testutil.NewDevAPI(t)
	ctx := context.Background()
	_, ownerToken := d.SignUp(t, "Ada", "Lovelace")
	_, guestToken := d.SignUp(t, "Bob", "Stone")
	owner, guest := d.Client(ownerToken), d.Client(guestToken)
	trip, err := owner.Trips.Create(ctx, alpsInput())
	require.NoError(t, err)

	inv, err := owner.Invites.Generate(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, inv.TripID)
	assert.Empty(t, inv.Link)

	details, err := d.Client("").Invites.Details(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, details.TripID)

	require.NoError(t, guest.Invites.Accept(ctx, inv.Token))
	trips, err := guest.Trips.List(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 1)

	list, err := owner.Invites.List(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, owner.Invites.Revoke(ctx, trip.ID, inv.Token))
	_, err = owner.Invites.Details(ctx, inv.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Some backends name the field inviteToken; an empty response is an error.
func TestInvites_Generate_tokenField(t *testing.T) {
	tests := map[string]struct {
		body    any
		want    string
		wantErr error
	}{
		"token":       {body: map[string]any{"token": "abc"}, want: "abc"},
		"inviteToken": {body: map[string]any{"inviteToken": "xyz"}, want: "xyz"},
		"missing":     {body: map[string]any{}, wantErr: api.ErrNoInviteToken},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(tc.body)
			}))
			t.Cleanup(srv.Close)

			inv, err := api.New(srv.URL, api.StaticToken("t")).Invites.Generate(context.Background(), 1)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, inv.Token)
		})
	}
}

// Backends differ in how they encode numbers and timestamps; the client
// accepts all of them.
func TestTrips_List_tolerantDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": 7, "name": "Coast", "startingPoint": "Lisbon", "destination": "Porto",
			"startDate": "2026-05-01T00:00:00", "endDate": "2026-05-04",
			"startLatitude": "38.72", "startLongitude": -9.14,
			"destinationLatitude": null, "destinationLongitude": null,
			"createdAt": "2026-04-01T10:00:00"
		}]`))
	}))
	t.Cleanup(srv.Close)

	trips, err := api.New(srv.URL, nil).Trips.List(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 1)
	tr := trips[0]
	assert.Equal(t, date("2026-05-01"), tr.StartDate)
	require.NotNil(t, tr.StartCoordinates)
	assert.InDelta(t, 38.72, tr.StartCoordinates.Lat, 1e-9)
	assert.Nil(t, tr.DestCoordinates)
	assert.Equal(t, "Unknown", tr.CreatorName())
	assert.Equal(t, 10, tr.CreatedAt.Hour())
}
