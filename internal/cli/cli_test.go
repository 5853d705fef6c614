package cli_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripboard/tripboard/internal/cli"
	"github.com/tripboard/tripboard/internal/config"
	"github.com/tripboard/tripboard/internal/domain"
	"github.com/tripboard/tripboard/testutil"
)

const placesJSON = `{"features":[
 {"id":"poi.1","place_name":"Bixby Creek Bridge, Big Sur, California","text":"Bixby Creek Bridge","geometry":{"coordinates":[-121.90,36.37]}}
]}`

// harness runs CLI invocations against an in-process development API and
// a fake geocoder. Each device has its own token store, like a separate
// machine.
type harness struct {
	t   *testing.T
	dev *testutil.DevAPI
	cfg config.Config
	dir string

	mu      sync.Mutex
	queries []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, dev: testutil.NewDevAPI(t), dir: t.TempDir()}

	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSuffix(r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:], ".json")
		h.mu.Lock()
		h.queries = append(h.queries, q)
		h.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(placesJSON))
	}))
	t.Cleanup(geo.Close)

	cfg := config.Defaults()
	cfg.APIURL = h.dev.BaseURL
	cfg.AppOrigin = "http://app.test"
	cfg.MapboxURL = geo.URL
	cfg.MapboxToken = "pk.test"
	h.cfg = cfg
	return h
}

func (h *harness) runIn(device, stdin string, args ...string) (string, error) {
	h.t.Helper()
	cfg := h.cfg
	cfg.StorePath = filepath.Join(h.dir, device, "tripboard.db")

	var out, errOut bytes.Buffer
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := cli.Run(context.Background(), cfg, cli.IO{In: strings.NewReader(stdin), Out: &out, Err: &errOut}, log, args)
	return out.String(), err
}

func (h *harness) run(device string, args ...string) string {
	h.t.Helper()
	out, err := h.runIn(device, "", args...)
	require.NoError(h.t, err, "tripboard %s", strings.Join(args, " "))
	return out
}

func (h *harness) user(email string) domain.User {
	h.t.Helper()
	u, err := h.dev.Store.Authenticate(email, "password1")
	require.NoError(h.t, err)
	return u
}

func (h *harness) searched() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.queries...)
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func register(h *harness, device, first, last string) domain.User {
	h.t.Helper()
	email := strings.ToLower(first) + "@example.com"
	out := h.run(device, "register", "--first", first, "--last", last, "-e", email, "-p", "password1")
	require.Contains(h.t, out, "Welcome, "+first+" "+last)
	return h.user(email)
}

func TestRun_notLoggedIn(t *testing.T) {
	h := newHarness(t)

	_, err := h.runIn("ada", "", "whoami")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRun_unknownCommandSuggests(t *testing.T) {
	h := newHarness(t)

	_, err := h.runIn("ada", "", "trps", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "trips"`)
}

func TestRun_unknownFlagSuggests(t *testing.T) {
	h := newHarness(t)

	_, err := h.runIn("ada", "", "login", "--emial", "ada@example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--email")
}

func TestRun_help(t *testing.T) {
	h := newHarness(t)

	out := h.run("ada", "--help")

	assert.Contains(t, out, "Commands:")
	for _, name := range []string{"trips", "stops", "tasks", "expenses", "invite", "places"} {
		assert.Contains(t, out, name)
	}
}

func TestRun_noTripSelected(t *testing.T) {
	h := newHarness(t)
	register(h, "ada", "Ada", "Lovelace")

	_, err := h.runIn("ada", "", "stops", "list")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRun_planTrip(t *testing.T) {
	h := newHarness(t)
	ada := register(h, "ada", "Ada", "Lovelace")

	out := h.run("ada", "whoami")
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "Trips created: 0")

	out = h.run("ada", "trips", "create", "-n", "Coast", "--from", "San Francisco", "--to", "Big Sur",
		"--start", "2026-06-01", "--end", "2026-06-05")
	assert.Contains(t, out, `"Coast"`)
	trips := h.dev.Store.Trips(ada.ID)
	require.Len(t, trips, 1)
	trip := trips[0]
	assert.Equal(t, "Trip from San Francisco to Big Sur", trip.Description)

	out = h.run("ada", "trips", "list")
	assert.Contains(t, out, "Coast")
	assert.Contains(t, out, "owner")
	assert.Contains(t, out, "(5 days)")
	assert.Regexp(t, regexp.MustCompile(`\*`+id(trip.ID)), out)

	// Stops: one typed, one from a place search.
	h.run("ada", "stops", "add", "-n", "Pfeiffer Beach", "--address", "Sycamore Canyon Rd")
	out = h.run("ada", "stops", "add", "--place", "bixby")
	assert.Contains(t, out, "Bixby Creek Bridge, Big Sur, California")
	assert.Equal(t, []string{"bixby"}, h.searched())

	stops, err := h.dev.Store.Stops(ada.ID, trip.ID)
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.InDelta(t, 36.37, stops[1].Lat, 1e-9)

	out = h.run("ada", "stops", "vote", id(stops[1].ID), "like")
	assert.Contains(t, out, "liked")
	assert.Contains(t, out, "1/0")

	out = h.run("ada", "stops", "move", id(stops[1].ID), "1")
	assert.Contains(t, out, "1st place")
	reordered, err := h.dev.Store.Stops(ada.ID, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{stops[1].ID, stops[0].ID}, []int64{reordered[0].ID, reordered[1].ID})

	// Tasks.
	out = h.run("ada", "tasks", "add", "--title", "Book campsite", "-a", "me", "--due", "2026-05-15")
	assert.Contains(t, out, "Book campsite")
	assert.Contains(t, out, "0% complete")
	tasks, err := h.dev.Store.Tasks(ada.ID, trip.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.TaskTodo, tasks[0].Status)

	out = h.run("ada", "tasks", "move", id(tasks[0].ID), "done")
	assert.Contains(t, out, "100% complete")

	_, err = h.runIn("ada", "", "tasks", "add", "--title", "Pack", "-a", "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrValidation)

	out = h.run("ada", "whoami")
	assert.Contains(t, out, "Trips created: 1")
}

func TestRun_shareTrip(t *testing.T) {
	h := newHarness(t)
	ada := register(h, "ada", "Ada", "Lovelace")
	h.run("ada", "trips", "create", "-n", "Coast", "--from", "San Francisco", "--to", "Big Sur",
		"--start", "2026-06-01", "--end", "2026-06-05")
	trip := h.dev.Store.Trips(ada.ID)[0]

	out := h.run("ada", "invite", "link")
	link := regexp.MustCompile(`http://app\.test/\?invite=\S+`).FindString(out)
	require.NotEmpty(t, link, out)

	// Grace opens the link before having an account; registering joins the trip.
	out = h.run("grace", "open", link)
	assert.Contains(t, out, "Invite saved")
	grace := register(h, "grace", "Grace", "Hopper")
	out = h.run("grace", "trips", "list")
	assert.Contains(t, out, "Coast")
	assert.Contains(t, out, "joined")

	// Alan already has an account and accepts by token.
	tokens, err := h.dev.Store.Invites(ada.ID, trip.ID)
	require.NoError(t, err)
	require.NotEmpty(t, tokens)
	register(h, "alan", "Alan", "Turing")
	out = h.run("alan", "invite", "accept", tokens[0])
	assert.Contains(t, out, "Joined trip "+id(trip.ID))

	out = h.run("ada", "invite", "participants")
	for _, name := range []string{"Ada Lovelace", "Grace Hopper", "Alan Turing"} {
		assert.Contains(t, out, name)
	}

	// Expenses split three ways.
	out = h.run("grace", "expenses", "add", "--trip", id(trip.ID), "--amount", "90", "-d", "Groceries")
	assert.Contains(t, out, "90.00 USD")
	assert.Contains(t, out, "Total: 90.00")
	assert.Contains(t, out, "+60.00")
	assert.Contains(t, out, "-30.00")

	expenses, err := h.dev.Store.Expenses(grace.ID, trip.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	out = h.run("grace", "expenses", "delete", "--trip", id(trip.ID), id(expenses[0].ID))
	assert.Contains(t, out, "No expenses yet")

	// Only the creator may delete.
	_, err = h.runIn("grace", "", "trips", "delete", id(trip.ID))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	h.run("ada", "trips", "delete", id(trip.ID))
	assert.Empty(t, h.dev.Store.Trips(ada.ID))
}

func TestRun_logoutForgetsSession(t *testing.T) {
	h := newHarness(t)
	register(h, "ada", "Ada", "Lovelace")

	h.run("ada", "logout")
	_, err := h.runIn("ada", "", "whoami")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	out := h.run("ada", "login", "-e", "ada@example.com", "-p", "password1")
	assert.Contains(t, out, "Signed in as Ada Lovelace")
}

func TestRun_placesWatchResolvesLastLine(t *testing.T) {
	h := newHarness(t)

	out, err := h.runIn("ada", "b\nbi\nbix\nbixby\n", "places", "watch", "--debounce-ms", "10000")

	require.NoError(t, err)
	assert.Contains(t, out, "Bixby Creek Bridge")
	assert.Equal(t, []string{"bixby"}, h.searched())
}

func TestRun_placesSearchTooShort(t *testing.T) {
	h := newHarness(t)

	_, err := h.runIn("ada", "", "places", "search", "b")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, h.searched())
}
