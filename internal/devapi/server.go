package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tripboard/tripboard/internal/domain"
	"github.com/tripboard/tripboard/internal/middleware"
)

// maxBodyBytes caps request bodies; the largest legitimate body is a trip.
const maxBodyBytes = 1 << 20

// Server serves the remote API over an in-memory Store.
// Handlers are split into per-resource files but share this struct.
type Server struct {
	store   *Store
	auth    *middleware.Authenticator
	log     *slog.Logger
	openAPI []byte
}

// Options configures the router built by Handler.
type Options struct {
	// CORSOrigins enables CORS for the listed origins when non-empty.
	CORSOrigins []string

	// OpenAPI, when set, is served at /openapi.yaml.
	OpenAPI []byte
}

// NewServer constructs a Server. Tokens are signed with secret.
func NewServer(store *Store, secret string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		store: store,
		auth:  middleware.NewAuthenticator(secret, 24*time.Hour),
		log:   log,
	}
}

// Handler returns the chi router with the full middleware stack. The API is
// mounted under /api; /healthz and /openapi.yaml sit at the root.
func (s *Server) Handler(opts Options) http.Handler {
	s.openAPI = opts.OpenAPI

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewSlogLogger(s.log))
	r.Use(chimiddleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.NewCORSHandler(opts.CORSOrigins))
	}
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	r.Get("/healthz", s.health)
	r.Get("/openapi.yaml", s.openAPIDoc)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Get("/invites/{token}", s.inviteDetails)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Require())

			r.Get("/auth/me", s.me)

			r.Get("/trips", s.listTrips)
			r.Post("/trips", s.createTrip)
			r.Get("/trips/{tripID}", s.getTrip)
			r.Put("/trips/{tripID}", s.updateTrip)
			r.Delete("/trips/{tripID}", s.deleteTrip)
			r.Get("/trips/{tripID}/participants", s.listParticipants)

			r.Get("/trips/{tripID}/stops", s.listStops)
			r.Post("/trips/{tripID}/stops", s.addStop)
			r.Put("/trips/{tripID}/stops/reorder", s.reorderStops)
			r.Post("/stops/{stopID}/vote", s.voteStop)
			r.Delete("/stops/{stopID}", s.deleteStop)

			r.Get("/trips/{tripID}/tasks", s.listTasks)
			r.Post("/trips/{tripID}/tasks", s.createTask)
			r.Patch("/tasks/{taskID}/status", s.updateTaskStatus)
			r.Delete("/tasks/{taskID}", s.deleteTask)

			r.Get("/trips/{tripID}/expenses", s.listExpenses)
			r.Post("/trips/{tripID}/expenses", s.createExpense)
			r.Get("/trips/{tripID}/expenses/balances", s.expenseBalances)
			r.Get("/trips/{tripID}/expenses/total", s.expenseTotal)
			r.Delete("/expenses/{expenseID}", s.deleteExpense)

			r.Post("/trips/{tripID}/invites", s.createInvite)
			r.Get("/trips/{tripID}/invites", s.listInvites)
			r.Delete("/trips/{tripID}/invites/{token}", s.revokeInvite)
			r.Post("/invites/{token}/accept", s.acceptInvite)
		})
	})
	return r
}

// health handles GET /healthz.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// openAPIDoc handles GET /openapi.yaml.
func (s *Server) openAPIDoc(w http.ResponseWriter, _ *http.Request) {
	if len(s.openAPI) == 0 {
		writeError(w, http.StatusNotFound, "not_found", "no OpenAPI document configured")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(s.openAPI)
}

// --- request/response helpers ----------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// fail maps a Store error onto an HTTP error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", unwrapMessage(err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", unwrapMessage(err, domain.ErrForbidden))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", unwrapMessage(err, domain.ErrUnauthorized))
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "conflict", unwrapMessage(err, ErrConflict))
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part that follows the sentinel.
// e.g. "devapi.Store.CreateTrip: validation error: please enter a trip name"
// → "please enter a trip name"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	if _, after, ok := strings.Cut(msg, sentinel.Error()+": "); ok {
		return after
	}
	return sentinel.Error()
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid "+name)
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated user id. Require has already run,
// so a missing id is a wiring bug.
func currentUser(r *http.Request) int64 {
	id, err := middleware.UserID(r.Context())
	if err != nil {
		panic(err)
	}
	return id
}

func (s *Server) userByID(id int64) *domain.User {
	u, err := s.store.User(id)
	if err != nil {
		return nil
	}
	return &u
}
