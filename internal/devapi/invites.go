package devapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// createInvite handles POST /api/trips/{tripID}/invites.
func (s *Server) createInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	token, err := s.store.CreateInvite(currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inviteResponse{Token: token, TripID: id})
}

// listInvites handles GET /api/trips/{tripID}/invites.
func (s *Server) listInvites(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	tokens, err := s.store.Invites(currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]inviteResponse, len(tokens))
	for i, tok := range tokens {
		out[i] = inviteResponse{Token: tok, TripID: id}
	}
	writeJSON(w, http.StatusOK, out)
}

// revokeInvite handles DELETE /api/trips/{tripID}/invites/{token}.
func (s *Server) revokeInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	if err := s.store.RevokeInvite(currentUser(r), id, chi.URLParam(r, "token")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// inviteDetails handles GET /api/invites/{token}. No authentication is
// required so the app can show the trip before the user logs in.
func (s *Server) inviteDetails(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	trip, err := s.store.InviteTrip(token)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inviteResponse{Token: token, TripID: trip.ID, TripName: trip.Name})
}

// acceptInvite handles POST /api/invites/{token}/accept.
func (s *Server) acceptInvite(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	trip, err := s.store.AcceptInvite(currentUser(r), token)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}
