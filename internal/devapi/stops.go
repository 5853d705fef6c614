package devapi

import (
	"net/http"

	"github.com/tripboard/tripboard/internal/domain"
)

// listStops handles GET /api/trips/{tripID}/stops.
func (s *Server) listStops(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	stops, err := s.store.Stops(currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]stopResponse, len(stops))
	for i, st := range stops {
		out[i] = stopToResponse(st, s.userByID(st.AddedByID))
	}
	writeJSON(w, http.StatusOK, out)
}

// addStop handles POST /api/trips/{tripID}/stops.
func (s *Server) addStop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	var req stopRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := s.store.AddStop(currentUser(r), id, req.toInput())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stopToResponse(st, s.userByID(st.AddedByID)))
}

// reorderStops handles PUT /api/trips/{tripID}/stops/reorder.
func (s *Server) reorderStops(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.store.ReorderStops(currentUser(r), id, req.StopIDs); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// voteStop handles POST /api/stops/{stopID}/vote.
func (s *Server) voteStop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "stopID")
	if !ok {
		return
	}
	var req voteRequest
	if !decode(w, r, &req) {
		return
	}
	vote, err := domain.ParseVoteType(req.VoteType)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	st, err := s.store.Vote(currentUser(r), id, vote)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stopToResponse(st, s.userByID(st.AddedByID)))
}

// deleteStop handles DELETE /api/stops/{stopID}.
func (s *Server) deleteStop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "stopID")
	if !ok {
		return
	}
	if err := s.store.DeleteStop(currentUser(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
