package devapi

import (
	"net/http"
)

// listTrips handles GET /api/trips.
func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	trips := s.store.Trips(currentUser(r))
	out := make([]tripResponse, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

// createTrip handles POST /api/trips.
func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if !decode(w, r, &req) {
		return
	}
	trip, err := s.store.CreateTrip(currentUser(r), req.toInput())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

// getTrip handles GET /api/trips/{tripID}.
func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	trip, err := s.store.Trip(currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// updateTrip handles PUT /api/trips/{tripID}.
func (s *Server) updateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	var req tripRequest
	if !decode(w, r, &req) {
		return
	}
	trip, err := s.store.UpdateTrip(currentUser(r), id, req.toInput())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// deleteTrip handles DELETE /api/trips/{tripID}.
func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	if err := s.store.DeleteTrip(currentUser(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listParticipants handles GET /api/trips/{tripID}/participants.
func (s *Server) listParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	users, err := s.store.Participants(currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]*userResponse, len(users))
	for i := range users {
		out[i] = userToResponse(&users[i])
	}
	writeJSON(w, http.StatusOK, out)
}
