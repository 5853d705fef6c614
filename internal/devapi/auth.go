package devapi

import (
	"net/http"

	"github.com/tripboard/tripboard/internal/domain"
)

// register handles POST /api/auth/register. A valid inviteToken joins the
// new user to the invite's trip.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := s.store.Register(domain.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     string(req.Email),
		Password:  req.Password,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.acceptPendingInvite(r, u.ID, req.InviteToken)
	s.issue(w, r, u, http.StatusCreated)
}

// login handles POST /api/auth/login.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.acceptPendingInvite(r, u.ID, req.InviteToken)
	s.issue(w, r, u, http.StatusOK)
}

// me handles GET /api/auth/me.
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.User(currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(&u))
}

func (s *Server) issue(w http.ResponseWriter, r *http.Request, u domain.User, status int) {
	token, err := s.auth.Issue(u.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, authResponse{Token: token, User: userToResponse(&u)})
}

// acceptPendingInvite joins the user to an invite's trip as part of login.
// An unusable token never fails the login itself.
func (s *Server) acceptPendingInvite(r *http.Request, userID int64, token string) {
	if token == "" {
		return
	}
	if _, err := s.store.AcceptInvite(userID, token); err != nil {
		s.log.WarnContext(r.Context(), "invite not accepted during auth", "user_id", userID, "error", err)
	}
}
