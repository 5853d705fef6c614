package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tripboard/tripboard/internal/domain"
)

// ErrNoInviteToken is returned when the server answers an invite request
// without a token.
var ErrNoInviteToken = errors.New("no token in invite response")

// Invites is the client for invite links and trip participants.
type Invites struct {
	c *Client
}

// Generate asks the server for a new invite token for tripID. The returned
// Invite has no Link; building one needs the app origin.
func (i *Invites) Generate(ctx context.Context, tripID int64) (domain.Invite, error) {
	var dto inviteDTO
	if err := i.c.Do(ctx, http.MethodPost, fmt.Sprintf("/trips/%d/invites", tripID), struct{}{}, &dto); err != nil {
		return domain.Invite{}, fmt.Errorf("api.Invites.Generate: %w", err)
	}
	token := dto.token()
	if token == "" {
		return domain.Invite{}, fmt.Errorf("api.Invites.Generate: %w", ErrNoInviteToken)
	}
	return domain.Invite{TripID: tripID, Token: token}, nil
}

// Details looks up the trip an invite token belongs to.
func (i *Invites) Details(ctx context.Context, token string) (domain.Invite, error) {
	var dto inviteDTO
	if err := i.c.Do(ctx, http.MethodGet, "/invites/"+url.PathEscape(token), nil, &dto); err != nil {
		return domain.Invite{}, fmt.Errorf("api.Invites.Details: %w", err)
	}
	return domain.Invite{TripID: dto.TripID, Token: token}, nil
}

// Accept joins the current user to the invite's trip.
func (i *Invites) Accept(ctx context.Context, token string) error {
	if err := i.c.Do(ctx, http.MethodPost, "/invites/"+url.PathEscape(token)+"/accept", struct{}{}, nil); err != nil {
		return fmt.Errorf("api.Invites.Accept: %w", err)
	}
	return nil
}

// List returns the outstanding invites for a trip.
func (i *Invites) List(ctx context.Context, tripID int64) ([]domain.Invite, error) {
	var dtos []inviteDTO
	if err := i.c.Do(ctx, http.MethodGet, fmt.Sprintf("/trips/%d/invites", tripID), nil, &dtos); err != nil {
		return nil, fmt.Errorf("api.Invites.List: %w", err)
	}
	out := make([]domain.Invite, len(dtos))
	for n, d := range dtos {
		out[n] = domain.Invite{TripID: tripID, Token: d.token()}
	}
	return out, nil
}

// Revoke invalidates an invite token.
func (i *Invites) Revoke(ctx context.Context, tripID int64, token string) error {
	path := fmt.Sprintf("/trips/%d/invites/%s", tripID, url.PathEscape(token))
	if err := i.c.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("api.Invites.Revoke: %w", err)
	}
	return nil
}

// Participants returns everyone with access to a trip.
func (i *Invites) Participants(ctx context.Context, tripID int64) ([]domain.Participant, error) {
	var dtos []userDTO
	if err := i.c.Do(ctx, http.MethodGet, fmt.Sprintf("/trips/%d/participants", tripID), nil, &dtos); err != nil {
		return nil, fmt.Errorf("api.Invites.Participants: %w", err)
	}
	out := make([]domain.Participant, len(dtos))
	for n, d := range dtos {
		out[n] = d.toParticipant()
	}
	return out, nil
}
