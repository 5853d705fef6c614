package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tripboard/tripboard/internal/domain"
)

// Stops is the client for trip stops and their votes.
type Stops struct {
	c *Client
}

// List returns a trip's stops in their server order.
func (s *Stops) List(ctx context.Context, tripID int64) ([]domain.Stop, error) {
	var dtos []stopDTO
	if err := s.c.Do(ctx, http.MethodGet, fmt.Sprintf("/trips/%d/stops", tripID), nil, &dtos); err != nil {
		return nil, fmt.Errorf("api.Stops.List: %w", err)
	}
	stops := make([]domain.Stop, len(dtos))
	for i, d := range dtos {
		stops[i] = d.toDomain()
	}
	return stops, nil
}

// Add appends a stop to a trip.
func (s *Stops) Add(ctx context.Context, tripID int64, in domain.StopInput) (domain.Stop, error) {
	name := strings.TrimSpace(in.Name)
	req := stopRequest{
		PlaceName:   name,
		FullAddress: in.Address,
		CustomName:  name,
		Description: in.Description,
		Latitude:    in.Lat,
		Longitude:   in.Lng,
	}
	var dto stopDTO
	if err := s.c.Do(ctx, http.MethodPost, fmt.Sprintf("/trips/%d/stops", tripID), req, &dto); err != nil {
		return domain.Stop{}, fmt.Errorf("api.Stops.Add: %w", err)
	}
	return dto.toDomain(), nil
}

// Vote records the current user's LIKE or DISLIKE on a stop.
func (s *Stops) Vote(ctx context.Context, stopID int64, vote domain.VoteType) error {
	req := struct {
		VoteType domain.VoteType `json:"voteType"`
	}{VoteType: vote}
	if err := s.c.Do(ctx, http.MethodPost, fmt.Sprintf("/stops/%d/vote", stopID), req, nil); err != nil {
		return fmt.Errorf("api.Stops.Vote: %w", err)
	}
	return nil
}

// Reorder sends the complete ordered id sequence for a trip's stops.
func (s *Stops) Reorder(ctx context.Context, tripID int64, stopIDs []int64) error {
	req := struct {
		StopIDs []int64 `json:"stopIds"`
	}{StopIDs: stopIDs}
	if err := s.c.Do(ctx, http.MethodPut, fmt.Sprintf("/trips/%d/stops/reorder", tripID), req, nil); err != nil {
		return fmt.Errorf("api.Stops.Reorder: %w", err)
	}
	return nil
}

// Delete removes a stop.
func (s *Stops) Delete(ctx context.Context, stopID int64) error {
	if err := s.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/stops/%d", stopID), nil, nil); err != nil {
		return fmt.Errorf("api.Stops.Delete: %w", err)
	}
	return nil
}
