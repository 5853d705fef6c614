package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tripboard/tripboard/internal/domain"
)

// Trips is the client for /trips.
type Trips struct {
	c *Client
}

// List returns every trip the current user can see.
func (t *Trips) List(ctx context.Context) ([]domain.Trip, error) {
	var dtos []tripDTO
	if err := t.c.Do(ctx, http.MethodGet, "/trips", nil, &dtos); err != nil {
		return nil, fmt.Errorf("api.Trips.List: %w", err)
	}
	trips := make([]domain.Trip, len(dtos))
	for i, d := range dtos {
		trips[i] = d.toDomain()
	}
	return trips, nil
}

// Get returns one trip.
func (t *Trips) Get(ctx context.Context, id int64) (domain.Trip, error) {
	var dto tripDTO
	if err := t.c.Do(ctx, http.MethodGet, fmt.Sprintf("/trips/%d", id), nil, &dto); err != nil {
		return domain.Trip{}, fmt.Errorf("api.Trips.Get: %w", err)
	}
	return dto.toDomain(), nil
}

// Create submits a new trip. A blank description is replaced by the
// generated "Trip from A to B" text.
func (t *Trips) Create(ctx context.Context, in domain.TripInput) (domain.Trip, error) {
	var dto tripDTO
	if err := t.c.Do(ctx, http.MethodPost, "/trips", newTripRequest(in, in.DefaultDescription()), &dto); err != nil {
		return domain.Trip{}, fmt.Errorf("api.Trips.Create: %w", err)
	}
	return dto.toDomain(), nil
}

// Update overwrites a trip's editable fields.
func (t *Trips) Update(ctx context.Context, id int64, in domain.TripInput) (domain.Trip, error) {
	var dto tripDTO
	if err := t.c.Do(ctx, http.MethodPut, fmt.Sprintf("/trips/%d", id), newTripRequest(in, in.Description), &dto); err != nil {
		return domain.Trip{}, fmt.Errorf("api.Trips.Update: %w", err)
	}
	return dto.toDomain(), nil
}

// Delete removes a trip.
func (t *Trips) Delete(ctx context.Context, id int64) error {
	if err := t.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/trips/%d", id), nil, nil); err != nil {
		return fmt.Errorf("api.Trips.Delete: %w", err)
	}
	return nil
}
