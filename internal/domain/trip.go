// Package domain contains the core data types for the Tripboard client.
// This package has no I/O and is imported by every other internal package
// (api, repo, session, workspace, board, ledger, cli, devapi).
package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used on the wire and on the command line.
const DateLayout = "2006-01-02"

// Coordinates is a longitude/latitude pair, in that order, matching the
// geocoder's GeoJSON ordering.
type Coordinates struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Trip is the top-level aggregate the workspace is organised around; stops,
// participants, tasks and expenses all belong to a trip.
type Trip struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description,omitempty"`
	Destination      string       `json:"destination"`
	StartingPoint    string       `json:"starting_point"`
	StartDate        time.Time    `json:"start_date"`
	EndDate          time.Time    `json:"end_date"`
	StartCoordinates *Coordinates `json:"start_coordinates,omitempty"`
	DestCoordinates  *Coordinates `json:"dest_coordinates,omitempty"`
	CreatedBy        *User        `json:"created_by,omitempty"`

	// ShareCode is a display-only code synthesised by the client. It is
	// never sent to the server.
	ShareCode string `json:"share_code"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatedByUser reports whether userID created the trip.
func (t Trip) CreatedByUser(userID int64) bool {
	return t.CreatedBy != nil && t.CreatedBy.ID == userID
}

// CreatorName returns the creator's display name, or "Unknown".
func (t Trip) CreatorName() string {
	if t.CreatedBy == nil {
		return "Unknown"
	}
	return t.CreatedBy.FullName()
}

// TripInput carries the fields of the create-trip form and the edit modal.
type TripInput struct {
	Name             string
	Description      string
	StartingPoint    string
	Destination      string
	StartDate        time.Time
	EndDate          time.Time
	StartCoordinates *Coordinates
	DestCoordinates  *Coordinates
}

// Validate enforces the form rules checked before any request is issued.
//   - Name, starting point and destination must be non-blank.
//   - Both dates must be set.
//   - EndDate must not be before StartDate.
func (in TripInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: please enter a trip name", ErrValidation)
	case strings.TrimSpace(in.StartingPoint) == "":
		return fmt.Errorf("%w: please enter a starting point", ErrValidation)
	case strings.TrimSpace(in.Destination) == "":
		return fmt.Errorf("%w: please enter a destination", ErrValidation)
	case in.StartDate.IsZero():
		return fmt.Errorf("%w: please select a start date", ErrValidation)
	case in.EndDate.IsZero():
		return fmt.Errorf("%w: please select an end date", ErrValidation)
	case in.EndDate.Before(in.StartDate):
		return fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}
	return nil
}

// DefaultDescription returns the description to submit on create: the
// user's text, or a generated "Trip from A to B" when it is blank.
func (in TripInput) DefaultDescription() string {
	if d := strings.TrimSpace(in.Description); d != "" {
		return d
	}
	start := strings.TrimSpace(in.StartingPoint)
	if start == "" {
		start = "Your location"
	}
	return fmt.Sprintf("Trip from %s to %s", start, strings.TrimSpace(in.Destination))
}

// ParseDate parses a calendar date in DateLayout. An empty string yields the
// zero time so that Validate can report the missing field.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	// Servers sometimes send full timestamps; only the date part matters.
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return t, nil
}
