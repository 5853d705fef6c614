package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tripboard/tripboard/internal/domain"
)

// wireDate decodes a calendar date that may arrive as "2006-01-02" or as a
// full timestamp, and encodes as "2006-01-02".
type wireDate struct {
	openapi_types.Date
}

func (d *wireDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// wireTime decodes RFC 3339 timestamps and the zone-less
// "2006-01-02T15:04:05" form some backends emit; zone-less values are UTC.
type wireTime struct {
	time.Time
}

var wireTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"}

func (w *wireTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		w.Time = time.Time{}
		return nil
	}
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			w.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func dateOf(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: t}
}

// looseFloat accepts a JSON number, a numeric string, or null.
type looseFloat struct {
	v  float64
	ok bool
}

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = looseFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*f = looseFloat{v: v, ok: true}
	return nil
}

type userDTO struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (u *userDTO) toDomain() *domain.User {
	if u == nil {
		return nil
	}
	return &domain.User{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func (u userDTO) toParticipant() domain.Participant {
	return domain.Participant{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// --- trips ------------------------------------------------------------------

type tripDTO struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	Destination          string     `json:"destination"`
	StartingPoint        string     `json:"startingPoint"`
	StartDate            wireDate   `json:"startDate"`
	EndDate              wireDate   `json:"endDate"`
	StartLatitude        looseFloat `json:"startLatitude"`
	StartLongitude       looseFloat `json:"startLongitude"`
	DestinationLatitude  looseFloat `json:"destinationLatitude"`
	DestinationLongitude looseFloat `json:"destinationLongitude"`
	CreatedBy            *userDTO   `json:"createdBy"`
	CreatedAt            wireTime   `json:"createdAt"`
	UpdatedAt            wireTime   `json:"updatedAt"`
}

func coords(lat, lng looseFloat) *domain.Coordinates {
	if !lat.ok || !lng.ok {
		return nil
	}
	return &domain.Coordinates{Lng: lng.v, Lat: lat.v}
}

func (t tripDTO) toDomain() domain.Trip {
	return domain.Trip{
		ID:               t.ID,
		Name:             t.Name,
		Description:      t.Description,
		Destination:      t.Destination,
		StartingPoint:    t.StartingPoint,
		StartDate:        t.StartDate.Time,
		EndDate:          t.EndDate.Time,
		StartCoordinates: coords(t.StartLatitude, t.StartLongitude),
		DestCoordinates:  coords(t.DestinationLatitude, t.DestinationLongitude),
		CreatedBy:        t.CreatedBy.toDomain(),
		CreatedAt:        t.CreatedAt.Time,
		UpdatedAt:        t.UpdatedAt.Time,
	}
}

type tripRequest struct {
	Name                 string             `json:"name"`
	Description          string             `json:"description"`
	Destination          string             `json:"destination"`
	StartingPoint        string             `json:"startingPoint"`
	StartDate            openapi_types.Date `json:"startDate"`
	EndDate              openapi_types.Date `json:"endDate"`
	StartLatitude        *float64           `json:"startLatitude"`
	StartLongitude       *float64           `json:"startLongitude"`
	DestinationLatitude  *float64           `json:"destinationLatitude"`
	DestinationLongitude *float64           `json:"destinationLongitude"`
}

func newTripRequest(in domain.TripInput, description string) tripRequest {
	req := tripRequest{
		Name:          strings.TrimSpace(in.Name),
		Description:   description,
		Destination:   strings.TrimSpace(in.Destination),
		StartingPoint: strings.TrimSpace(in.StartingPoint),
		StartDate:     dateOf(in.StartDate),
		EndDate:       dateOf(in.EndDate),
	}
	if c := in.StartCoordinates; c != nil {
		req.StartLatitude, req.StartLongitude = &c.Lat, &c.Lng
	}
	if c := in.DestCoordinates; c != nil {
		req.DestinationLatitude, req.DestinationLongitude = &c.Lat, &c.Lng
	}
	return req
}

// --- stops ------------------------------------------------------------------

type stopDTO struct {
	ID              int64      `json:"id"`
	PlaceName       string     `json:"placeName"`
	CustomName      string     `json:"customName"`
	Description     string     `json:"description"`
	FullAddress     string     `json:"fullAddress"`
	Latitude        looseFloat `json:"latitude"`
	Longitude       looseFloat `json:"longitude"`
	AddedBy         *userDTO   `json:"addedBy"`
	LikesCount      int        `json:"likesCount"`
	DislikesCount   int        `json:"dislikesCount"`
	CurrentUserVote string     `json:"currentUserVote"`
}

func (s stopDTO) toDomain() domain.Stop {
	name := s.CustomName
	if name == "" {
		name = s.PlaceName
	}
	stop := domain.Stop{
		ID:              s.ID,
		Name:            name,
		Description:     s.Description,
		Address:         s.FullAddress,
		Lat:             s.Latitude.v,
		Lng:             s.Longitude.v,
		AddedBy:         "Unknown",
		LikesCount:      s.LikesCount,
		DislikesCount:   s.DislikesCount,
		CurrentUserVote: domain.VoteType(strings.ToUpper(s.CurrentUserVote)),
	}
	if s.AddedBy != nil {
		stop.AddedBy = s.AddedBy.toDomain().FullName()
		stop.AddedByID = s.AddedBy.ID
	}
	return stop
}

type stopRequest struct {
	PlaceName   string  `json:"placeName"`
	FullAddress string  `json:"fullAddress"`
	CustomName  string  `json:"customName"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// --- tasks ------------------------------------------------------------------

type taskDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	AssignedTo  *userDTO  `json:"assignedTo"`
	DueDate     *wireDate `json:"dueDate"`
	CreatedAt   wireTime  `json:"createdAt"`
}

func (t taskDTO) toDomain() domain.Task {
	task := domain.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      domain.TaskStatus(t.Status),
		AssignedTo:  t.AssignedTo.toDomain(),
		CreatedAt:   t.CreatedAt.Time,
	}
	if t.DueDate != nil && !t.DueDate.Time.IsZero() {
		due := t.DueDate.Time
		task.DueDate = &due
	}
	return task
}

type taskRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       domain.TaskStatus   `json:"status"`
	AssignedToID int64               `json:"assignedToId"`
	DueDate      *openapi_types.Date `json:"dueDate"`
}

type taskStatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// --- expenses ---------------------------------------------------------------

type expenseDTO struct {
	ID          int64      `json:"id"`
	Amount      looseFloat `json:"amount"`
	Currency    string     `json:"currency"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	ExpenseDate wireDate   `json:"expenseDate"`
	PaidBy      *userDTO   `json:"paidBy"`
	CreatedAt   wireTime   `json:"createdAt"`
}

func (e expenseDTO) toDomain() domain.Expense {
	return domain.Expense{
		ID:          e.ID,
		Amount:      e.Amount.v,
		Currency:    e.Currency,
		Description: e.Description,
		Category:    e.Category,
		ExpenseDate: e.ExpenseDate.Time,
		PaidBy:      e.PaidBy.toDomain(),
		CreatedAt:   e.CreatedAt.Time,
	}
}

type expenseRequest struct {
	Amount      float64            `json:"amount"`
	Currency    string             `json:"currency"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	ExpenseDate openapi_types.Date `json:"expenseDate"`
}

type totalDTO struct {
	Total looseFloat `json:"total"`
}

// --- invites and auth -------------------------------------------------------

type inviteDTO struct {
	Token       string `json:"token"`
	InviteToken string `json:"inviteToken"`
	TripID      int64  `json:"tripId"`
}

func (i inviteDTO) token() string {
	if i.Token != "" {
		return i.Token
	}
	return i.InviteToken
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	InviteToken string `json:"inviteToken,omitempty"`
}

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	InviteToken string `json:"inviteToken,omitempty"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  *userDTO `json:"user"`
}
