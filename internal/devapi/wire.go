package devapi

import (
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tripboard/tripboard/internal/domain"
)

// Response and request bodies. Field names follow the remote API's
// camelCase JSON.

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func userToResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

type registerRequest struct {
	Email       openapi_types.Email `json:"email"`
	Password    string              `json:"password"`
	FirstName   string              `json:"firstName"`
	LastName    string              `json:"lastName"`
	InviteToken string              `json:"inviteToken"`
}

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	InviteToken string `json:"inviteToken"`
}

type authResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user"`
}

// --- trips ------------------------------------------------------------------

type tripResponse struct {
	ID                   int64              `json:"id"`
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
	CreatedBy            *userResponse      `json:"createdBy"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

func tripToResponse(t domain.Trip) tripResponse {
	r := tripResponse{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		Destination:   t.Destination,
		StartingPoint: t.StartingPoint,
		StartDate:     openapi_types.Date{Time: t.StartDate},
		EndDate:       openapi_types.Date{Time: t.EndDate},
		CreatedBy:     userToResponse(t.CreatedBy),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if c := t.StartCoordinates; c != nil {
		r.StartLatitude, r.StartLongitude = &c.Lat, &c.Lng
	}
	if c := t.DestCoordinates; c != nil {
		r.DestinationLatitude, r.DestinationLongitude = &c.Lat, &c.Lng
	}
	return r
}

type tripRequest struct {
	Name                 string              `json:"name"`
	Description          string              `json:"description"`
	Destination          string              `json:"destination"`
	StartingPoint        string              `json:"startingPoint"`
	StartDate            *openapi_types.Date `json:"startDate"`
	EndDate              *openapi_types.Date `json:"endDate"`
	StartLatitude        *float64            `json:"startLatitude"`
	StartLongitude       *float64            `json:"startLongitude"`
	DestinationLatitude  *float64            `json:"destinationLatitude"`
	DestinationLongitude *float64            `json:"destinationLongitude"`
}

func (r tripRequest) toInput() domain.TripInput {
	in := domain.TripInput{
		Name:          r.Name,
		Description:   r.Description,
		Destination:   r.Destination,
		StartingPoint: r.StartingPoint,
	}
	if r.StartDate != nil {
		in.StartDate = r.StartDate.Time
	}
	if r.EndDate != nil {
		in.EndDate = r.EndDate.Time
	}
	if r.StartLatitude != nil && r.StartLongitude != nil {
		in.StartCoordinates = &domain.Coordinates{Lat: *r.StartLatitude, Lng: *r.StartLongitude}
	}
	if r.DestinationLatitude != nil && r.DestinationLongitude != nil {
		in.DestCoordinates = &domain.Coordinates{Lat: *r.DestinationLatitude, Lng: *r.DestinationLongitude}
	}
	return in
}

// --- stops ------------------------------------------------------------------

type stopResponse struct {
	ID              int64         `json:"id"`
	PlaceName       string        `json:"placeName"`
	CustomName      string        `json:"customName"`
	Description     string        `json:"description"`
	FullAddress     string        `json:"fullAddress"`
	Latitude        float64       `json:"latitude"`
	Longitude       float64       `json:"longitude"`
	AddedBy         *userResponse `json:"addedBy"`
	LikesCount      int           `json:"likesCount"`
	DislikesCount   int           `json:"dislikesCount"`
	CurrentUserVote *string       `json:"currentUserVote"`
}

func stopToResponse(st domain.Stop, addedBy *domain.User) stopResponse {
	r := stopResponse{
		ID:            st.ID,
		PlaceName:     st.Name,
		CustomName:    st.Name,
		Description:   st.Description,
		FullAddress:   st.Address,
		Latitude:      st.Lat,
		Longitude:     st.Lng,
		AddedBy:       userToResponse(addedBy),
		LikesCount:    st.LikesCount,
		DislikesCount: st.DislikesCount,
	}
	if st.CurrentUserVote != domain.VoteNone {
		v := string(st.CurrentUserVote)
		r.CurrentUserVote = &v
	}
	return r
}

type stopRequest struct {
	PlaceName   string  `json:"placeName"`
	CustomName  string  `json:"customName"`
	FullAddress string  `json:"fullAddress"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func (r stopRequest) toInput() domain.StopInput {
	name := r.CustomName
	if strings.TrimSpace(name) == "" {
		name = r.PlaceName
	}
	return domain.StopInput{
		Name:        name,
		Address:     r.FullAddress,
		Description: r.Description,
		Lat:         r.Latitude,
		Lng:         r.Longitude,
	}
}

type voteRequest struct {
	VoteType string `json:"voteType"`
}

type reorderRequest struct {
	StopIDs []int64 `json:"stopIds"`
}

// --- tasks ------------------------------------------------------------------

type taskResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	AssignedTo  *userResponse       `json:"assignedTo"`
	DueDate     *openapi_types.Date `json:"dueDate"`
	CreatedAt   time.Time           `json:"createdAt"`
}

func taskToResponse(t domain.Task) taskResponse {
	r := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		AssignedTo:  userToResponse(t.AssignedTo),
		CreatedAt:   t.CreatedAt,
	}
	if t.DueDate != nil {
		r.DueDate = &openapi_types.Date{Time: *t.DueDate}
	}
	return r
}

type taskRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       string              `json:"status"`
	AssignedToID int64               `json:"assignedToId"`
	DueDate      *openapi_types.Date `json:"dueDate"`
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

// --- expenses ---------------------------------------------------------------

type expenseResponse struct {
	ID          int64              `json:"id"`
	Amount      float64            `json:"amount"`
	Currency    string             `json:"currency"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	ExpenseDate openapi_types.Date `json:"expenseDate"`
	PaidBy      *userResponse      `json:"paidBy"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func expenseToResponse(e domain.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Description: e.Description,
		Category:    e.Category,
		ExpenseDate: openapi_types.Date{Time: e.ExpenseDate},
		PaidBy:      userToResponse(e.PaidBy),
		CreatedAt:   e.CreatedAt,
	}
}

type expenseRequest struct {
	Amount      float64             `json:"amount"`
	Currency    string              `json:"currency"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	ExpenseDate *openapi_types.Date `json:"expenseDate"`
}

func (r expenseRequest) toInput() domain.ExpenseInput {
	in := domain.ExpenseInput{
		Amount:      r.Amount,
		Currency:    r.Currency,
		Description: r.Description,
		Category:    r.Category,
	}
	if r.ExpenseDate != nil {
		in.ExpenseDate = r.ExpenseDate.Time
	}
	return in
}

type totalResponse struct {
	Total float64 `json:"total"`
}

// --- invites ----------------------------------------------------------------

type inviteResponse struct {
	Token    string `json:"token"`
	TripID   int64  `json:"tripId"`
	TripName string `json:"tripName,omitempty"`
}
