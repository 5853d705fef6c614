package domain

import (
	"fmt"
	"strings"
)

// VoteType is a user's vote on a stop. The empty value means no vote.
type VoteType string

const (
	VoteNone    VoteType = ""
	VoteLike    VoteType = "LIKE"
	VoteDislike VoteType = "DISLIKE"
)

// ParseVoteType accepts "like" / "dislike" in any case.
func ParseVoteType(s string) (VoteType, error) {
	switch VoteType(strings.ToUpper(strings.TrimSpace(s))) {
	case VoteLike:
		return VoteLike, nil
	case VoteDislike:
		return VoteDislike, nil
	}
	return VoteNone, fmt.Errorf("%w: vote must be LIKE or DISLIKE, got %q", ErrValidation, s)
}

// Stop (a "pin") is a point of interest attached to a trip. A trip's stops
// form an explicit ordered sequence maintained by the client.
type Stop struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Address         string   `json:"address,omitempty"`
	Lat             float64  `json:"lat"`
	Lng             float64  `json:"lng"`
	AddedBy         string   `json:"added_by"`
	AddedByID       int64    `json:"added_by_id,omitempty"`
	LikesCount      int      `json:"likes_count"`
	DislikesCount   int      `json:"dislikes_count"`
	CurrentUserVote VoteType `json:"current_user_vote,omitempty"`
}

// StopInput is a place the user wants to add to the active trip.
type StopInput struct {
	Name        string
	Address     string
	Description string
	Lat         float64
	Lng         float64
}

// Validate requires a non-blank name.
func (in StopInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: stop name is required", ErrValidation)
	}
	return nil
}
