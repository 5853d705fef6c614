package domain

import (
	"net/url"
	"strings"
)

// InviteParam is the query parameter that carries an invite token in a share link.
const InviteParam = "invite"

// Invite is an opaque, server-issued token granting access to a trip, plus
// the shareable link built around it. The client never inspects the token.
type Invite struct {
	TripID int64  `json:"trip_id"`
	Token  string `json:"token"`
	Link   string `json:"link,omitempty"`
}

// InviteLink builds "<origin>/?invite=<token>".
func InviteLink(origin, token string) string {
	q := url.Values{}
	q.Set(InviteParam, token)
	return strings.TrimRight(origin, "/") + "/?" + q.Encode()
}
