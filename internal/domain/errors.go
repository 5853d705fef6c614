package domain

import "errors"

// ErrNotFound is returned when the requested resource does not exist, either
// in the local store or on the remote API (HTTP 404).
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a client-side check (missing
// required field, end date before start date, malformed email, password too
// short). No request is issued when this is returned.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized marks a rejected or missing bearer token (HTTP 401).
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned for actions the current user may not take, such
// as deleting a trip they did not create. The client enforces this for
// display purposes only; it is not a security boundary.
var ErrForbidden = errors.New("forbidden")

// ErrInvariant is returned when a local precondition does not hold, e.g. a
// reorder attempted while some stops have no identifier. The action is
// aborted before anything is sent.
var ErrInvariant = errors.New("invariant violation")

// ErrStale is returned when a completed request's result was discarded
// because a newer request for the same collection, or a different trip,
// has taken its place.
var ErrStale = errors.New("stale result")
