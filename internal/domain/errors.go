package domain

import "errors"

// ErrNotFound is returned when the requested resource (trip, item, pending
// invite, user) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a requested change would violate an
// aggregate invariant (blank name, inverted date range, item date outside
// the trip). It is never partially applied.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned by services when the access gate denies the actor.
// The gate itself never returns it; see AccessResult.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict covers duplicate registrations, duplicate memberships and lost
// optimistic-concurrency races. Only the last case is safe to retry after
// re-reading the trip.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrAuthentication is returned by login for both an unknown email and a wrong
// password, so callers cannot probe for registered accounts.
var ErrAuthentication = errors.New("invalid email or password")

// ErrUnauthenticated is returned when a use case needs a signed-in actor and
// none was supplied.
var ErrUnauthenticated = errors.New("authentication required")
