package domain

import "fmt"

// AccessOutcome tags an AccessResult.
type AccessOutcome int

const (
	AccessGranted AccessOutcome = iota + 1
	AccessNotFound
	AccessForbidden
)

func (o AccessOutcome) String() string {
	switch o {
	case AccessGranted:
		return "granted"
	case AccessNotFound:
		return "not_found"
	case AccessForbidden:
		return "forbidden"
	}
	return fmt.Sprintf("AccessOutcome(%d)", int(o))
}

// AccessResult is the outcome of Authorize. Only a granted result carries a
// trip. NotFound and Forbidden are kept distinct; the caller decides how
// much of that distinction to reveal.
type AccessResult struct {
	outcome AccessOutcome
	trip    Trip
}

// Outcome returns the result's tag.
func (r AccessResult) Outcome() AccessOutcome { return r.outcome }

// Trip returns the trip of a granted result.
func (r AccessResult) Trip() (Trip, bool) {
	if r.outcome != AccessGranted {
		return Trip{}, false
	}
	return r.trip, true
}

// Match calls exactly one of the three handlers according to the outcome.
// Every caller must supply all three, so neither NotFound nor Forbidden can
// fall through to a default.
func (r AccessResult) Match(granted func(Trip) error, notFound func() error, forbidden func() error) error {
	switch r.outcome {
	case AccessGranted:
		return granted(r.trip)
	case AccessNotFound:
		return notFound()
	case AccessForbidden:
		return forbidden()
	}
	return fmt.Errorf("domain: unset access result %s", r.outcome)
}

// Authorize decides whether actor may act on trip at the required level.
//
// A nil trip means the repository found nothing and always yields NotFound.
// A public trip grants RoleNone to anyone, including a nil (anonymous)
// actor. Otherwise the actor must be a member whose role satisfies required.
func Authorize(trip *Trip, actor *UserID, required Role) AccessResult {
	if trip == nil {
		return AccessResult{outcome: AccessNotFound}
	}
	if trip.Visibility == VisibilityPublic && required == RoleNone {
		return AccessResult{outcome: AccessGranted, trip: *trip}
	}
	if actor == nil {
		return AccessResult{outcome: AccessForbidden}
	}
	m, ok := trip.Member(*actor)
	if !ok || !m.Role.Satisfies(required) {
		return AccessResult{outcome: AccessForbidden}
	}
	return AccessResult{outcome: AccessGranted, trip: *trip}
}
