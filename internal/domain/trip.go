// Package domain contains the core types and rules of the trip planner:
// the Trip aggregate and its invariants, the invite lifecycle, the access
// gate and the itinerary view. It performs no I/O and is imported by every
// other internal package.
package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Membership binds a user to a trip with a role.
type Membership struct {
	UserID UserID
	Role   Role
}

// ItineraryItem is a place on the trip. A nil Date marks the item as
// unscheduled ("places to visit").
type ItineraryItem struct {
	ID        ItemID
	PlaceName string
	Date      *time.Time
	Notes     string
	Latitude  *float64
	Longitude *float64
}

// Trip is the aggregate root. Memberships, invites and items are only
// changed through Trip methods, each of which returns a new, fully validated
// Trip and leaves the receiver untouched.
type Trip struct {
	ID          TripID
	Name        string
	StartDate   time.Time // date-only, UTC midnight
	EndDate     time.Time // date-only, UTC midnight
	Visibility  Visibility
	Memberships []Membership
	Invites     []Invite
	Items       []ItineraryItem

	// Version is the optimistic-concurrency token. Repositories bump it on
	// every successful save and reject saves carrying a stale value.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TripSummary is the list view of a trip from one member's point of view.
type TripSummary struct {
	ID         TripID
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	Visibility Visibility
	Role       Role
}

// NewTrip builds a trip owned by owner. It fails with ErrValidation when the
// name is blank, startDate is after endDate, or visibility is unknown.
func NewTrip(owner UserID, name string, startDate, endDate time.Time, visibility Visibility) (Trip, error) {
	if visibility == "" {
		visibility = VisibilityPrivate
	}
	t := Trip{
		ID:          NewTripID(),
		Name:        strings.TrimSpace(name),
		StartDate:   CivilDate(startDate),
		EndDate:     CivilDate(endDate),
		Visibility:  visibility,
		Memberships: []Membership{{UserID: owner, Role: RoleOwner}},
		Invites:     []Invite{},
		Items:       []ItineraryItem{},
	}
	if err := t.Validate(); err != nil {
		return Trip{}, err
	}
	return t, nil
}

// CivilDate drops the clock part of t and returns midnight UTC of the same
// calendar day.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate checks every invariant of the aggregate.
func (t Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if t.StartDate.After(t.EndDate) {
		return fmt.Errorf("%w: start_date must not be after end_date", ErrValidation)
	}
	if t.Visibility != VisibilityPrivate && t.Visibility != VisibilityPublic {
		return fmt.Errorf("%w: unknown visibility %q", ErrValidation, t.Visibility)
	}
	if err := t.validateMemberships(); err != nil {
		return err
	}
	if err := t.validateInvites(); err != nil {
		return err
	}
	seen := make(map[ItemID]bool, len(t.Items))
	for _, it := range t.Items {
		if seen[it.ID] {
			return fmt.Errorf("%w: duplicate item %s", ErrValidation, it.ID)
		}
		seen[it.ID] = true
		if err := t.validateItem(it); err != nil {
			return err
		}
	}
	return nil
}

func (t Trip) validateMemberships() error {
	if len(t.Memberships) == 0 {
		return fmt.Errorf("%w: trip must have at least one member", ErrValidation)
	}
	owners := 0
	seen := make(map[UserID]bool, len(t.Memberships))
	for _, m := range t.Memberships {
		if seen[m.UserID] {
			return fmt.Errorf("%w: duplicate membership for user %s", ErrValidation, m.UserID)
		}
		seen[m.UserID] = true
		if !m.Role.IsMemberRole() {
			return fmt.Errorf("%w: invalid role %s for user %s", ErrValidation, m.Role, m.UserID)
		}
		if m.Role == RoleOwner {
			owners++
		}
	}
	if owners == 0 {
		return fmt.Errorf("%w: trip must keep at least one owner", ErrValidation)
	}
	return nil
}

func (t Trip) validateInvites() error {
	pending := make(map[string]bool)
	for _, inv := range t.Invites {
		if inv.Email != NormalizeEmail(inv.Email) || inv.Email == "" {
			return fmt.Errorf("%w: invite email %q is not normalized", ErrValidation, inv.Email)
		}
		if !inv.Role.IsMemberRole() {
			return fmt.Errorf("%w: invalid invite role %s", ErrValidation, inv.Role)
		}
		if inv.Status != InviteStatusPending {
			continue
		}
		if pending[inv.Email] {
			return fmt.Errorf("%w: more than one pending invite for %s", ErrValidation, inv.Email)
		}
		pending[inv.Email] = true
	}
	return nil
}

func (t Trip) validateItem(it ItineraryItem) error {
	if strings.TrimSpace(it.PlaceName) == "" {
		return fmt.Errorf("%w: place_name is required", ErrValidation)
	}
	if it.Date != nil && !t.Contains(*it.Date) {
		return fmt.Errorf("%w: date %s is outside the trip (%s to %s)", ErrValidation,
			it.Date.Format(time.DateOnly), t.StartDate.Format(time.DateOnly), t.EndDate.Format(time.DateOnly))
	}
	if it.Latitude != nil && (*it.Latitude < -90 || *it.Latitude > 90) {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if it.Longitude != nil && (*it.Longitude < -180 || *it.Longitude > 180) {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	return nil
}

// Contains reports whether the calendar day of d lies within the trip.
func (t Trip) Contains(d time.Time) bool {
	d = CivilDate(d)
	return !d.Before(t.StartDate) && !d.After(t.EndDate)
}

// Member returns the membership of userID, if any.
func (t Trip) Member(userID UserID) (Membership, bool) {
	for _, m := range t.Memberships {
		if m.UserID == userID {
			return m, true
		}
	}
	return Membership{}, false
}

// Item returns the item with the given id, if any.
func (t Trip) Item(id ItemID) (ItineraryItem, bool) {
	i := t.itemIndex(id)
	if i < 0 {
		return ItineraryItem{}, false
	}
	return t.Items[i], true
}

func (t Trip) itemIndex(id ItemID) int {
	return slices.IndexFunc(t.Items, func(it ItineraryItem) bool { return it.ID == id })
}

// clone copies every slice so mutations never alias the receiver.
func (t Trip) clone() Trip {
	c := t
	c.Memberships = slices.Clone(t.Memberships)
	c.Invites = slices.Clone(t.Invites)
	c.Items = make([]ItineraryItem, len(t.Items))
	for i, it := range t.Items {
		c.Items[i] = it.clone()
	}
	return c
}

func (it ItineraryItem) clone() ItineraryItem {
	if it.Date != nil {
		d := *it.Date
		it.Date = &d
	}
	if it.Latitude != nil {
		v := *it.Latitude
		it.Latitude = &v
	}
	if it.Longitude != nil {
		v := *it.Longitude
		it.Longitude = &v
	}
	return it
}

// commit validates next and returns it, or the zero Trip and the violation.
func commit(next Trip) (Trip, error) {
	if err := next.Validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// UpdateDetails renames and reschedules the trip. Every scheduled item must
// still fall inside the new bounds; nothing is clamped.
func (t Trip) UpdateDetails(name string, startDate, endDate time.Time) (Trip, error) {
	next := t.clone()
	next.Name = strings.TrimSpace(name)
	next.StartDate = CivilDate(startDate)
	next.EndDate = CivilDate(endDate)
	return commit(next)
}

// ChangeVisibility sets the trip's visibility.
func (t Trip) ChangeVisibility(v Visibility) (Trip, error) {
	next := t.clone()
	next.Visibility = v
	return commit(next)
}

// AddItineraryItem appends item. A zero item ID is replaced with a new one.
func (t Trip) AddItineraryItem(item ItineraryItem) (Trip, ItineraryItem, error) {
	item = normalizeItem(item)
	if item.ID.IsZero() {
		item.ID = NewItemID()
	}
	next := t.clone()
	next.Items = append(next.Items, item)
	next, err := commit(next)
	if err != nil {
		return Trip{}, ItineraryItem{}, err
	}
	return next, item, nil
}

// UpdateItineraryItem replaces the item with the same ID, keeping its position.
func (t Trip) UpdateItineraryItem(item ItineraryItem) (Trip, error) {
	i := t.itemIndex(item.ID)
	if i < 0 {
		return Trip{}, fmt.Errorf("itinerary item %s: %w", item.ID, ErrNotFound)
	}
	next := t.clone()
	next.Items[i] = normalizeItem(item)
	return commit(next)
}

// RemoveItineraryItem removes the item with the given ID. Removing an id
// that is not present fails with ErrNotFound, including a second removal.
func (t Trip) RemoveItineraryItem(id ItemID) (Trip, error) {
	i := t.itemIndex(id)
	if i < 0 {
		return Trip{}, fmt.Errorf("itinerary item %s: %w", id, ErrNotFound)
	}
	next := t.clone()
	next.Items = slices.Delete(next.Items, i, i+1)
	return commit(next)
}

func normalizeItem(it ItineraryItem) ItineraryItem {
	it = it.clone()
	it.PlaceName = strings.TrimSpace(it.PlaceName)
	if it.Date != nil {
		d := CivilDate(*it.Date)
		it.Date = &d
	}
	return it
}

// ChangeMemberRole sets the role of an existing member. Demoting the last
// owner fails with ErrValidation.
func (t Trip) ChangeMemberRole(userID UserID, role Role) (Trip, error) {
	if !role.IsMemberRole() {
		return Trip{}, fmt.Errorf("%w: invalid role %s", ErrValidation, role)
	}
	i := slices.IndexFunc(t.Memberships, func(m Membership) bool { return m.UserID == userID })
	if i < 0 {
		return Trip{}, fmt.Errorf("member %s: %w", userID, ErrNotFound)
	}
	next := t.clone()
	next.Memberships[i].Role = role
	return commit(next)
}

// RemoveMember drops a membership. Removing the last owner fails with
// ErrValidation.
func (t Trip) RemoveMember(userID UserID) (Trip, error) {
	i := slices.IndexFunc(t.Memberships, func(m Membership) bool { return m.UserID == userID })
	if i < 0 {
		return Trip{}, fmt.Errorf("member %s: %w", userID, ErrNotFound)
	}
	next := t.clone()
	next.Memberships = slices.Delete(next.Memberships, i, i+1)
	return commit(next)
}
