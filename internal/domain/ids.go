package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// TripID identifies a Trip aggregate.
type TripID uuid.UUID

// UserID identifies a registered user.
type UserID uuid.UUID

// InviteID identifies an invite inside a trip.
type InviteID uuid.UUID

// ItemID identifies an itinerary item inside a trip.
type ItemID uuid.UUID

// NewTripID returns a random TripID.
func NewTripID() TripID { return TripID(uuid.New()) }

// NewUserID returns a random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewInviteID returns a random InviteID.
func NewInviteID() InviteID { return InviteID(uuid.New()) }

// NewItemID returns a random ItemID.
func NewItemID() ItemID { return ItemID(uuid.New()) }

// ParseTripID parses the canonical string form of a TripID.
// Malformed input returns an error wrapping ErrValidation.
func ParseTripID(s string) (TripID, error) { return parseID[TripID]("trip", s) }

// ParseUserID parses the canonical string form of a UserID.
func ParseUserID(s string) (UserID, error) { return parseID[UserID]("user", s) }

// ParseInviteID parses the canonical string form of an InviteID.
func ParseInviteID(s string) (InviteID, error) { return parseID[InviteID]("invite", s) }

// ParseItemID parses the canonical string form of an ItemID.
func ParseItemID(s string) (ItemID, error) { return parseID[ItemID]("item", s) }

func parseID[T ~[16]byte](kind, s string) (T, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return T{}, fmt.Errorf("%w: invalid %s id %q", ErrValidation, kind, s)
	}
	return T(u), nil
}

func (id TripID) String() string   { return uuid.UUID(id).String() }
func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id InviteID) String() string { return uuid.UUID(id).String() }
func (id ItemID) String() string   { return uuid.UUID(id).String() }

// IsZero reports whether id is the zero value.
func (id ItemID) IsZero() bool { return id == ItemID{} }

// IsZero reports whether id is the zero value.
func (id InviteID) IsZero() bool { return id == InviteID{} }

// MarshalText lets ids serialise as strings in JSON bodies and map keys.
func (id TripID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id UserID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id InviteID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ItemID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *TripID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseTripID(string(b))
	return err
}

func (id *UserID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseUserID(string(b))
	return err
}

func (id *InviteID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseInviteID(string(b))
	return err
}

func (id *ItemID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseItemID(string(b))
	return err
}
