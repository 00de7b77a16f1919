package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the services.
const (
	ActionTripCreated           = "TRIP_CREATED"
	ActionTripUpdated           = "TRIP_UPDATED"
	ActionTripVisibilityChanged = "TRIP_VISIBILITY_CHANGED"
	ActionTripDeleted           = "TRIP_DELETED"
	ActionItemAdded             = "ITINERARY_ITEM_ADDED"
	ActionItemUpdated           = "ITINERARY_ITEM_UPDATED"
	ActionItemRemoved           = "ITINERARY_ITEM_REMOVED"
	ActionInviteCreated         = "INVITE_CREATED"
	ActionInviteRevoked         = "INVITE_REVOKED"
	ActionInviteAccepted        = "INVITE_ACCEPTED"
	ActionMemberRoleChanged     = "MEMBER_ROLE_CHANGED"
	ActionMemberRemoved         = "MEMBER_REMOVED"
	ActionUserRegistered        = "USER_REGISTERED"
)

// Audit entity types.
const (
	EntityTrip = "trip"
	EntityUser = "user"
)

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	ID         uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	ActorID    *UserID
	Before     Snapshot
	After      Snapshot
	Metadata   map[string]string
	CreatedAt  time.Time
}

const (
	DefaultAuditLimit = 100
	MaxAuditLimit     = 500
)

// AuditFilter selects audit events. Empty fields match everything.
type AuditFilter struct {
	EntityType string
	EntityID   string
	ActorID    *UserID
	Limit      int
}

// NewAuditFilter builds a filter with limit clamped into [1, MaxAuditLimit].
// A nil limit falls back to DefaultAuditLimit.
func NewAuditFilter(entityType, entityID string, actor *UserID, limit *int) AuditFilter {
	f := AuditFilter{EntityType: entityType, EntityID: entityID, ActorID: actor, Limit: DefaultAuditLimit}
	if limit != nil {
		f.Limit = ClampAuditLimit(*limit)
	}
	return f
}

// ClampAuditLimit clamps n into [1, MaxAuditLimit].
func ClampAuditLimit(n int) int {
	return min(max(n, 1), MaxAuditLimit)
}
