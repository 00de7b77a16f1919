package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/repo"
)

// TripInput carries the editable trip details.
type TripInput struct {
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	Visibility domain.Visibility
}

// TripService implements the trip lifecycle and member management.
type TripService struct {
	gate  tripGate
	trips repo.TripRepo
	audit *AuditService
	log   *slog.Logger
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(trips repo.TripRepo, audit *AuditService, log *slog.Logger) *TripService {
	log = loggerOrDefault(log)
	return &TripService{
		gate:  tripGate{trips: trips, audit: audit, log: log},
		trips: trips,
		audit: audit,
		log:   log,
	}
}

// Create makes the actor the sole owner of a new trip.
func (s *TripService) Create(ctx context.Context, actor *domain.UserID, in TripInput) (domain.Trip, error) {
	if err := requireActor(actor); err != nil {
		return domain.Trip{}, err
	}
	trip, err := domain.NewTrip(*actor, in.Name, in.StartDate, in.EndDate, in.Visibility)
	if err != nil {
		return domain.Trip{}, err
	}
	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Action:     domain.ActionTripCreated,
		EntityType: domain.EntityTrip,
		EntityID:   created.ID.String(),
		ActorID:    actor,
		After:      created.Snapshot(),
	})
	s.log.InfoContext(ctx, "trip created", "trip_id", created.ID.String(), "owner_id", actor.String())
	return created, nil
}

// Get returns a trip the actor may read. Public trips are readable by anyone.
func (s *TripService) Get(ctx context.Context, actor *domain.UserID, id domain.TripID) (domain.Trip, error) {
	return s.gate.load(ctx, id, actor, domain.RoleNone)
}

// ListMine returns one page of the trips the actor is a member of.
func (s *TripService) ListMine(ctx context.Context, actor *domain.UserID, p domain.PaginationParams) ([]domain.TripSummary, int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, 0, err
	}
	trips, total, err := s.trips.ListByMember(ctx, *actor, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListMine: %w", err)
	}
	return trips, total, nil
}

// UpdateDetails changes the name and date range. Requires Editor.
// Shrinking the range is rejected while dated items fall outside it.
func (s *TripService) UpdateDetails(ctx context.Context, actor *domain.UserID, id domain.TripID, name string, start, end time.Time) (domain.Trip, error) {
	return s.gate.mutate(ctx, id, actor, change{
		action:   domain.ActionTripUpdated,
		required: domain.RoleEditor,
		apply: func(t domain.Trip) (domain.Trip, error) {
			return t.UpdateDetails(name, start, end)
		},
	})
}

// ChangeVisibility switches between private and public. Requires Owner.
func (s *TripService) ChangeVisibility(ctx context.Context, actor *domain.UserID, id domain.TripID, v domain.Visibility) (domain.Trip, error) {
	return s.gate.mutate(ctx, id, actor, change{
		action:   domain.ActionTripVisibilityChanged,
		required: domain.RoleOwner,
		apply: func(t domain.Trip) (domain.Trip, error) {
			return t.ChangeVisibility(v)
		},
		metadata: map[string]string{"visibility": string(v)},
	})
}

// Delete removes the trip and everything it owns. Requires Owner.
func (s *TripService) Delete(ctx context.Context, actor *domain.UserID, id domain.TripID) error {
	trip, err := s.gate.load(ctx, id, actor, domain.RoleOwner)
	if err != nil {
		return err
	}
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Action:     domain.ActionTripDeleted,
		EntityType: domain.EntityTrip,
		EntityID:   id.String(),
		ActorID:    actor,
		Before:     trip.Snapshot(),
	})
	s.log.InfoContext(ctx, "trip deleted", "trip_id", id.String())
	return nil
}

// ChangeMemberRole sets a member's role. Requires Owner. The last owner
// cannot be demoted.
func (s *TripService) ChangeMemberRole(ctx context.Context, actor *domain.UserID, id domain.TripID, member domain.UserID, role domain.Role) (domain.Trip, error) {
	return s.gate.mutate(ctx, id, actor, change{
		action:   domain.ActionMemberRoleChanged,
		required: domain.RoleOwner,
		apply: func(t domain.Trip) (domain.Trip, error) {
			return t.ChangeMemberRole(member, role)
		},
		metadata: map[string]string{"user_id": member.String(), "role": role.String()},
	})
}

// RemoveMember drops a member from the trip. Owners may remove anyone;
// any member may remove themselves. The last owner cannot leave.
func (s *TripService) RemoveMember(ctx context.Context, actor *domain.UserID, id domain.TripID, member domain.UserID) (domain.Trip, error) {
	required := domain.RoleOwner
	if actor != nil && *actor == member {
		required = domain.RoleViewer
	}
	return s.gate.mutate(ctx, id, actor, change{
		action:   domain.ActionMemberRemoved,
		required: required,
		apply: func(t domain.Trip) (domain.Trip, error) {
			return t.RemoveMember(member)
		},
		metadata: map[string]string{"user_id": member.String()},
	})
}

// AuditLog returns the trip's audit trail, newest first. Requires Owner.
func (s *TripService) AuditLog(ctx context.Context, actor *domain.UserID, id domain.TripID, limit *int) ([]domain.AuditEvent, error) {
	if _, err := s.gate.load(ctx, id, actor, domain.RoleOwner); err != nil {
		return nil, err
	}
	return s.audit.Search(ctx, domain.NewAuditFilter(domain.EntityTrip, id.String(), nil, limit))
}
