package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/repo"
)

// linkAttempts bounds the retries of one invite acceptance that keeps losing
// the optimistic version race.
const linkAttempts = 3

// InviteService manages trip invites and turns them into memberships when
// the invited email registers.
type InviteService struct {
	gate  tripGate
	trips repo.TripRepo
	users repo.UserRepo
	log   *slog.Logger
}

// NewInviteService constructs an InviteService.
func NewInviteService(trips repo.TripRepo, users repo.UserRepo, audit *AuditService, log *slog.Logger) *InviteService {
	log = loggerOrDefault(log)
	return &InviteService{
		gate:  tripGate{trips: trips, audit: audit, log: log},
		trips: trips,
		users: users,
		log:   log,
	}
}

// Invite offers role on the trip to email. Requires Owner.
// Inviting a registered user who is already a member fails with
// domain.ErrConflict. Re-inviting a pending email updates its role.
func (s *InviteService) Invite(ctx context.Context, actor *domain.UserID, id domain.TripID, email string, role domain.Role) (domain.Invite, error) {
	var inv domain.Invite
	saved, err := s.gate.mutate(ctx, id, actor, change{
		action:   domain.ActionInviteCreated,
		required: domain.RoleOwner,
		apply: func(t domain.Trip) (domain.Trip, error) {
			// Looked up only once the gate has let the owner through.
			registered, err := s.registeredUser(ctx, email)
			if err != nil {
				return domain.Trip{}, err
			}
			next, created, err := t.InviteCollaborator(email, role, registered)
			inv = created
			return next, err
		},
		metadata: map[string]string{"email": domain.NormalizeEmail(email), "role": role.String()},
	})
	if err != nil {
		return domain.Invite{}, err
	}
	return storedInvite(saved, inv), nil
}

// Revoke cancels the pending invite for email. Requires Owner.
func (s *InviteService) Revoke(ctx context.Context, actor *domain.UserID, id domain.TripID, email string) (domain.Invite, error) {
	var inv domain.Invite
	saved, err := s.gate.mutate(ctx, id, actor, change{
		action:   domain.ActionInviteRevoked,
		required: domain.RoleOwner,
		apply: func(t domain.Trip) (domain.Trip, error) {
			next, revoked, err := t.RevokeInvite(email)
			inv = revoked
			return next, err
		},
		metadata: map[string]string{"email": domain.NormalizeEmail(email)},
	})
	if err != nil {
		return domain.Invite{}, err
	}
	return storedInvite(saved, inv), nil
}

// List returns every invite of the trip in creation order. Requires Owner.
func (s *InviteService) List(ctx context.Context, actor *domain.UserID, id domain.TripID) ([]domain.Invite, error) {
	trip, err := s.gate.load(ctx, id, actor, domain.RoleOwner)
	if err != nil {
		return nil, err
	}
	return slices.Clone(trip.Invites), nil
}

// LinkPendingInvitesOnRegistration accepts every pending invite addressed to the new
// user's email. It runs on behalf of the system, so trips are loaded
// without the access gate. A failure on one trip is logged and does not
// stop the others; all failures are returned joined.
func (s *InviteService) LinkPendingInvitesOnRegistration(ctx context.Context, user domain.User) (int, error) {
	ids, err := s.trips.ListIDsWithPendingInvite(ctx, user.Email)
	if err != nil {
		return 0, fmt.Errorf("service.InviteService.LinkPendingInvitesOnRegistration: %w", err)
	}

	linked := 0
	var errs []error
	for _, id := range ids {
		if err := s.accept(ctx, id, user); err != nil {
			s.log.WarnContext(ctx, "invite link failed", "trip_id", id.String(), "user_id", user.ID.String(), "error", err)
			errs = append(errs, fmt.Errorf("trip %s: %w", id, err))
			continue
		}
		linked++
	}
	return linked, errors.Join(errs...)
}

// accept converts one pending invite, retrying on a lost version race.
// Conflicts raised by the aggregate itself, such as an existing membership,
// are returned at once.
func (s *InviteService) accept(ctx context.Context, id domain.TripID, user domain.User) error {
	var err error
	for range linkAttempts {
		var trip domain.Trip
		trip, err = s.trips.GetByID(ctx, id)
		if err != nil {
			return err
		}
		applied := false
		_, err = s.gate.commit(ctx, trip, &user.ID, change{
			action: domain.ActionInviteAccepted,
			apply: func(t domain.Trip) (domain.Trip, error) {
				next, _, err := t.AcceptInvite(user.Email, user.ID)
				applied = err == nil
				return next, err
			},
			metadata: map[string]string{"email": user.Email},
		})
		if !applied || !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
}

// registeredUser returns the id of the user registered under email, or nil.
func (s *InviteService) registeredUser(ctx context.Context, email string) (*domain.UserID, error) {
	normalized, err := domain.ValidateEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, normalized)
	switch {
	case err == nil:
		return &u.ID, nil
	case errors.Is(err, domain.ErrNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("service.InviteService.registeredUser: %w", err)
	}
}

// storedInvite returns the persisted form of inv from the saved trip.
func storedInvite(saved domain.Trip, inv domain.Invite) domain.Invite {
	i := slices.IndexFunc(saved.Invites, func(x domain.Invite) bool { return x.ID == inv.ID })
	if i < 0 {
		return inv
	}
	return saved.Invites[i]
}
