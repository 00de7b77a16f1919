// Package service contains the use cases of the trip planner.
// Services resolve the actor, load aggregates through repo interfaces, ask
// domain.Authorize for access, apply domain mutations, persist, and record
// the change on the audit trail. No SQL lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/repo"
)

// tripGate is the read-modify-write path shared by every trip use case.
// It is the only place that loads a trip on behalf of an actor.
type tripGate struct {
	trips repo.TripRepo
	audit *AuditService
	log   *slog.Logger
}

// change describes one state-changing use case.
type change struct {
	action   string
	required domain.Role
	apply    func(domain.Trip) (domain.Trip, error)
	metadata map[string]string
}

// load fetches the trip and runs it through the access gate.
func (g tripGate) load(ctx context.Context, id domain.TripID, actor *domain.UserID, required domain.Role) (domain.Trip, error) {
	var found *domain.Trip
	trip, err := g.trips.GetByID(ctx, id)
	switch {
	case err == nil:
		found = &trip
	case errors.Is(err, domain.ErrNotFound):
		// found stays nil; the gate turns it into NotFound.
	default:
		return domain.Trip{}, err
	}

	var granted domain.Trip
	err = domain.Authorize(found, actor, required).Match(
		func(t domain.Trip) error {
			granted = t
			return nil
		},
		func() error { return fmt.Errorf("trip %s: %w", id, domain.ErrNotFound) },
		func() error { return fmt.Errorf("trip %s requires %s: %w", id, required, domain.ErrForbidden) },
	)
	if err != nil {
		return domain.Trip{}, err
	}
	return granted, nil
}

// mutate loads and authorizes the trip, then commits c against it.
func (g tripGate) mutate(ctx context.Context, id domain.TripID, actor *domain.UserID, c change) (domain.Trip, error) {
	before, err := g.load(ctx, id, actor, c.required)
	if err != nil {
		return domain.Trip{}, err
	}
	return g.commit(ctx, before, actor, c)
}

// commit applies c to before, saves the result with an optimistic version
// check and records the audit event. A lost race surfaces as
// domain.ErrConflict and nothing is recorded.
func (g tripGate) commit(ctx context.Context, before domain.Trip, actor *domain.UserID, c change) (domain.Trip, error) {
	after, err := c.apply(before)
	if err != nil {
		return domain.Trip{}, err
	}
	saved, err := g.trips.Save(ctx, after)
	if err != nil {
		return domain.Trip{}, err
	}

	g.audit.Record(ctx, domain.AuditEvent{
		Action:     c.action,
		EntityType: domain.EntityTrip,
		EntityID:   saved.ID.String(),
		ActorID:    actor,
		Before:     before.Snapshot(),
		After:      saved.Snapshot(),
		Metadata:   c.metadata,
	})
	g.log.InfoContext(ctx, "trip changed", "action", c.action, "trip_id", saved.ID.String(), "version", saved.Version)
	return saved, nil
}

// requireActor fails with domain.ErrUnauthenticated when actor is nil.
func requireActor(actor *domain.UserID) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	return nil
}

func loggerOrDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
