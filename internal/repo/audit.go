package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tiagobluiz/travel-companion/internal/domain"
)

// AuditRepo is the append-only store behind the audit trail.
type AuditRepo interface {
	// Append stores evt and returns it with id and created_at populated.
	Append(ctx context.Context, evt domain.AuditEvent) (domain.AuditEvent, error)

	// Search returns events matching f, newest first, at most f.Limit rows.
	Search(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEvent, error)
}

type pgAuditRepo struct {
	db db
}

// NewAuditRepo constructs an AuditRepo backed by the provided db connection.
func NewAuditRepo(db db) AuditRepo {
	return &pgAuditRepo{db: db}
}

const auditColumns = `id, action, entity_type, entity_id, actor_id, before, after, metadata, created_at`

func (r *pgAuditRepo) Append(ctx context.Context, evt domain.AuditEvent) (domain.AuditEvent, error) {
	const q = `
		INSERT INTO audit_events (action, entity_type, entity_id, actor_id, before, after, metadata)
		VALUES (@action, @entity_type, @entity_id, @actor_id, @before, @after, @metadata)
		RETURNING ` + auditColumns

	metadata := evt.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"action":      evt.Action,
		"entity_type": evt.EntityType,
		"entity_id":   evt.EntityID,
		"actor_id":    nullUserID(evt.ActorID),
		"before":      jsonOrNil(evt.Before),
		"after":       jsonOrNil(evt.After),
		"metadata":    metadata,
	})
	result, err := scanAuditEvent(row)
	if err != nil {
		return domain.AuditEvent{}, fmt.Errorf("repo.AuditRepo.Append: %w", err)
	}
	return result, nil
}

func (r *pgAuditRepo) Search(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEvent, error) {
	const q = `
		SELECT ` + auditColumns + `
		FROM audit_events
		WHERE (@entity_type::text = '' OR entity_type = @entity_type)
		  AND (@entity_id::text = '' OR entity_id = @entity_id)
		  AND (@actor_id::uuid IS NULL OR actor_id = @actor_id)
		ORDER BY created_at DESC, id
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"entity_type": f.EntityType,
		"entity_id":   f.EntityID,
		"actor_id":    nullUserID(f.ActorID),
		"limit":       domain.ClampAuditLimit(f.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.Search: %w", err)
	}
	defer rows.Close()

	events := []domain.AuditEvent{}
	for rows.Next() {
		evt, err := scanAuditEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.AuditRepo.Search: scan: %w", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.Search: rows: %w", err)
	}
	return events, nil
}

func scanAuditEvent(s scanner) (domain.AuditEvent, error) {
	var (
		evt   domain.AuditEvent
		actor pgtype.UUID
	)
	err := s.Scan(&evt.ID, &evt.Action, &evt.EntityType, &evt.EntityID, &actor,
		&evt.Before, &evt.After, &evt.Metadata, &evt.CreatedAt)
	if err != nil {
		return domain.AuditEvent{}, err
	}
	if actor.Valid {
		id := domain.UserID(actor.Bytes)
		evt.ActorID = &id
	}
	return evt, nil
}

func nullUserID(id *domain.UserID) any {
	if id == nil {
		return nil
	}
	return uuid.UUID(*id)
}

// jsonOrNil keeps a nil snapshot as SQL NULL rather than the JSON literal null.
func jsonOrNil(s domain.Snapshot) any {
	if s == nil {
		return nil
	}
	return map[string]any(s)
}
