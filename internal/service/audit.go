package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/repo"
)

// AuditService writes to and reads from the audit trail.
// A nil *AuditService records nothing.
type AuditService struct {
	repo repo.AuditRepo
	log  *slog.Logger
}

// NewAuditService constructs an AuditService backed by the provided AuditRepo.
func NewAuditService(r repo.AuditRepo, log *slog.Logger) *AuditService {
	return &AuditService{repo: r, log: loggerOrDefault(log)}
}

// Record appends evt. The change it describes is already committed, so a
// failure here is logged rather than returned.
func (s *AuditService) Record(ctx context.Context, evt domain.AuditEvent) {
	if s == nil || s.repo == nil {
		return
	}
	if _, err := s.repo.Append(ctx, evt); err != nil {
		s.log.ErrorContext(ctx, "audit append failed",
			"action", evt.Action,
			"entity_type", evt.EntityType,
			"entity_id", evt.EntityID,
			"error", err,
		)
	}
}

// Search returns events matching f with its limit clamped.
func (s *AuditService) Search(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEvent, error) {
	f.Limit = domain.ClampAuditLimit(f.Limit)
	events, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service.AuditService.Search: %w", err)
	}
	return events, nil
}

// ListMine returns the actor's own actions, newest first.
func (s *AuditService) ListMine(ctx context.Context, actor *domain.UserID, limit *int) ([]domain.AuditEvent, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.Search(ctx, domain.NewAuditFilter("", "", actor, limit))
}
