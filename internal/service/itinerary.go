package service

import (
	"context"
	"log/slog"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/repo"
)

// ItineraryService manages the items of a trip and renders the itinerary view.
type ItineraryService struct {
	gate tripGate
}

// NewItineraryService constructs an ItineraryService backed by the provided TripRepo.
func NewItineraryService(trips repo.TripRepo, audit *AuditService, log *slog.Logger) *ItineraryService {
	return &ItineraryService{gate: tripGate{trips: trips, audit: audit, log: loggerOrDefault(log)}}
}

// Get returns the itinerary view of a readable trip.
func (s *ItineraryService) Get(ctx context.Context, actor *domain.UserID, id domain.TripID) (domain.Itinerary, error) {
	trip, err := s.gate.load(ctx, id, actor, domain.RoleNone)
	if err != nil {
		return domain.Itinerary{}, err
	}
	return trip.Itinerary(), nil
}

// Export returns the itinerary flattened into rows, scheduled items first.
func (s *ItineraryService) Export(ctx context.Context, actor *domain.UserID, id domain.TripID) ([]domain.ExportRow, error) {
	it, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return it.ExportRows(), nil
}

// AddItem appends an item to the trip. Requires Editor.
func (s *ItineraryService) AddItem(ctx context.Context, actor *domain.UserID, id domain.TripID, item domain.ItineraryItem) (domain.ItineraryItem, error) {
	var added domain.ItineraryItem
	_, err := s.gate.mutate(ctx, id, actor, change{
		action:   domain.ActionItemAdded,
		required: domain.RoleEditor,
		apply: func(t domain.Trip) (domain.Trip, error) {
			next, it, err := t.AddItineraryItem(item)
			added = it
			return next, err
		},
	})
	if err != nil {
		return domain.ItineraryItem{}, err
	}
	return added, nil
}

// UpdateItem replaces an existing item in place. Requires Editor.
func (s *ItineraryService) UpdateItem(ctx context.Context, actor *domain.UserID, id domain.TripID, item domain.ItineraryItem) (domain.ItineraryItem, error) {
	saved, err := s.gate.mutate(ctx, id, actor, change{
		action:   domain.ActionItemUpdated,
		required: domain.RoleEditor,
		apply: func(t domain.Trip) (domain.Trip, error) {
			return t.UpdateItineraryItem(item)
		},
		metadata: map[string]string{"item_id": item.ID.String()},
	})
	if err != nil {
		return domain.ItineraryItem{}, err
	}
	updated, _ := saved.Item(item.ID)
	return updated, nil
}

// RemoveItem deletes an item. Requires Editor.
func (s *ItineraryService) RemoveItem(ctx context.Context, actor *domain.UserID, id domain.TripID, itemID domain.ItemID) error {
	_, err := s.gate.mutate(ctx, id, actor, change{
		action:   domain.ActionItemRemoved,
		required: domain.RoleEditor,
		apply: func(t domain.Trip) (domain.Trip, error) {
			return t.RemoveItineraryItem(itemID)
		},
		metadata: map[string]string{"item_id": itemID.String()},
	})
	return err
}
