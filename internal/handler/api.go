package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tiagobluiz/travel-companion/internal/domain"
)

// Request and response bodies. Field names and formats follow openapi.yaml.

type HealthResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Email       openapi_types.Email `json:"email"`
	Password    string              `json:"password"`
	DisplayName string              `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	Id          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type CreateTripRequest struct {
	Name       string             `json:"name"`
	StartDate  openapi_types.Date `json:"start_date"`
	EndDate    openapi_types.Date `json:"end_date"`
	Visibility *string            `json:"visibility,omitempty"`
}

type UpdateTripRequest struct {
	Name      string             `json:"name"`
	StartDate openapi_types.Date `json:"start_date"`
	EndDate   openapi_types.Date `json:"end_date"`
}

type VisibilityRequest struct {
	Visibility string `json:"visibility"`
}

type Member struct {
	UserId uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type Trip struct {
	Id         uuid.UUID          `json:"id"`
	Name       string             `json:"name"`
	StartDate  openapi_types.Date `json:"start_date"`
	EndDate    openapi_types.Date `json:"end_date"`
	Visibility string             `json:"visibility"`
	Members    []Member           `json:"members"`
	Version    int64              `json:"version"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type TripSummary struct {
	Id         uuid.UUID          `json:"id"`
	Name       string             `json:"name"`
	StartDate  openapi_types.Date `json:"start_date"`
	EndDate    openapi_types.Date `json:"end_date"`
	Visibility string             `json:"visibility"`
	Role       string             `json:"role"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type TripList struct {
	Data       []TripSummary `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

type ItemRequest struct {
	PlaceName string              `json:"place_name"`
	Date      *openapi_types.Date `json:"date,omitempty"`
	Notes     *string             `json:"notes,omitempty"`
	Latitude  *float64            `json:"latitude,omitempty"`
	Longitude *float64            `json:"longitude,omitempty"`
}

type Item struct {
	Id        uuid.UUID           `json:"id"`
	PlaceName string              `json:"place_name"`
	Date      *openapi_types.Date `json:"date,omitempty"`
	Notes     *string             `json:"notes,omitempty"`
	Latitude  *float64            `json:"latitude,omitempty"`
	Longitude *float64            `json:"longitude,omitempty"`
}

type Day struct {
	Number int                `json:"number"`
	Date   openapi_types.Date `json:"date"`
	Items  []Item             `json:"items"`
}

type Itinerary struct {
	TripId        uuid.UUID `json:"trip_id"`
	Days          []Day     `json:"days"`
	PlacesToVisit []Item    `json:"places_to_visit"`
}

type ExportRow struct {
	Day       *int                `json:"day,omitempty"`
	Date      *openapi_types.Date `json:"date,omitempty"`
	PlaceName string              `json:"place_name"`
	Notes     *string             `json:"notes,omitempty"`
	Latitude  *float64            `json:"latitude,omitempty"`
	Longitude *float64            `json:"longitude,omitempty"`
}

type InviteRequest struct {
	Email openapi_types.Email `json:"email"`
	Role  string              `json:"role"`
}

type RevokeInviteRequest struct {
	Email string `json:"email"`
}

type Invite struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type AuditEvent struct {
	Id         uuid.UUID         `json:"id"`
	Action     string            `json:"action"`
	EntityType string            `json:"entity_type"`
	EntityId   string            `json:"entity_id"`
	ActorId    *uuid.UUID        `json:"actor_id,omitempty"`
	Before     map[string]any    `json:"before,omitempty"`
	After      map[string]any    `json:"after,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// --- mapping helpers --------------------------------------------------------

func userToResponse(u domain.User) User {
	return User{Id: uuid.UUID(u.ID), Email: u.Email, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
}

func tripToResponse(t domain.Trip) Trip {
	members := make([]Member, len(t.Memberships))
	for i, m := range t.Memberships {
		members[i] = Member{UserId: uuid.UUID(m.UserID), Role: m.Role.String()}
	}
	return Trip{
		Id:         uuid.UUID(t.ID),
		Name:       t.Name,
		StartDate:  openapi_types.Date{Time: t.StartDate},
		EndDate:    openapi_types.Date{Time: t.EndDate},
		Visibility: string(t.Visibility),
		Members:    members,
		Version:    t.Version,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func summaryToResponse(t domain.TripSummary) TripSummary {
	return TripSummary{
		Id:         uuid.UUID(t.ID),
		Name:       t.Name,
		StartDate:  openapi_types.Date{Time: t.StartDate},
		EndDate:    openapi_types.Date{Time: t.EndDate},
		Visibility: string(t.Visibility),
		Role:       t.Role.String(),
	}
}

// requestToItem converts an ItemRequest body into a domain.ItineraryItem.
// A nil date leaves the item unscheduled.
func requestToItem(id domain.ItemID, body ItemRequest) domain.ItineraryItem {
	item := domain.ItineraryItem{
		ID:        id,
		PlaceName: body.PlaceName,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
	}
	if body.Date != nil {
		d := body.Date.Time
		item.Date = &d
	}
	if body.Notes != nil {
		item.Notes = *body.Notes
	}
	return item
}

func itemToResponse(it domain.ItineraryItem) Item {
	resp := Item{
		Id:        uuid.UUID(it.ID),
		PlaceName: it.PlaceName,
		Latitude:  it.Latitude,
		Longitude: it.Longitude,
	}
	if it.Date != nil {
		resp.Date = &openapi_types.Date{Time: *it.Date}
	}
	if it.Notes != "" {
		resp.Notes = &it.Notes
	}
	return resp
}

func itemsToResponse(items []domain.ItineraryItem) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = itemToResponse(it)
	}
	return out
}

func itineraryToResponse(it domain.Itinerary) Itinerary {
	days := make([]Day, len(it.Days))
	for i, d := range it.Days {
		days[i] = Day{Number: d.Number, Date: openapi_types.Date{Time: d.Date}, Items: itemsToResponse(d.Items)}
	}
	return Itinerary{
		TripId:        uuid.UUID(it.Trip.ID),
		Days:          days,
		PlacesToVisit: itemsToResponse(it.PlacesToVisit),
	}
}

func inviteToResponse(inv domain.Invite) Invite {
	return Invite{
		Id:        uuid.UUID(inv.ID),
		Email:     inv.Email,
		Role:      inv.Role.String(),
		Status:    string(inv.Status),
		CreatedAt: inv.CreatedAt,
	}
}

func auditToResponse(e domain.AuditEvent) AuditEvent {
	resp := AuditEvent{
		Id:         e.ID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityId:   e.EntityID,
		Before:     e.Before,
		After:      e.After,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
	if e.ActorID != nil {
		id := uuid.UUID(*e.ActorID)
		resp.ActorId = &id
	}
	return resp
}

func auditListToResponse(events []domain.AuditEvent) []AuditEvent {
	out := make([]AuditEvent, len(events))
	for i, e := range events {
		out[i] = auditToResponse(e)
	}
	return out
}
