// Package handler implements the HTTP handlers for the travel companion API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, itinerary.go, ...) but all share the same Server
// struct so they can access its dependencies. Routes mounts them on chi.
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, actor *domain.UserID, in service.TripInput) (domain.Trip, error)
	Get(ctx context.Context, actor *domain.UserID, id domain.TripID) (domain.Trip, error)
	ListMine(ctx context.Context, actor *domain.UserID, p domain.PaginationParams) ([]domain.TripSummary, int64, error)
	UpdateDetails(ctx context.Context, actor *domain.UserID, id domain.TripID, name string, start, end time.Time) (domain.Trip, error)
	ChangeVisibility(ctx context.Context, actor *domain.UserID, id domain.TripID, v domain.Visibility) (domain.Trip, error)
	Delete(ctx context.Context, actor *domain.UserID, id domain.TripID) error
	ChangeMemberRole(ctx context.Context, actor *domain.UserID, id domain.TripID, member domain.UserID, role domain.Role) (domain.Trip, error)
	RemoveMember(ctx context.Context, actor *domain.UserID, id domain.TripID, member domain.UserID) (domain.Trip, error)
	AuditLog(ctx context.Context, actor *domain.UserID, id domain.TripID, limit *int) ([]domain.AuditEvent, error)
}

// ItineraryServicer defines the itinerary operations.
type ItineraryServicer interface {
	Get(ctx context.Context, actor *domain.UserID, id domain.TripID) (domain.Itinerary, error)
	Export(ctx context.Context, actor *domain.UserID, id domain.TripID) ([]domain.ExportRow, error)
	AddItem(ctx context.Context, actor *domain.UserID, id domain.TripID, item domain.ItineraryItem) (domain.ItineraryItem, error)
	UpdateItem(ctx context.Context, actor *domain.UserID, id domain.TripID, item domain.ItineraryItem) (domain.ItineraryItem, error)
	RemoveItem(ctx context.Context, actor *domain.UserID, id domain.TripID, itemID domain.ItemID) error
}

// InviteServicer defines the invite operations.
type InviteServicer interface {
	Invite(ctx context.Context, actor *domain.UserID, id domain.TripID, email string, role domain.Role) (domain.Invite, error)
	Revoke(ctx context.Context, actor *domain.UserID, id domain.TripID, email string) (domain.Invite, error)
	List(ctx context.Context, actor *domain.UserID, id domain.TripID) ([]domain.Invite, error)
}

// AuthServicer defines registration, login and the current user lookup.
type AuthServicer interface {
	Register(ctx context.Context, in service.RegisterInput) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Me(ctx context.Context, actor *domain.UserID) (domain.User, error)
}

// AuditServicer defines the actor's own audit trail.
type AuditServicer interface {
	ListMine(ctx context.Context, actor *domain.UserID, limit *int) ([]domain.AuditEvent, error)
}

// Services groups the dependencies of Server. Nil entries are allowed in
// tests that only exercise some routes.
type Services struct {
	Trips     TripServicer
	Itinerary ItineraryServicer
	Invites   InviteServicer
	Auth      AuthServicer
	Audit     AuditServicer
}

// Server holds every HTTP handler of the API.
type Server struct {
	trips     TripServicer
	itinerary ItineraryServicer
	invites   InviteServicer
	auth      AuthServicer
	audit     AuditServicer
	openAPI   []byte
	log       *slog.Logger
}

// NewServer constructs the Server with all its dependencies. openAPI is the
// document served at /openapi.yaml.
func NewServer(svc Services, openAPI []byte, log *slog.Logger) *Server {
	return &Server{
		trips:     svc.Trips,
		itinerary: svc.Itinerary,
		invites:   svc.Invites,
		auth:      svc.Auth,
		audit:     svc.Audit,
		openAPI:   openAPI,
		log:       logger(log),
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{}, nil, nil)
}

// Routes returns the chi router for the API. Cross-cutting middleware
// (request id, logging, CORS, authentication) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Post("/auth/register", s.Register)
	r.Post("/auth/login", s.Login)

	r.Route("/me", func(r chi.Router) {
		r.Get("/", s.GetMe)
		r.Get("/trips", s.ListMyTrips)
		r.Get("/audit", s.ListMyAudit)
	})

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)
			r.Patch("/visibility", s.ChangeVisibility)

			r.Get("/itinerary", s.GetItinerary)
			r.Get("/itinerary/export", s.ExportItinerary)
			r.Post("/items", s.AddItem)
			r.Put("/items/{itemID}", s.UpdateItem)
			r.Delete("/items/{itemID}", s.RemoveItem)

			r.Put("/members/{userID}", s.ChangeMemberRole)
			r.Delete("/members/{userID}", s.RemoveMember)

			r.Get("/invites", s.ListInvites)
			r.Post("/invites", s.CreateInvite)
			r.Post("/invites/revoke", s.RevokeInvite)

			r.Get("/audit", s.GetTripAudit)
		})
	})

	return r
}
