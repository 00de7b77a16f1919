package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/middleware"
	"github.com/tiagobluiz/travel-companion/internal/service"
)

// CreateTrip handles POST /trips. The caller becomes the trip's owner.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if !s.readBody(w, r, &body) {
		return
	}
	in := service.TripInput{
		Name:      body.Name,
		StartDate: body.StartDate.Time,
		EndDate:   body.EndDate.Time,
	}
	if body.Visibility != nil {
		v, err := domain.ParseVisibility(*body.Visibility)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		in.Visibility = v
	}

	created, err := s.trips.Create(r.Context(), middleware.ActorFrom(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListMyTrips handles GET /me/trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListMyTrips(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	params := domain.NewPaginationParams(page, limit)

	trips, total, err := s.trips.ListMine(r.Context(), middleware.ActorFrom(r.Context()), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := make([]TripSummary, len(trips))
	for i, t := range trips {
		data[i] = summaryToResponse(t)
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, TripList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetTrip handles GET /trips/{tripID}. Public trips are readable without a token.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.Get(r.Context(), middleware.ActorFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripID}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !s.readBody(w, r, &body) {
		return
	}

	updated, err := s.trips.UpdateDetails(r.Context(), middleware.ActorFrom(r.Context()), id,
		body.Name, body.StartDate.Time, body.EndDate.Time)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// ChangeVisibility handles PATCH /trips/{tripID}/visibility.
func (s *Server) ChangeVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body VisibilityRequest
	if !s.readBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Visibility) == "" {
		s.writeError(w, r, fmt.Errorf("%w: visibility is required", domain.ErrValidation))
		return
	}
	v, err := domain.ParseVisibility(body.Visibility)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.trips.ChangeVisibility(r.Context(), middleware.ActorFrom(r.Context()), id, v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), middleware.ActorFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTripAudit handles GET /trips/{tripID}/audit. Owners only.
func (s *Server) GetTripAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	events, err := s.trips.AuditLog(r.Context(), middleware.ActorFrom(r.Context()), id, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auditListToResponse(events))
}
