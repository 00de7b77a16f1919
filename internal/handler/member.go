package handler

import (
	"net/http"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/middleware"
)

// ChangeMemberRole handles PUT /trips/{tripID}/members/{userID}. Owners only.
func (s *Server) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	id, member, ok := memberParams(w, r)
	if !ok {
		return
	}
	var body RoleRequest
	if !s.readBody(w, r, &body) {
		return
	}
	role, err := domain.ParseRole(body.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	trip, err := s.trips.ChangeMemberRole(r.Context(), middleware.ActorFrom(r.Context()), id, member, role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// RemoveMember handles DELETE /trips/{tripID}/members/{userID}.
// Owners may remove anyone; members may remove themselves.
func (s *Server) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, member, ok := memberParams(w, r)
	if !ok {
		return
	}
	if _, err := s.trips.RemoveMember(r.Context(), middleware.ActorFrom(r.Context()), id, member); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func memberParams(w http.ResponseWriter, r *http.Request) (domain.TripID, domain.UserID, bool) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return domain.TripID{}, domain.UserID{}, false
	}
	member, err := pathUUID(r, "userID")
	if err != nil {
		badRequest(w, err.Error())
		return domain.TripID{}, domain.UserID{}, false
	}
	return id, domain.UserID(member), true
}
