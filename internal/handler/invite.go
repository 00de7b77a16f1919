package handler

import (
	"net/http"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/middleware"
)

// ListInvites handles GET /trips/{tripID}/invites. Owners only.
func (s *Server) ListInvites(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	invites, err := s.invites.List(r.Context(), middleware.ActorFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]Invite, len(invites))
	for i, inv := range invites {
		out[i] = inviteToResponse(inv)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateInvite handles POST /trips/{tripID}/invites.
// Re-inviting an email with a pending invite updates its role.
func (s *Server) CreateInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body InviteRequest
	if !s.readBody(w, r, &body) {
		return
	}
	role, err := domain.ParseRole(body.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	inv, err := s.invites.Invite(r.Context(), middleware.ActorFrom(r.Context()), id, string(body.Email), role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inviteToResponse(inv))
}

// RevokeInvite handles POST /trips/{tripID}/invites/revoke.
func (s *Server) RevokeInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body RevokeInviteRequest
	if !s.readBody(w, r, &body) {
		return
	}

	inv, err := s.invites.Revoke(r.Context(), middleware.ActorFrom(r.Context()), id, body.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inviteToResponse(inv))
}
