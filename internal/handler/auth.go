package handler

import (
	"net/http"

	"github.com/tiagobluiz/travel-companion/internal/middleware"
	"github.com/tiagobluiz/travel-companion/internal/service"
)

// Register handles POST /auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var body RegisterRequest
	if !s.readBody(w, r, &body) {
		return
	}
	sess, err := s.auth.Register(r.Context(), service.RegisterInput{
		Email:       string(body.Email),
		Password:    body.Password,
		DisplayName: body.DisplayName,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionToResponse(sess))
}

// Login handles POST /auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if !s.readBody(w, r, &body) {
		return
	}
	sess, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// GetMe handles GET /me.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Me(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// ListMyAudit handles GET /me/audit: the caller's own actions, newest first.
func (s *Server) ListMyAudit(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	events, err := s.audit.ListMine(r.Context(), middleware.ActorFrom(r.Context()), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auditListToResponse(events))
}

func sessionToResponse(sess service.Session) AuthResponse {
	return AuthResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: userToResponse(sess.User)}
}
