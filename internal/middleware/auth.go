package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tiagobluiz/travel-companion/internal/domain"
)

// TokenValidator resolves a bearer token to the user it was issued for.
type TokenValidator interface {
	Validate(token string) (domain.UserID, error)
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying the authenticated user id.
func WithActor(ctx context.Context, id domain.UserID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// ActorFrom returns the authenticated user id, or nil for an anonymous request.
func ActorFrom(ctx context.Context) *domain.UserID {
	id, ok := ctx.Value(actorKey{}).(domain.UserID)
	if !ok {
		return nil
	}
	return &id
}

// NewAuthenticator returns a middleware that resolves the actor from an
// "Authorization: Bearer <token>" header. A missing or invalid token leaves
// the request anonymous; handlers decide whether that is acceptable.
func NewAuthenticator(v TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			id, err := v.Validate(token)
			if err != nil {
				log.DebugContext(r.Context(), "bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeError writes the API's JSON error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
