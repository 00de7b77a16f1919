package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tiagobluiz/travel-companion/internal/auth"
	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/repo"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user domain.User) (string, time.Time, error)
}

// InviteLinker converts pending invites into memberships for a new user.
type InviteLinker interface {
	LinkPendingInvitesOnRegistration(ctx context.Context, user domain.User) (int, error)
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Session is the result of a successful register or login.
type Session struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users  repo.UserRepo
	links  InviteLinker
	tokens TokenIssuer
	audit  *AuditService
	log    *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repo.UserRepo, links InviteLinker, tokens TokenIssuer, audit *AuditService, log *slog.Logger) *AuthService {
	return &AuthService{users: users, links: links, tokens: tokens, audit: audit, log: loggerOrDefault(log)}
}

// Register creates an account, links any pending invites for its email and
// returns a session. A taken email fails with domain.ErrConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email, err := domain.ValidateEmail(in.Email)
	if err != nil {
		return Session{}, err
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return Session{}, fmt.Errorf("%w: display_name is required", domain.ErrValidation)
	}
	if len(in.Password) < auth.MinPasswordLength {
		return Session{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, auth.MinPasswordLength)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	if exists {
		return Session{}, fmt.Errorf("email %s is already registered: %w", email, domain.ErrConflict)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	user, err := s.users.Create(ctx, domain.User{
		ID:           domain.NewUserID(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
	})
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Action:     domain.ActionUserRegistered,
		EntityType: domain.EntityUser,
		EntityID:   user.ID.String(),
		ActorID:    &user.ID,
		After:      user.Snapshot(),
	})

	// The account exists at this point; a failed link leaves the invites
	// pending and is not reported to the registrant.
	linked, err := s.links.LinkPendingInvitesOnRegistration(ctx, user)
	if err != nil {
		s.log.ErrorContext(ctx, "linking pending invites failed", "user_id", user.ID.String(), "error", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID.String(), "linked_invites", linked)

	return s.session(user)
}

// Login verifies credentials. An unknown email and a wrong password both
// fail with the same domain.ErrAuthentication.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return Session{}, domain.ErrAuthentication
	case err != nil:
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return Session{}, domain.ErrAuthentication
	}
	return s.session(user)
}

// Me returns the actor's account.
func (s *AuthService) Me(ctx context.Context, actor *domain.UserID) (domain.User, error) {
	if err := requireActor(actor); err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetByID(ctx, *actor)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Me: %w", err)
	}
	return user, nil
}

func (s *AuthService) session(user domain.User) (Session, error) {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService: issue token: %w", err)
	}
	return Session{User: user, Token: token, ExpiresAt: exp}, nil
}
