package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiagobluiz/travel-companion/internal/auth"
	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/service"
)

// stubLinker records the users it was asked to link.
type stubLinker struct {
	linked []domain.User
	err    error
}

func (s *stubLinker) LinkPendingInvitesOnRegistration(_ context.Context, u domain.User) (int, error) {
	s.linked = append(s.linked, u)
	return 0, s.err
}

func newAuthService(users *mockUserRepo, linker service.InviteLinker) (*service.AuthService, *auth.TokenManager) {
	tokens := auth.NewTokenManager(auth.TokenConfig{Secret: "test-secret", Issuer: "travel-companion-test", TTL: time.Hour})
	return service.NewAuthService(users, linker, tokens, service.NewAuditService(&mockAuditRepo{}, nil), nil), tokens
}

func TestAuthService_Register(t *testing.T) {
	users := &mockUserRepo{}
	linker := &stubLinker{}
	svc, tokens := newAuthService(users, linker)

	sess, err := svc.Register(context.Background(), service.RegisterInput{
		Email:       " Ana@Example.com",
		Password:    "correct horse",
		DisplayName: "Ana",
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.NotEqual(t, "correct horse", sess.User.PasswordHash)
	assert.True(t, auth.CheckPassword(sess.User.PasswordHash, "correct horse"))
	require.Len(t, linker.linked, 1)
	assert.Equal(t, sess.User.ID, linker.linked[0].ID)

	id, err := tokens.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id)
}

func TestAuthService_Register_Rejections(t *testing.T) {
	existing := domain.User{ID: domain.NewUserID(), Email: "ana@example.com"}

	tests := map[string]struct {
		in      service.RegisterInput
		wantErr error
	}{
		"duplicate email": {in: service.RegisterInput{Email: "ANA@example.com", Password: "long enough", DisplayName: "Ana"}, wantErr: domain.ErrConflict},
		"short password":  {in: service.RegisterInput{Email: "bea@example.com", Password: "short", DisplayName: "Bea"}, wantErr: domain.ErrValidation},
		"invalid email":   {in: service.RegisterInput{Email: "bea", Password: "long enough", DisplayName: "Bea"}, wantErr: domain.ErrValidation},
		"blank name":      {in: service.RegisterInput{Email: "bea@example.com", Password: "long enough", DisplayName: "  "}, wantErr: domain.ErrValidation},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			users := &mockUserRepo{users: []domain.User{existing}}
			linker := &stubLinker{}
			svc, _ := newAuthService(users, linker)

			_, err := svc.Register(context.Background(), tc.in)

			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, linker.linked)
			assert.Len(t, users.users, 1)
		})
	}
}

func TestAuthService_Register_LinkFailureStillRegisters(t *testing.T) {
	users := &mockUserRepo{}
	svc, _ := newAuthService(users, &stubLinker{err: errors.New("db down")})

	sess, err := svc.Register(context.Background(), service.RegisterInput{Email: "ana@example.com", Password: "long enough", DisplayName: "Ana"})

	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
}

// Registration links invites end to end through the real InviteService.
func TestAuthService_Register_LinksPendingInvite(t *testing.T) {
	owner := domain.NewUserID()
	trip, _, err := newTrip(t, owner).InviteCollaborator("ana@example.com", domain.RoleEditor, nil)
	require.NoError(t, err)
	trips, st := memTrips(trip)
	users := &mockUserRepo{}
	invites, _ := newInviteService(trips, users)
	svc, _ := newAuthService(users, invites)

	sess, err := svc.Register(context.Background(), service.RegisterInput{Email: "Ana@example.com", Password: "long enough", DisplayName: "Ana"})

	require.NoError(t, err)
	got := st.get(trip.ID)
	m, ok := got.Member(sess.User.ID)
	require.True(t, ok)
	assert.Equal(t, domain.RoleEditor, m.Role)
	assert.Equal(t, domain.InviteStatusAccepted, got.Invites[0].Status)
}

func TestAuthService_Login(t *testing.T) {
	users := &mockUserRepo{}
	svc, _ := newAuthService(users, &stubLinker{})
	ctx := context.Background()
	_, err := svc.Register(ctx, service.RegisterInput{Email: "ana@example.com", Password: "long enough", DisplayName: "Ana"})
	require.NoError(t, err)

	sess, err := svc.Login(ctx, " ANA@example.com ", "long enough")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	_, wrongPassword := svc.Login(ctx, "ana@example.com", "not the password")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "long enough")
	require.ErrorIs(t, wrongPassword, domain.ErrAuthentication)
	require.ErrorIs(t, unknownEmail, domain.ErrAuthentication)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error(), "failures must be indistinguishable")
}

func TestAuthService_Me(t *testing.T) {
	users := &mockUserRepo{}
	svc, _ := newAuthService(users, &stubLinker{})
	sess, err := svc.Register(context.Background(), service.RegisterInput{Email: "ana@example.com", Password: "long enough", DisplayName: "Ana"})
	require.NoError(t, err)

	got, err := svc.Me(context.Background(), &sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.DisplayName)

	_, err = svc.Me(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
