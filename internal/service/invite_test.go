package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/service"
)

func newInviteService(trips *mockTripRepo, users *mockUserRepo) (*service.InviteService, *mockAuditRepo) {
	audit := &mockAuditRepo{}
	return service.NewInviteService(trips, users, service.NewAuditService(audit, nil), nil), audit
}

func TestInviteService_Invite_NewEmail(t *testing.T) {
	owner := domain.NewUserID()
	trip := newTrip(t, owner)
	repo, st := memTrips(trip)
	svc, audit := newInviteService(repo, &mockUserRepo{})

	inv, err := svc.Invite(context.Background(), &owner, trip.ID, "  Ana@Example.COM ", domain.RoleEditor)

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", inv.Email)
	assert.Equal(t, domain.InviteStatusPending, inv.Status)
	assert.Equal(t, domain.RoleEditor, inv.Role)
	assert.Len(t, st.get(trip.ID).Invites, 1)
	assert.Equal(t, []string{domain.ActionInviteCreated}, audit.actions())
}

func TestInviteService_Invite_ReinviteUpdatesRole(t *testing.T) {
	owner := domain.NewUserID()
	trip := newTrip(t, owner)
	repo, st := memTrips(trip)
	svc, _ := newInviteService(repo, &mockUserRepo{})
	ctx := context.Background()

	first, err := svc.Invite(ctx, &owner, trip.ID, "ana@example.com", domain.RoleViewer)
	require.NoError(t, err)
	second, err := svc.Invite(ctx, &owner, trip.ID, "ANA@example.com", domain.RoleEditor)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	invites := st.get(trip.ID).Invites
	require.Len(t, invites, 1)
	assert.Equal(t, domain.RoleEditor, invites[0].Role)
}

func TestInviteService_Invite_ExistingMember(t *testing.T) {
	owner, member := domain.NewUserID(), domain.NewUserID()
	trip := withMember(t, newTrip(t, owner), "bea@example.com", member, domain.RoleViewer)
	repo, st := memTrips(trip)
	users := &mockUserRepo{users: []domain.User{{ID: member, Email: "bea@example.com"}}}
	svc, _ := newInviteService(repo, users)

	_, err := svc.Invite(context.Background(), &owner, trip.ID, "bea@example.com", domain.RoleEditor)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 0, st.saves)
}

func TestInviteService_Invite_Rejections(t *testing.T) {
	owner, editor := domain.NewUserID(), domain.NewUserID()
	trip := withMember(t, newTrip(t, owner), "editor@example.com", editor, domain.RoleEditor)

	tests := map[string]struct {
		actor   *domain.UserID
		email   string
		role    domain.Role
		wantErr error
	}{
		"editor cannot invite":           {actor: &editor, email: "x@example.com", role: domain.RoleViewer, wantErr: domain.ErrForbidden},
		"editor with malformed email":    {actor: &editor, email: "not-an-email", role: domain.RoleViewer, wantErr: domain.ErrForbidden},
		"anonymous with malformed email": {actor: nil, email: "not-an-email", role: domain.RoleViewer, wantErr: domain.ErrForbidden},
		"invalid email":                  {actor: &owner, email: "not-an-email", role: domain.RoleViewer, wantErr: domain.ErrValidation},
		"none role":                      {actor: &owner, email: "x@example.com", role: domain.RoleNone, wantErr: domain.ErrValidation},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo, _ := memTrips(trip)
			svc, _ := newInviteService(repo, &mockUserRepo{})

			_, err := svc.Invite(context.Background(), tc.actor, trip.ID, tc.email, tc.role)

			assert.ErrorIs(t, err, tc.wantErr)
			if tc.wantErr == domain.ErrForbidden {
				assert.NotErrorIs(t, err, domain.ErrValidation, "access is decided before the email is looked at")
			}
		})
	}
}

func TestInviteService_RevokeAndList(t *testing.T) {
	owner := domain.NewUserID()
	trip, _, err := newTrip(t, owner).InviteCollaborator("ana@example.com", domain.RoleViewer, nil)
	require.NoError(t, err)
	repo, _ := memTrips(trip)
	svc, audit := newInviteService(repo, &mockUserRepo{})
	ctx := context.Background()

	inv, err := svc.Revoke(ctx, &owner, trip.ID, "Ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusRevoked, inv.Status)

	_, err = svc.Revoke(ctx, &owner, trip.ID, "ana@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound, "a revoked invite is terminal")

	list, err := svc.List(ctx, &owner, trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.InviteStatusRevoked, list[0].Status)
	assert.Equal(t, []string{domain.ActionInviteRevoked}, audit.actions())
}

func TestInviteService_LinkPendingInvitesOnRegistration(t *testing.T) {
	ownerA, ownerB := domain.NewUserID(), domain.NewUserID()
	tripA, _, err := newTrip(t, ownerA).InviteCollaborator("ana@example.com", domain.RoleEditor, nil)
	require.NoError(t, err)
	tripB, _, err := newTrip(t, ownerB).InviteCollaborator("ana@example.com", domain.RoleViewer, nil)
	require.NoError(t, err)
	tripC, _, err := newTrip(t, ownerB).InviteCollaborator("someone@example.com", domain.RoleViewer, nil)
	require.NoError(t, err)
	repo, st := memTrips(tripA, tripB, tripC)
	svc, audit := newInviteService(repo, &mockUserRepo{})
	ana := domain.User{ID: domain.NewUserID(), Email: "ana@example.com"}

	linked, err := svc.LinkPendingInvitesOnRegistration(context.Background(), ana)

	require.NoError(t, err)
	assert.Equal(t, 2, linked)
	for id, want := range map[domain.TripID]domain.Role{tripA.ID: domain.RoleEditor, tripB.ID: domain.RoleViewer} {
		got := st.get(id)
		m, ok := got.Member(ana.ID)
		require.True(t, ok)
		assert.Equal(t, want, m.Role)
		assert.Equal(t, domain.InviteStatusAccepted, got.Invites[0].Status)
	}
	_, ok := st.get(tripC.ID).Member(ana.ID)
	assert.False(t, ok)
	assert.Equal(t, []string{domain.ActionInviteAccepted, domain.ActionInviteAccepted}, audit.actions())
}

func TestInviteService_LinkPendingInvites_RetriesLostRace(t *testing.T) {
	owner := domain.NewUserID()
	trip, _, err := newTrip(t, owner).InviteCollaborator("ana@example.com", domain.RoleEditor, nil)
	require.NoError(t, err)
	repo, st := memTrips(trip)
	save := repo.save
	lost := false
	repo.save = func(ctx context.Context, tr domain.Trip) (domain.Trip, error) {
		if !lost {
			lost = true
			tr.Version--
		}
		return save(ctx, tr)
	}
	svc, _ := newInviteService(repo, &mockUserRepo{})
	ana := domain.User{ID: domain.NewUserID(), Email: "ana@example.com"}

	linked, err := svc.LinkPendingInvitesOnRegistration(context.Background(), ana)

	require.NoError(t, err)
	assert.Equal(t, 1, linked)
	_, ok := st.get(trip.ID).Member(ana.ID)
	assert.True(t, ok)
}

func TestInviteService_LinkPendingInvites_ContinuesAfterFailure(t *testing.T) {
	owner := domain.NewUserID()
	tripA, _, err := newTrip(t, owner).InviteCollaborator("ana@example.com", domain.RoleEditor, nil)
	require.NoError(t, err)
	repo, _ := memTrips(tripA)
	missing := domain.NewTripID()
	list := repo.listPendingTrips
	repo.listPendingTrips = func(ctx context.Context, email string) ([]domain.TripID, error) {
		ids, err := list(ctx, email)
		return append([]domain.TripID{missing}, ids...), err
	}
	svc, _ := newInviteService(repo, &mockUserRepo{})

	linked, err := svc.LinkPendingInvitesOnRegistration(context.Background(), domain.User{ID: domain.NewUserID(), Email: "ana@example.com"})

	assert.Equal(t, 1, linked)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInviteService_LinkPendingInvites_ExistingMemberIsNotRetried(t *testing.T) {
	owner := domain.NewUserID()
	ana := domain.User{ID: domain.NewUserID(), Email: "ana@example.com"}
	trip := withMember(t, newTrip(t, owner), "ana.work@example.com", ana.ID, domain.RoleViewer)
	trip, _, err := trip.InviteCollaborator(ana.Email, domain.RoleEditor, nil)
	require.NoError(t, err)
	repo, st := memTrips(trip)
	get := repo.getByID
	loads := 0
	repo.getByID = func(ctx context.Context, id domain.TripID) (domain.Trip, error) {
		loads++
		return get(ctx, id)
	}
	svc, audit := newInviteService(repo, &mockUserRepo{})

	linked, err := svc.LinkPendingInvitesOnRegistration(context.Background(), ana)

	assert.Equal(t, 0, linked)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, loads, "a conflict from the aggregate is final")
	assert.Equal(t, 0, st.saves)
	assert.Empty(t, audit.actions())
}
