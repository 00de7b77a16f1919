package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/handler"
	"github.com/tiagobluiz/travel-companion/internal/middleware"
	"github.com/tiagobluiz/travel-companion/internal/service"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create           func(ctx context.Context, actor *domain.UserID, in service.TripInput) (domain.Trip, error)
	get              func(ctx context.Context, actor *domain.UserID, id domain.TripID) (domain.Trip, error)
	listMine         func(ctx context.Context, actor *domain.UserID, p domain.PaginationParams) ([]domain.TripSummary, int64, error)
	updateDetails    func(ctx context.Context, actor *domain.UserID, id domain.TripID, name string, start, end time.Time) (domain.Trip, error)
	changeVisibility func(ctx context.Context, actor *domain.UserID, id domain.TripID, v domain.Visibility) (domain.Trip, error)
	delete           func(ctx context.Context, actor *domain.UserID, id domain.TripID) error
	changeMemberRole func(ctx context.Context, actor *domain.UserID, id domain.TripID, member domain.UserID, role domain.Role) (domain.Trip, error)
	removeMember     func(ctx context.Context, actor *domain.UserID, id domain.TripID, member domain.UserID) (domain.Trip, error)
	auditLog         func(ctx context.Context, actor *domain.UserID, id domain.TripID, limit *int) ([]domain.AuditEvent, error)
}

func (m *mockTripServicer) Create(ctx context.Context, actor *domain.UserID, in service.TripInput) (domain.Trip, error) {
	return m.create(ctx, actor, in)
}
func (m *mockTripServicer) Get(ctx context.Context, actor *domain.UserID, id domain.TripID) (domain.Trip, error) {
	return m.get(ctx, actor, id)
}
func (m *mockTripServicer) ListMine(ctx context.Context, actor *domain.UserID, p domain.PaginationParams) ([]domain.TripSummary, int64, error) {
	return m.listMine(ctx, actor, p)
}
func (m *mockTripServicer) UpdateDetails(ctx context.Context, actor *domain.UserID, id domain.TripID, name string, start, end time.Time) (domain.Trip, error) {
	return m.updateDetails(ctx, actor, id, name, start, end)
}
func (m *mockTripServicer) ChangeVisibility(ctx context.Context, actor *domain.UserID, id domain.TripID, v domain.Visibility) (domain.Trip, error) {
	return m.changeVisibility(ctx, actor, id, v)
}
func (m *mockTripServicer) Delete(ctx context.Context, actor *domain.UserID, id domain.TripID) error {
	return m.delete(ctx, actor, id)
}
func (m *mockTripServicer) ChangeMemberRole(ctx context.Context, actor *domain.UserID, id domain.TripID, member domain.UserID, role domain.Role) (domain.Trip, error) {
	return m.changeMemberRole(ctx, actor, id, member, role)
}
func (m *mockTripServicer) RemoveMember(ctx context.Context, actor *domain.UserID, id domain.TripID, member domain.UserID) (domain.Trip, error) {
	return m.removeMember(ctx, actor, id, member)
}
func (m *mockTripServicer) AuditLog(ctx context.Context, actor *domain.UserID, id domain.TripID, limit *int) ([]domain.AuditEvent, error) {
	return m.auditLog(ctx, actor, id, limit)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockItineraryServicer struct {
	get        func(ctx context.Context, actor *domain.UserID, id domain.TripID) (domain.Itinerary, error)
	export     func(ctx context.Context, actor *domain.UserID, id domain.TripID) ([]domain.ExportRow, error)
	addItem    func(ctx context.Context, actor *domain.UserID, id domain.TripID, item domain.ItineraryItem) (domain.ItineraryItem, error)
	updateItem func(ctx context.Context, actor *domain.UserID, id domain.TripID, item domain.ItineraryItem) (domain.ItineraryItem, error)
	removeItem func(ctx context.Context, actor *domain.UserID, id domain.TripID, itemID domain.ItemID) error
}

func (m *mockItineraryServicer) Get(ctx context.Context, actor *domain.UserID, id domain.TripID) (domain.Itinerary, error) {
	return m.get(ctx, actor, id)
}
func (m *mockItineraryServicer) Export(ctx context.Context, actor *domain.UserID, id domain.TripID) ([]domain.ExportRow, error) {
	return m.export(ctx, actor, id)
}
func (m *mockItineraryServicer) AddItem(ctx context.Context, actor *domain.UserID, id domain.TripID, item domain.ItineraryItem) (domain.ItineraryItem, error) {
	return m.addItem(ctx, actor, id, item)
}
func (m *mockItineraryServicer) UpdateItem(ctx context.Context, actor *domain.UserID, id domain.TripID, item domain.ItineraryItem) (domain.ItineraryItem, error) {
	return m.updateItem(ctx, actor, id, item)
}
func (m *mockItineraryServicer) RemoveItem(ctx context.Context, actor *domain.UserID, id domain.TripID, itemID domain.ItemID) error {
	return m.removeItem(ctx, actor, id, itemID)
}

var _ handler.ItineraryServicer = (*mockItineraryServicer)(nil)

type mockInviteServicer struct {
	invite func(ctx context.Context, actor *domain.UserID, id domain.TripID, email string, role domain.Role) (domain.Invite, error)
	revoke func(ctx context.Context, actor *domain.UserID, id domain.TripID, email string) (domain.Invite, error)
	list   func(ctx context.Context, actor *domain.UserID, id domain.TripID) ([]domain.Invite, error)
}

func (m *mockInviteServicer) Invite(ctx context.Context, actor *domain.UserID, id domain.TripID, email string, role domain.Role) (domain.Invite, error) {
	return m.invite(ctx, actor, id, email, role)
}
func (m *mockInviteServicer) Revoke(ctx context.Context, actor *domain.UserID, id domain.TripID, email string) (domain.Invite, error) {
	return m.revoke(ctx, actor, id, email)
}
func (m *mockInviteServicer) List(ctx context.Context, actor *domain.UserID, id domain.TripID) ([]domain.Invite, error) {
	return m.list(ctx, actor, id)
}

var _ handler.InviteServicer = (*mockInviteServicer)(nil)

type mockAuthServicer struct {
	register func(ctx context.Context, in service.RegisterInput) (service.Session, error)
	login    func(ctx context.Context, email, password string) (service.Session, error)
	me       func(ctx context.Context, actor *domain.UserID) (domain.User, error)
}

func (m *mockAuthServicer) Register(ctx context.Context, in service.RegisterInput) (service.Session, error) {
	return m.register(ctx, in)
}
func (m *mockAuthServicer) Login(ctx context.Context, email, password string) (service.Session, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuthServicer) Me(ctx context.Context, actor *domain.UserID) (domain.User, error) {
	return m.me(ctx, actor)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

type mockAuditServicer struct {
	listMine func(ctx context.Context, actor *domain.UserID, limit *int) ([]domain.AuditEvent, error)
}

func (m *mockAuditServicer) ListMine(ctx context.Context, actor *domain.UserID, limit *int) ([]domain.AuditEvent, error) {
	return m.listMine(ctx, actor, limit)
}

var _ handler.AuditServicer = (*mockAuditServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into its chi router.
// A non-nil actor is placed in the request context the way the
// authenticator middleware does in production.
func newHTTPHandler(svc handler.Services, actor *domain.UserID) http.Handler {
	routes := handler.NewServer(svc, []byte("openapi: 3.0.3\n"), nil).Routes()
	if actor == nil {
		return routes
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routes.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), *actor)))
	})
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func tripFixture(owner domain.UserID) domain.Trip {
	return domain.Trip{
		ID:          domain.NewTripID(),
		Name:        "Lisbon",
		StartDate:   date(2026, 1, 2),
		EndDate:     date(2026, 1, 5),
		Visibility:  domain.VisibilityPrivate,
		Memberships: []domain.Membership{{UserID: owner, Role: domain.RoleOwner}},
		Version:     1,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// decodeError decodes the standard error envelope.
func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}
