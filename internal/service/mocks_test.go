package service_test

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/repo"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
// memTrips wires all of them to an in-memory map for scenario tests.
type mockTripRepo struct {
	create           func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID          func(ctx context.Context, id domain.TripID) (domain.Trip, error)
	save             func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete           func(ctx context.Context, id domain.TripID) error
	listByMember     func(ctx context.Context, userID domain.UserID, p domain.PaginationParams) ([]domain.TripSummary, int64, error)
	listPendingTrips func(ctx context.Context, email string) ([]domain.TripID, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.save(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id domain.TripID) error {
	return m.delete(ctx, id)
}
func (m *mockTripRepo) ListByMember(ctx context.Context, userID domain.UserID, p domain.PaginationParams) ([]domain.TripSummary, int64, error) {
	return m.listByMember(ctx, userID, p)
}
func (m *mockTripRepo) ListIDsWithPendingInvite(ctx context.Context, email string) ([]domain.TripID, error) {
	return m.listPendingTrips(ctx, email)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// tripStore is the state behind memTrips.
type tripStore struct {
	mu    sync.Mutex
	trips map[domain.TripID]domain.Trip
	saves int
}

func (s *tripStore) get(id domain.TripID) domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trips[id]
}

// memTrips returns a repo that keeps trips in memory and enforces the
// version check the way the Postgres repo does.
func memTrips(seed ...domain.Trip) (*mockTripRepo, *tripStore) {
	st := &tripStore{trips: map[domain.TripID]domain.Trip{}}
	for _, t := range seed {
		if t.Version == 0 {
			t.Version = 1
		}
		st.trips[t.ID] = t
	}
	m := &mockTripRepo{
		create: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			st.mu.Lock()
			defer st.mu.Unlock()
			t.Version = 1
			st.trips[t.ID] = t
			return t, nil
		},
		getByID: func(_ context.Context, id domain.TripID) (domain.Trip, error) {
			st.mu.Lock()
			defer st.mu.Unlock()
			t, ok := st.trips[id]
			if !ok {
				return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
			}
			return t, nil
		},
		save: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			st.mu.Lock()
			defer st.mu.Unlock()
			cur, ok := st.trips[t.ID]
			if !ok {
				return domain.Trip{}, domain.ErrNotFound
			}
			if cur.Version != t.Version {
				return domain.Trip{}, fmt.Errorf("repo.TripRepo.Save: %w", domain.ErrConflict)
			}
			t.Version++
			st.trips[t.ID] = t
			st.saves++
			return t, nil
		},
		delete: func(_ context.Context, id domain.TripID) error {
			st.mu.Lock()
			defer st.mu.Unlock()
			if _, ok := st.trips[id]; !ok {
				return domain.ErrNotFound
			}
			delete(st.trips, id)
			return nil
		},
		listPendingTrips: func(_ context.Context, email string) ([]domain.TripID, error) {
			st.mu.Lock()
			defer st.mu.Unlock()
			var ids []domain.TripID
			for id, t := range st.trips {
				if _, ok := t.PendingInvite(email); ok {
					ids = append(ids, id)
				}
			}
			return ids, nil
		},
	}
	return m, st
}

// mockUserRepo is a hand-written test double for repo.UserRepo backed by a slice.
type mockUserRepo struct {
	mu    sync.Mutex
	users []domain.User
}

func (m *mockUserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.users, func(x domain.User) bool { return x.Email == u.Email }) {
		return domain.User{}, domain.ErrConflict
	}
	u.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.users = append(m.users, u)
	return u, nil
}
func (m *mockUserRepo) GetByID(_ context.Context, id domain.UserID) (domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID == id })
}
func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	return m.find(func(u domain.User) bool { return u.Email == email })
}
func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}
func (m *mockUserRepo) find(match func(domain.User) bool) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.users, match)
	if i < 0 {
		return domain.User{}, domain.ErrNotFound
	}
	return m.users[i], nil
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

// mockAuditRepo records appended events.
type mockAuditRepo struct {
	mu        sync.Mutex
	events    []domain.AuditEvent
	appendErr error
	filters   []domain.AuditFilter
}

func (m *mockAuditRepo) Append(_ context.Context, evt domain.AuditEvent) (domain.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return domain.AuditEvent{}, m.appendErr
	}
	m.events = append(m.events, evt)
	return evt, nil
}
func (m *mockAuditRepo) Search(_ context.Context, f domain.AuditFilter) ([]domain.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, f)
	return slices.Clone(m.events), nil
}

func (m *mockAuditRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Action)
	}
	return out
}

var _ repo.AuditRepo = (*mockAuditRepo)(nil)

// ---- helpers ---------------------------------------------------------------

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func ptr[T any](v T) *T { return &v }

// newTrip builds a private 2026-01-02..2026-01-05 trip owned by owner.
func newTrip(t *testing.T, owner domain.UserID) domain.Trip {
	t.Helper()
	trip, err := domain.NewTrip(owner, "Lisbon", date(2026, 1, 2), date(2026, 1, 5), domain.VisibilityPrivate)
	require.NoError(t, err)
	return trip
}

// withMember adds userID to trip with role through the invite lifecycle.
func withMember(t *testing.T, trip domain.Trip, email string, userID domain.UserID, role domain.Role) domain.Trip {
	t.Helper()
	trip, _, err := trip.InviteCollaborator(email, role, nil)
	require.NoError(t, err)
	trip, _, err = trip.AcceptInvite(email, userID)
	require.NoError(t, err)
	return trip
}
