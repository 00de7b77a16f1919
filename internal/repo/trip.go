// Package repo contains all database access logic for the trip planner.
// Each port has its own file with an interface and a Postgres implementation.
// No business rules live here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tiagobluiz/travel-companion/internal/domain"
)

// querier is the read/write surface shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// db is satisfied by *pgxpool.Pool, pgx.Conn and pgx.Tx. Begin on a pgx.Tx
// opens a savepoint, so integration tests can pass a transaction that is
// rolled back after each test and still exercise the repo's own transactions.
type db interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TripRepo persists whole Trip aggregates: the trip row plus its
// memberships, invites and itinerary items.
type TripRepo interface {
	// Create inserts a new aggregate and returns it as stored (version 1,
	// timestamps set by the database).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID loads the full aggregate.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error)

	// Save writes the aggregate when trip.Version still matches the stored
	// version, bumping it by one. A stale version returns domain.ErrConflict;
	// a missing trip returns domain.ErrNotFound.
	Save(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip and, by cascade, all of its children.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id domain.TripID) error

	// ListByMember returns one page of the trips userID belongs to, most
	// recent start date first, and the total number of such trips.
	ListByMember(ctx context.Context, userID domain.UserID, p domain.PaginationParams) ([]domain.TripSummary, int64, error)

	// ListIDsWithPendingInvite returns every trip holding a pending invite
	// for the normalized email.
	ListIDsWithPendingInvite(ctx context.Context, email string) ([]domain.TripID, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, name, start_date, end_date, visibility, version, created_at, updated_at`

// Create inserts the trip row and its children in one transaction.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (id, name, start_date, end_date, visibility)
		VALUES (@id, @name, @start_date, @end_date, @visibility)`

	var out domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, q, tripArgs(trip)); err != nil {
			return err
		}
		if err := writeChildren(ctx, tx, trip); err != nil {
			return err
		}
		var err error
		out, err = loadTrip(ctx, tx, trip.ID)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapPgError(err))
	}
	return out, nil
}

// GetByID loads the trip row and its children.
func (r *pgTripRepo) GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	trip, err := loadTrip(ctx, r.db, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return trip, nil
}

// Save performs a version-checked update. The UPDATE takes the row lock, so
// a concurrent writer holding the same version blocks until this commits
// and then matches zero rows.
func (r *pgTripRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET name       = @name,
		    start_date = @start_date,
		    end_date   = @end_date,
		    visibility = @visibility,
		    version    = version + 1,
		    updated_at = now()
		WHERE id = @id AND version = @version`

	var out domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		args := tripArgs(trip)
		args["version"] = trip.Version
		tag, err := tx.Exec(ctx, q, args)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return missingOrStale(ctx, tx, trip.ID)
		}
		if err := writeChildren(ctx, tx, trip); err != nil {
			return err
		}
		out, err = loadTrip(ctx, tx, trip.ID)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Save: %w", mapPgError(err))
	}
	return out, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id domain.TripID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": uuid.UUID(id)})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// ListByMember returns a page of trip summaries for userID.
func (r *pgTripRepo) ListByMember(ctx context.Context, userID domain.UserID, p domain.PaginationParams) ([]domain.TripSummary, int64, error) {
	const countQ = `SELECT count(*) FROM trip_memberships WHERE user_id = @user_id`
	const q = `
		SELECT t.id, t.name, t.start_date, t.end_date, t.visibility, m.role
		FROM trips t
		JOIN trip_memberships m ON m.trip_id = t.id
		WHERE m.user_id = @user_id
		ORDER BY t.start_date DESC, t.id
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"user_id": uuid.UUID(userID), "limit": p.Limit, "offset": p.Offset()}

	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByMember: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByMember: %w", err)
	}
	defer rows.Close()

	out := []domain.TripSummary{}
	for rows.Next() {
		var (
			s          domain.TripSummary
			id         pgtype.UUID
			start, end pgtype.Date
			visibility string
			role       string
		)
		if err := rows.Scan(&id, &s.Name, &start, &end, &visibility, &role); err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListByMember: scan: %w", err)
		}
		s.ID = domain.TripID(id.Bytes)
		s.StartDate = start.Time
		s.EndDate = end.Time
		s.Visibility = domain.Visibility(visibility)
		if s.Role, err = domain.ParseRole(role); err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListByMember: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByMember: rows: %w", err)
	}
	return out, total, nil
}

// ListIDsWithPendingInvite returns trip IDs with a pending invite for email.
func (r *pgTripRepo) ListIDsWithPendingInvite(ctx context.Context, email string) ([]domain.TripID, error) {
	const q = `
		SELECT DISTINCT trip_id
		FROM trip_invites
		WHERE email = @email AND status = 'PENDING'
		ORDER BY trip_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"email": email})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListIDsWithPendingInvite: %w", err)
	}
	defer rows.Close()

	ids := []domain.TripID{}
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListIDsWithPendingInvite: scan: %w", err)
		}
		ids = append(ids, domain.TripID(id.Bytes))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListIDsWithPendingInvite: rows: %w", err)
	}
	return ids, nil
}

func tripArgs(t domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":         uuid.UUID(t.ID),
		"name":       t.Name,
		"start_date": t.StartDate,
		"end_date":   t.EndDate,
		"visibility": string(t.Visibility),
	}
}

// missingOrStale explains why a version-checked UPDATE matched no rows.
func missingOrStale(ctx context.Context, q querier, id domain.TripID) error {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = @id)`,
		pgx.NamedArgs{"id": uuid.UUID(id)}).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return fmt.Errorf("trip %s was modified concurrently: %w", id, domain.ErrConflict)
}

// writeChildren replaces every child row of the trip with the aggregate's
// current state. Slice order is stored in the position column.
func writeChildren(ctx context.Context, tx pgx.Tx, t domain.Trip) error {
	tripID := uuid.UUID(t.ID)
	for _, table := range []string{"trip_memberships", "trip_invites", "itinerary_items"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE trip_id = @trip_id`, pgx.NamedArgs{"trip_id": tripID}); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	const insertMember = `
		INSERT INTO trip_memberships (trip_id, user_id, role, position)
		VALUES (@trip_id, @user_id, @role, @position)`
	for i, m := range t.Memberships {
		_, err := tx.Exec(ctx, insertMember, pgx.NamedArgs{
			"trip_id":  tripID,
			"user_id":  uuid.UUID(m.UserID),
			"role":     m.Role.String(),
			"position": i,
		})
		if err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}
	}

	const insertInvite = `
		INSERT INTO trip_invites (id, trip_id, email, role, status, position, created_at)
		VALUES (@id, @trip_id, @email, @role, @status, @position, COALESCE(@created_at, now()))`
	for i, inv := range t.Invites {
		_, err := tx.Exec(ctx, insertInvite, pgx.NamedArgs{
			"id":         uuid.UUID(inv.ID),
			"trip_id":    tripID,
			"email":      inv.Email,
			"role":       inv.Role.String(),
			"status":     string(inv.Status),
			"position":   i,
			"created_at": nullTime(inv.CreatedAt),
		})
		if err != nil {
			return fmt.Errorf("insert invite: %w", err)
		}
	}

	const insertItem = `
		INSERT INTO itinerary_items (id, trip_id, place_name, item_date, notes, latitude, longitude, position)
		VALUES (@id, @trip_id, @place_name, @item_date, @notes, @latitude, @longitude, @position)`
	for i, it := range t.Items {
		_, err := tx.Exec(ctx, insertItem, pgx.NamedArgs{
			"id":         uuid.UUID(it.ID),
			"trip_id":    tripID,
			"place_name": it.PlaceName,
			"item_date":  it.Date, // nil becomes NULL
			"notes":      it.Notes,
			"latitude":   it.Latitude,
			"longitude":  it.Longitude,
			"position":   i,
		})
		if err != nil {
			return fmt.Errorf("insert itinerary item: %w", err)
		}
	}
	return nil
}

// loadTrip reads the trip row and all of its children.
func loadTrip(ctx context.Context, q querier, id domain.TripID) (domain.Trip, error) {
	args := pgx.NamedArgs{"id": uuid.UUID(id)}

	trip, err := scanTrip(q.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = @id`, args))
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.Memberships, err = loadMemberships(ctx, q, args); err != nil {
		return domain.Trip{}, err
	}
	if trip.Invites, err = loadInvites(ctx, q, args); err != nil {
		return domain.Trip{}, err
	}
	if trip.Items, err = loadItems(ctx, q, args); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

func loadMemberships(ctx context.Context, q querier, args pgx.NamedArgs) ([]domain.Membership, error) {
	rows, err := q.Query(ctx, `
		SELECT user_id, role FROM trip_memberships
		WHERE trip_id = @id ORDER BY position`, args)
	if err != nil {
		return nil, fmt.Errorf("memberships: %w", err)
	}
	defer rows.Close()

	out := []domain.Membership{}
	for rows.Next() {
		var (
			userID pgtype.UUID
			role   string
		)
		if err := rows.Scan(&userID, &role); err != nil {
			return nil, fmt.Errorf("memberships: scan: %w", err)
		}
		r, err := domain.ParseRole(role)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Membership{UserID: domain.UserID(userID.Bytes), Role: r})
	}
	return out, rows.Err()
}

func loadInvites(ctx context.Context, q querier, args pgx.NamedArgs) ([]domain.Invite, error) {
	rows, err := q.Query(ctx, `
		SELECT id, email, role, status, created_at FROM trip_invites
		WHERE trip_id = @id ORDER BY position`, args)
	if err != nil {
		return nil, fmt.Errorf("invites: %w", err)
	}
	defer rows.Close()

	out := []domain.Invite{}
	for rows.Next() {
		var (
			inv          domain.Invite
			id           pgtype.UUID
			role, status string
		)
		if err := rows.Scan(&id, &inv.Email, &role, &status, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("invites: scan: %w", err)
		}
		inv.ID = domain.InviteID(id.Bytes)
		if inv.Role, err = domain.ParseRole(role); err != nil {
			return nil, err
		}
		if inv.Status, err = domain.ParseInviteStatus(status); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func loadItems(ctx context.Context, q querier, args pgx.NamedArgs) ([]domain.ItineraryItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, place_name, item_date, notes, latitude, longitude FROM itinerary_items
		WHERE trip_id = @id ORDER BY position`, args)
	if err != nil {
		return nil, fmt.Errorf("itinerary items: %w", err)
	}
	defer rows.Close()

	out := []domain.ItineraryItem{}
	for rows.Next() {
		var (
			it   domain.ItineraryItem
			id   pgtype.UUID
			date pgtype.Date
		)
		if err := rows.Scan(&id, &it.PlaceName, &date, &it.Notes, &it.Latitude, &it.Longitude); err != nil {
			return nil, fmt.Errorf("itinerary items: scan: %w", err)
		}
		it.ID = domain.ItemID(id.Bytes)
		if date.Valid {
			d := date.Time
			it.Date = &d
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a trips row (tripColumns order) into a domain.Trip without children.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t          domain.Trip
		id         pgtype.UUID
		start, end pgtype.Date
		visibility string
	)
	err := s.Scan(&id, &t.Name, &start, &end, &visibility, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}
	t.ID = domain.TripID(id.Bytes)
	t.StartDate = start.Time
	t.EndDate = end.Time
	t.Visibility = domain.Visibility(visibility)
	return t, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// mapPgError turns constraint violations into domain errors. Unique
// violations become domain.ErrConflict and check/foreign-key violations
// become domain.ErrValidation; everything else passes through.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	case "23503", "23514":
		return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.ConstraintName)
	}
	return err
}
