// Package testutil provides shared helpers for integration tests.
// Helpers in this package skip automatically when TEST_DATABASE_URL is not
// set, so unit tests run without a database.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/tiagobluiz/travel-companion/migrations"
)

// Tables lists every table created by the embedded migrations.
var Tables = []string{"users", "trips", "trip_memberships", "trip_invites", "itinerary_items", "audit_events"}

// NewPool opens a *pgxpool.Pool connected to TEST_DATABASE_URL.
// The test is skipped when the variable is not set; the pool is closed when
// the test and its subtests finish.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := requireDSN(t)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB opens a *sql.DB on TEST_DATABASE_URL using the pgx database/sql
// driver, for callers such as goose that need database/sql.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := openSQLDB(requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// MustMigrate applies all pending migrations to dsn and panics on failure.
// Use it from TestMain, where no *testing.T is available.
func MustMigrate(dsn string) {
	db, err := openSQLDB(dsn)
	if err != nil {
		panic("testutil.MustMigrate: " + err.Error())
	}
	defer db.Close()

	if _, err := migrations.Up(context.Background(), db); err != nil {
		panic("testutil.MustMigrate: " + err.Error())
	}
}

func openSQLDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// requireDSN returns TEST_DATABASE_URL, skipping the test if it is not set.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
