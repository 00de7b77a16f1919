// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API at server start-up and in tests.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS

// Up applies every pending migration to db and returns the versions it applied,
// in order. It is a no-op on an up-to-date database.
func Up(ctx context.Context, db *sql.DB) ([]int64, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		return nil, fmt.Errorf("migrations.Up: create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations.Up: %w", err)
	}
	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}
