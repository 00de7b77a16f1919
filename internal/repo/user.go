package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tiagobluiz/travel-companion/internal/domain"
)

// UserRepo defines the persistence operations for Users.
// Emails are expected to be normalized by the caller.
type UserRepo interface {
	// Create inserts a user. Returns domain.ErrConflict if the email is taken.
	Create(ctx context.Context, user domain.User) (domain.User, error)

	// GetByID returns domain.ErrNotFound if no such user exists.
	GetByID(ctx context.Context, id domain.UserID) (domain.User, error)

	// GetByEmail returns domain.ErrNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// ExistsByEmail reports whether a user with that email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `id, email, display_name, password_hash, created_at`

func (r *pgUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (id, email, display_name, password_hash)
		VALUES (@id, @email, @display_name, @password_hash)
		RETURNING ` + userColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":            uuid.UUID(user.ID),
		"email":         user.Email,
		"display_name":  user.DisplayName,
		"password_hash": user.PasswordHash,
	})
	result, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = @id`,
		pgx.NamedArgs{"id": uuid.UUID(id)})
	result, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = @email`,
		pgx.NamedArgs{"email": email})
	result, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = @email)`,
		pgx.NamedArgs{"email": email}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.UserRepo.ExistsByEmail: %w", err)
	}
	return exists, nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u  domain.User
		id pgtype.UUID
	)
	if err := s.Scan(&id, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.ID = domain.UserID(id.Bytes)
	return u, nil
}
