package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `id, oauth_subject, email, name, created_at, last_login_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.OAuthSubject, &u.Email, &u.Name, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) UpsertOAuthUser(ctx context.Context, subject, email, name string) (*User, error) {
	defer observeDB(ctx, "users.upsert")()
	const q = `INSERT INTO users (oauth_subject, email, name)
VALUES ($1, $2, $3)
ON CONFLICT (oauth_subject) DO UPDATE
SET email = EXCLUDED.email, name = EXCLUDED.name, last_login_at = NOW()
RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, subject, email, name))
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	defer observeDB(ctx, "users.get_by_id")()
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	defer observeDB(ctx, "users.get_by_email")()
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, q, email))
}
