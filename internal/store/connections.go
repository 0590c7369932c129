package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type connectionRepo struct {
	pool *pgxpool.Pool
}

const connectionColumns = `id, user_id, provider, account_email, account_name,
access_token, refresh_token, token_expires_at, is_active, created_at, updated_at`

func scanConnection(row pgx.Row) (*CalendarConnection, error) {
	var c CalendarConnection
	err := row.Scan(&c.ID, &c.UserID, &c.Provider, &c.AccountEmail, &c.AccountName,
		&c.AccessToken, &c.RefreshToken, &c.TokenExpiresAt, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan connection: %w", err)
	}
	return &c, nil
}

// Upsert creates a connection or, when the (user, provider, account_email)
// triple already exists, refreshes its tokens and reactivates it.
func (r *connectionRepo) Upsert(ctx context.Context, conn CalendarConnection) (*CalendarConnection, error) {
	defer observeDB(ctx, "connections.upsert")()
	const q = `INSERT INTO calendar_connections
(id, user_id, provider, account_email, account_name, access_token, refresh_token, token_expires_at, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
ON CONFLICT (user_id, provider, account_email) DO UPDATE SET
	account_name = EXCLUDED.account_name,
	access_token = EXCLUDED.access_token,
	refresh_token = COALESCE(EXCLUDED.refresh_token, calendar_connections.refresh_token),
	token_expires_at = EXCLUDED.token_expires_at,
	is_active = TRUE,
	updated_at = NOW()
RETURNING ` + connectionColumns
	return scanConnection(r.pool.QueryRow(ctx, q, conn.ID, conn.UserID, conn.Provider,
		conn.AccountEmail, conn.AccountName, conn.AccessToken, conn.RefreshToken, conn.TokenExpiresAt))
}

func (r *connectionRepo) GetByID(ctx context.Context, userID int64, id string) (*CalendarConnection, error) {
	defer observeDB(ctx, "connections.get_by_id")()
	const q = `SELECT ` + connectionColumns + ` FROM calendar_connections WHERE user_id = $1 AND id = $2`
	return scanConnection(r.pool.QueryRow(ctx, q, userID, id))
}

func (r *connectionRepo) ListByUser(ctx context.Context, userID int64) ([]CalendarConnection, error) {
	defer observeDB(ctx, "connections.list_by_user")()
	const q = `SELECT ` + connectionColumns + ` FROM calendar_connections
WHERE user_id = $1 ORDER BY created_at`
	return r.list(ctx, q, userID)
}

func (r *connectionRepo) ListActiveByUser(ctx context.Context, userID int64) ([]CalendarConnection, error) {
	defer observeDB(ctx, "connections.list_active")()
	const q = `SELECT ` + connectionColumns + ` FROM calendar_connections
WHERE user_id = $1 AND is_active ORDER BY created_at`
	return r.list(ctx, q, userID)
}

func (r *connectionRepo) list(ctx context.Context, q string, userID int64) ([]CalendarConnection, error) {
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var conns []CalendarConnection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, *c)
	}
	return conns, rows.Err()
}

func (r *connectionRepo) UpdateTokens(ctx context.Context, id, accessToken string, refreshToken *string, expiresAt *time.Time) error {
	defer observeDB(ctx, "connections.update_tokens")()
	const q = `UPDATE calendar_connections SET
	access_token = $2,
	refresh_token = COALESCE($3, refresh_token),
	token_expires_at = $4,
	updated_at = NOW()
WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, accessToken, refreshToken, expiresAt)
	if err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *connectionRepo) Deactivate(ctx context.Context, userID int64, id string) error {
	defer observeDB(ctx, "connections.deactivate")()
	const q = `UPDATE calendar_connections SET is_active = FALSE, updated_at = NOW()
WHERE user_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, q, userID, id)
	if err != nil {
		return fmt.Errorf("deactivate connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
