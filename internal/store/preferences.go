package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type preferencesRepo struct {
	pool *pgxpool.Pool
}

// Get returns the stored preferences, or defaults when the user has never
// saved any.
func (r *preferencesRepo) Get(ctx context.Context, userID int64) (*Preferences, error) {
	defer observeDB(ctx, "preferences.get")()
	const q = `SELECT user_id, default_folder_id, time_zone, daily_notes_enabled
FROM preferences WHERE user_id = $1`
	var p Preferences
	err := r.pool.QueryRow(ctx, q, userID).Scan(&p.UserID, &p.DefaultFolderID, &p.TimeZone, &p.DailyNotesEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Preferences{UserID: userID, TimeZone: "UTC", DailyNotesEnabled: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &p, nil
}

func (r *preferencesRepo) Upsert(ctx context.Context, prefs Preferences) (*Preferences, error) {
	defer observeDB(ctx, "preferences.upsert")()
	const q = `INSERT INTO preferences (user_id, default_folder_id, time_zone, daily_notes_enabled)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET
	default_folder_id = EXCLUDED.default_folder_id,
	time_zone = EXCLUDED.time_zone,
	daily_notes_enabled = EXCLUDED.daily_notes_enabled
RETURNING user_id, default_folder_id, time_zone, daily_notes_enabled`
	var p Preferences
	err := r.pool.QueryRow(ctx, q, prefs.UserID, prefs.DefaultFolderID, prefs.TimeZone, prefs.DailyNotesEnabled).
		Scan(&p.UserID, &p.DefaultFolderID, &p.TimeZone, &p.DailyNotesEnabled)
	if err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}
	return &p, nil
}
