package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transcriptionRepo struct {
	pool *pgxpool.Pool
}

const transcriptionColumns = `id, user_id, note_id, status, text, duration_seconds, created_at`

func scanTranscription(row pgx.Row) (*Transcription, error) {
	var t Transcription
	err := row.Scan(&t.ID, &t.UserID, &t.NoteID, &t.Status, &t.Text, &t.DurationSeconds, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transcription: %w", err)
	}
	return &t, nil
}

func (r *transcriptionRepo) Create(ctx context.Context, tr Transcription) (*Transcription, error) {
	defer observeDB(ctx, "transcriptions.create")()
	const q = `INSERT INTO transcriptions (id, user_id, note_id, status)
VALUES ($1, $2, $3, 'pending')
RETURNING ` + transcriptionColumns
	return scanTranscription(r.pool.QueryRow(ctx, q, tr.ID, tr.UserID, tr.NoteID))
}

func (r *transcriptionRepo) GetByID(ctx context.Context, userID int64, id string) (*Transcription, error) {
	defer observeDB(ctx, "transcriptions.get_by_id")()
	const q = `SELECT ` + transcriptionColumns + ` FROM transcriptions WHERE user_id = $1 AND id = $2`
	return scanTranscription(r.pool.QueryRow(ctx, q, userID, id))
}

func (r *transcriptionRepo) ListByUser(ctx context.Context, userID int64) ([]Transcription, error) {
	defer observeDB(ctx, "transcriptions.list_by_user")()
	const q = `SELECT ` + transcriptionColumns + ` FROM transcriptions
WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}
	defer rows.Close()

	var trs []Transcription
	for rows.Next() {
		t, err := scanTranscription(rows)
		if err != nil {
			return nil, err
		}
		trs = append(trs, *t)
	}
	return trs, rows.Err()
}

func (r *transcriptionRepo) Complete(ctx context.Context, userID int64, id, text string, durationSeconds float64) (*Transcription, error) {
	defer observeDB(ctx, "transcriptions.complete")()
	const q = `UPDATE transcriptions SET status = 'completed', text = $3, duration_seconds = $4
WHERE user_id = $1 AND id = $2
RETURNING ` + transcriptionColumns
	return scanTranscription(r.pool.QueryRow(ctx, q, userID, id, text, durationSeconds))
}
