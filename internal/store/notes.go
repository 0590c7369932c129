package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type noteRepo struct {
	pool *pgxpool.Pool
}

const noteColumns = `id, user_id, title, content, kind, date::text, folder_id, created_at, updated_at`

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Kind, &n.Date, &n.FolderID, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan note: %w", err)
	}
	return &n, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *noteRepo) Create(ctx context.Context, note Note) (*Note, error) {
	defer observeDB(ctx, "notes.create")()
	const q = `INSERT INTO notes (id, user_id, title, content, kind, date, folder_id)
VALUES ($1, $2, $3, $4, $5, $6::date, $7)
RETURNING ` + noteColumns
	created, err := scanNote(r.pool.QueryRow(ctx, q, note.ID, note.UserID, note.Title, note.Content, note.Kind, note.Date, note.FolderID))
	if err != nil && isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return created, err
}

func (r *noteRepo) GetByID(ctx context.Context, userID int64, id string) (*Note, error) {
	defer observeDB(ctx, "notes.get_by_id")()
	const q = `SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1 AND id = $2`
	return scanNote(r.pool.QueryRow(ctx, q, userID, id))
}

func (r *noteRepo) ListByFolder(ctx context.Context, userID int64, folderID *string) ([]Note, error) {
	defer observeDB(ctx, "notes.list_by_folder")()
	const q = `SELECT ` + noteColumns + ` FROM notes
WHERE user_id = $1 AND ($2::uuid IS NULL OR folder_id = $2)
ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, q, userID, folderID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (r *noteRepo) Update(ctx context.Context, userID int64, id string, title, content string, folderID *string) (*Note, error) {
	defer observeDB(ctx, "notes.update")()
	const q = `UPDATE notes
SET title = $3, content = $4, folder_id = $5, updated_at = NOW()
WHERE user_id = $1 AND id = $2
RETURNING ` + noteColumns
	return scanNote(r.pool.QueryRow(ctx, q, userID, id, title, content, folderID))
}

func (r *noteRepo) UpdateContent(ctx context.Context, userID int64, id, content string) (*Note, error) {
	defer observeDB(ctx, "notes.update_content")()
	const q = `UPDATE notes SET content = $3, updated_at = NOW()
WHERE user_id = $1 AND id = $2
RETURNING ` + noteColumns
	return scanNote(r.pool.QueryRow(ctx, q, userID, id, content))
}

func (r *noteRepo) Delete(ctx context.Context, userID int64, id string) error {
	defer observeDB(ctx, "notes.delete")()
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *noteRepo) FindDaily(ctx context.Context, userID int64, date string) (*Note, error) {
	defer observeDB(ctx, "notes.find_daily")()
	const q = `SELECT ` + noteColumns + ` FROM notes
WHERE user_id = $1 AND kind = 'DAILY' AND date = $2::date`
	return scanNote(r.pool.QueryRow(ctx, q, userID, date))
}

// Search ranks notes against a websearch-style query using the generated
// tsvector column.
func (r *noteRepo) Search(ctx context.Context, userID int64, query string, limit int) ([]NoteSearchResult, error) {
	defer observeDB(ctx, "notes.search")()
	const q = `SELECT ` + noteColumns + `, ts_rank(search, websearch_to_tsquery('english', $2)) AS rank
FROM notes
WHERE user_id = $1 AND search @@ websearch_to_tsquery('english', $2)
ORDER BY rank DESC, updated_at DESC
LIMIT $3`
	rows, err := r.pool.Query(ctx, q, userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	defer rows.Close()

	var results []NoteSearchResult
	for rows.Next() {
		var res NoteSearchResult
		n := &res.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Kind, &n.Date, &n.FolderID, &n.CreatedAt, &n.UpdatedAt, &res.Rank); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
