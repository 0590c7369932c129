package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type folderRepo struct {
	pool *pgxpool.Pool
}

const folderColumns = `id, user_id, name, parent_id, created_at`

func scanFolder(row pgx.Row) (*Folder, error) {
	var f Folder
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.ParentID, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan folder: %w", err)
	}
	return &f, nil
}

func (r *folderRepo) Create(ctx context.Context, folder Folder) (*Folder, error) {
	defer observeDB(ctx, "folders.create")()
	const q = `INSERT INTO folders (id, user_id, name, parent_id)
VALUES ($1, $2, $3, $4)
RETURNING ` + folderColumns
	return scanFolder(r.pool.QueryRow(ctx, q, folder.ID, folder.UserID, folder.Name, folder.ParentID))
}

func (r *folderRepo) GetByID(ctx context.Context, userID int64, id string) (*Folder, error) {
	defer observeDB(ctx, "folders.get_by_id")()
	const q = `SELECT ` + folderColumns + ` FROM folders WHERE user_id = $1 AND id = $2`
	return scanFolder(r.pool.QueryRow(ctx, q, userID, id))
}

func (r *folderRepo) FindChildByName(ctx context.Context, userID int64, parentID *string, name string) (*Folder, error) {
	defer observeDB(ctx, "folders.find_child")()
	const q = `SELECT ` + folderColumns + ` FROM folders
WHERE user_id = $1 AND name = $2 AND parent_id IS NOT DISTINCT FROM $3::uuid`
	return scanFolder(r.pool.QueryRow(ctx, q, userID, name, parentID))
}

func (r *folderRepo) ListByUser(ctx context.Context, userID int64) ([]Folder, error) {
	defer observeDB(ctx, "folders.list_by_user")()
	const q = `SELECT ` + folderColumns + ` FROM folders WHERE user_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *f)
	}
	return folders, rows.Err()
}

func (r *folderRepo) Rename(ctx context.Context, userID int64, id, name string) error {
	defer observeDB(ctx, "folders.rename")()
	tag, err := r.pool.Exec(ctx, `UPDATE folders SET name = $3 WHERE user_id = $1 AND id = $2`, userID, id, name)
	if err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a folder. Children are reparented to the deleted folder's
// parent and contained notes drop to no folder, both via ON DELETE SET NULL
// plus the explicit reparent below.
func (r *folderRepo) Delete(ctx context.Context, userID int64, id string) error {
	defer observeDB(ctx, "folders.delete")()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete folder: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var parentID *string
	err = tx.QueryRow(ctx, `SELECT parent_id FROM folders WHERE user_id = $1 AND id = $2`, userID, id).Scan(&parentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load folder parent: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE folders SET parent_id = $3 WHERE user_id = $1 AND parent_id = $2`, userID, id, parentID); err != nil {
		return fmt.Errorf("reparent children: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM folders WHERE user_id = $1 AND id = $2`, userID, id); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return tx.Commit(ctx)
}
