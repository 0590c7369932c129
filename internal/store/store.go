package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store aggregates repositories backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool

	Users          UserRepository
	Notes          NoteRepository
	Folders        FolderRepository
	Connections    ConnectionRepository
	Preferences    PreferencesRepository
	Transcriptions TranscriptionRepository
}

// New wires concrete repository implementations with a shared connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:           pool,
		Users:          &userRepo{pool: pool},
		Notes:          &noteRepo{pool: pool},
		Folders:        &folderRepo{pool: pool},
		Connections:    &connectionRepo{pool: pool},
		Preferences:    &preferencesRepo{pool: pool},
		Transcriptions: &transcriptionRepo{pool: pool},
	}
}

// HealthCheck verifies that the underlying database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	defer observeDB(ctx, "db.healthcheck")()
	return s.pool.Ping(ctx)
}
