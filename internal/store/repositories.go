package store

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	UpsertOAuthUser(ctx context.Context, subject, email, name string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// NoteRepository handles note storage, including daily-note lookups and
// full-text search.
type NoteRepository interface {
	Create(ctx context.Context, note Note) (*Note, error)
	GetByID(ctx context.Context, userID int64, id string) (*Note, error)
	ListByFolder(ctx context.Context, userID int64, folderID *string) ([]Note, error)
	Update(ctx context.Context, userID int64, id string, title, content string, folderID *string) (*Note, error)
	UpdateContent(ctx context.Context, userID int64, id, content string) (*Note, error)
	Delete(ctx context.Context, userID int64, id string) error
	FindDaily(ctx context.Context, userID int64, date string) (*Note, error)
	Search(ctx context.Context, userID int64, query string, limit int) ([]NoteSearchResult, error)
}

// FolderRepository handles folder tree storage.
type FolderRepository interface {
	Create(ctx context.Context, folder Folder) (*Folder, error)
	GetByID(ctx context.Context, userID int64, id string) (*Folder, error)
	FindChildByName(ctx context.Context, userID int64, parentID *string, name string) (*Folder, error)
	ListByUser(ctx context.Context, userID int64) ([]Folder, error)
	Rename(ctx context.Context, userID int64, id, name string) error
	Delete(ctx context.Context, userID int64, id string) error
}

// ConnectionRepository handles calendar connection storage.
type ConnectionRepository interface {
	Upsert(ctx context.Context, conn CalendarConnection) (*CalendarConnection, error)
	GetByID(ctx context.Context, userID int64, id string) (*CalendarConnection, error)
	ListByUser(ctx context.Context, userID int64) ([]CalendarConnection, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]CalendarConnection, error)
	UpdateTokens(ctx context.Context, id, accessToken string, refreshToken *string, expiresAt *time.Time) error
	Deactivate(ctx context.Context, userID int64, id string) error
}

// PreferencesRepository handles per-user settings.
type PreferencesRepository interface {
	Get(ctx context.Context, userID int64) (*Preferences, error)
	Upsert(ctx context.Context, prefs Preferences) (*Preferences, error)
}

// TranscriptionRepository handles transcription record storage.
type TranscriptionRepository interface {
	Create(ctx context.Context, tr Transcription) (*Transcription, error)
	GetByID(ctx context.Context, userID int64, id string) (*Transcription, error)
	ListByUser(ctx context.Context, userID int64) ([]Transcription, error)
	Complete(ctx context.Context, userID int64, id, text string, durationSeconds float64) (*Transcription, error)
}
