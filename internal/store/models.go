package store

import "time"

// User represents a person authenticated via OIDC.
type User struct {
	ID           int64     `json:"id"`
	OAuthSubject string    `json:"-"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// NoteKind distinguishes regular notes from auto-managed daily notes.
type NoteKind string

const (
	NoteKindRegular NoteKind = "REGULAR"
	NoteKindDaily   NoteKind = "DAILY"
)

// Note is a markdown document owned by a user. Daily notes additionally carry
// the calendar date they belong to.
type Note struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Kind      NoteKind  `json:"kind"`
	Date      *string   `json:"date,omitempty"`
	FolderID  *string   `json:"folder_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteSearchResult pairs a note with its full-text rank.
type NoteSearchResult struct {
	Note Note    `json:"note"`
	Rank float32 `json:"rank"`
}

// Folder is a node in a user's folder tree.
type Folder struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CalendarConnection stores the OAuth credential set linking a user to one
// external calendar account. Tokens never leave the server.
type CalendarConnection struct {
	ID             string     `json:"id"`
	UserID         int64      `json:"user_id"`
	Provider       string     `json:"provider"`
	AccountEmail   string     `json:"account_email"`
	AccountName    *string    `json:"account_name,omitempty"`
	AccessToken    string     `json:"-"`
	RefreshToken   *string    `json:"-"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Preferences holds per-user settings.
type Preferences struct {
	UserID            int64   `json:"user_id"`
	DefaultFolderID   *string `json:"default_folder_id,omitempty"`
	TimeZone          string  `json:"time_zone"`
	DailyNotesEnabled bool    `json:"daily_notes_enabled"`
}

// Transcription records an audio transcription request and its result text.
// The speech-to-text provider call itself happens outside this server.
type Transcription struct {
	ID              string    `json:"id"`
	UserID          int64     `json:"user_id"`
	NoteID          *string   `json:"note_id,omitempty"`
	Status          string    `json:"status"`
	Text            string    `json:"text"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}
