package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/store"
)

const (
	maxTitleLength     = 300
	maxContentLength   = 1 << 20 // 1 MiB of markdown
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// Service implements regular note CRUD and full-text search.
type Service struct {
	notes   store.NoteRepository
	folders store.FolderRepository
}

func NewService(notes store.NoteRepository, folders store.FolderRepository) *Service {
	return &Service{notes: notes, folders: folders}
}

func (s *Service) Create(ctx context.Context, userID int64, title, content string, folderID *string) (*store.Note, error) {
	if err := s.validate(ctx, userID, title, content, folderID); err != nil {
		return nil, err
	}
	return s.notes.Create(ctx, store.Note{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    strings.TrimSpace(title),
		Content:  content,
		Kind:     store.NoteKindRegular,
		FolderID: folderID,
	})
}

func (s *Service) Get(ctx context.Context, userID int64, id string) (*store.Note, error) {
	note, err := s.notes.GetByID(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("note", id)
	}
	return note, err
}

func (s *Service) List(ctx context.Context, userID int64, folderID *string) ([]store.Note, error) {
	return s.notes.ListByFolder(ctx, userID, folderID)
}

func (s *Service) Update(ctx context.Context, userID int64, id, title, content string, folderID *string) (*store.Note, error) {
	if err := s.validate(ctx, userID, title, content, folderID); err != nil {
		return nil, err
	}
	note, err := s.notes.Update(ctx, userID, id, strings.TrimSpace(title), content, folderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("note", id)
	}
	return note, err
}

func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	err := s.notes.Delete(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound("note", id)
	}
	return err
}

// Search runs ranked full-text search over the user's notes.
func (s *Service) Search(ctx context.Context, userID int64, query string, limit int) ([]store.NoteSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("q", "search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.notes.Search(ctx, userID, query, limit)
}

func (s *Service) validate(ctx context.Context, userID int64, title, content string, folderID *string) error {
	if len(title) > maxTitleLength {
		return apperror.Validation("title", fmt.Sprintf("title exceeds %d characters", maxTitleLength))
	}
	if len(content) > maxContentLength {
		return apperror.Validation("content", "content is too large")
	}
	if folderID != nil {
		if _, err := s.folders.GetByID(ctx, userID, *folderID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperror.NotFound("folder", *folderID)
			}
			return err
		}
	}
	return nil
}
