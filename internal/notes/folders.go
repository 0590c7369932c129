// Package notes implements note, folder, and daily-note business logic on top
// of the store repositories.
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

const maxFolderNameLength = 120

// FolderService manages a user's folder tree.
type FolderService struct {
	folders store.FolderRepository
}

func NewFolderService(folders store.FolderRepository) *FolderService {
	return &FolderService{folders: folders}
}

func (s *FolderService) Create(ctx context.Context, userID int64, name string, parentID *string) (*store.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("name", "folder name is required")
	}
	if len(name) > maxFolderNameLength {
		return nil, apperror.Validation("name", fmt.Sprintf("folder name exceeds %d characters", maxFolderNameLength))
	}
	if parentID != nil {
		if _, err := s.folders.GetByID(ctx, userID, *parentID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperror.NotFound("folder", *parentID)
			}
			return nil, err
		}
	}
	return s.folders.Create(ctx, store.Folder{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     name,
		ParentID: parentID,
	})
}

func (s *FolderService) List(ctx context.Context, userID int64) ([]store.Folder, error) {
	return s.folders.ListByUser(ctx, userID)
}

func (s *FolderService) Rename(ctx context.Context, userID int64, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.Validation("name", "folder name is required")
	}
	err := s.folders.Rename(ctx, userID, id, name)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound("folder", id)
	}
	return err
}

func (s *FolderService) Delete(ctx context.Context, userID int64, id string) error {
	err := s.folders.Delete(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound("folder", id)
	}
	return err
}

// Path resolves a folder's ancestry as root-first names. A visited set guards
// against parent cycles in stored data; hitting one is reported instead of
// looping.
func (s *FolderService) Path(ctx context.Context, userID int64, folderID string) ([]string, error) {
	var names []string
	visited := make(map[string]struct{})
	current := &folderID
	for current != nil {
		if _, seen := visited[*current]; seen {
			return nil, fmt.Errorf("folder hierarchy contains a cycle at %s", *current)
		}
		visited[*current] = struct{}{}

		folder, err := s.folders.GetByID(ctx, userID, *current)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperror.NotFound("folder", *current)
			}
			return nil, err
		}
		names = append([]string{folder.Name}, names...)
		current = folder.ParentID
	}
	return names, nil
}

// EnsurePath walks the given root-first segment names, creating any missing
// folder at each level, and returns the leaf folder. Creation is idempotent
// and re-entrant: a concurrent call that loses the race simply finds the
// folder the winner created.
func (s *FolderService) EnsurePath(ctx context.Context, userID int64, segments []string) (*store.Folder, error) {
	if len(segments) == 0 {
		return nil, apperror.Validation("path", "folder path is empty")
	}

	var parent *store.Folder
	for _, name := range segments {
		var parentID *string
		if parent != nil {
			parentID = &parent.ID
		}

		existing, err := s.folders.FindChildByName(ctx, userID, parentID, name)
		if err == nil {
			parent = existing
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("lookup folder %q: %w", name, err)
		}

		created, err := s.folders.Create(ctx, store.Folder{
			ID:       uuid.NewString(),
			UserID:   userID,
			Name:     name,
			ParentID: parentID,
		})
		if err != nil {
			// Lost a creation race; re-read the winner's folder.
			existing, lookupErr := s.folders.FindChildByName(ctx, userID, parentID, name)
			if lookupErr != nil {
				return nil, fmt.Errorf("create folder %q: %w", name, err)
			}
			created = existing
		}
		parent = created
	}
	return parent, nil
}
