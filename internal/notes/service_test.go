package notes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/store"
)

func TestNoteCreateValidation(t *testing.T) {
	foldersRepo := newFakeFolders(
		&store.Folder{ID: "f1", UserID: 1, Name: "Work"},
		&store.Folder{ID: "f2", UserID: 2, Name: "Private"},
	)
	svc := NewService(newFakeNotes(), foldersRepo)
	ctx := context.Background()

	tests := []struct {
		name     string
		title    string
		content  string
		folderID *string
		want     error
	}{
		{"oversized title", strings.Repeat("x", 301), "body", nil, apperror.ErrValidation},
		{"oversized content", "Title", strings.Repeat("x", 1<<20+1), nil, apperror.ErrValidation},
		{"unknown folder", "Title", "body", strptr("missing"), apperror.ErrNotFound},
		{"foreign folder is invisible", "Title", "body", strptr("f2"), apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tt.title, tt.content, tt.folderID)
			if !errors.Is(err, tt.want) {
				t.Errorf("Create error = %v, want %v", err, tt.want)
			}
		})
	}

	note, err := svc.Create(ctx, 1, "  Meeting notes  ", "body", strptr("f1"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if note.Title != "Meeting notes" {
		t.Errorf("title = %q, want trimmed", note.Title)
	}
	if note.Kind != store.NoteKindRegular {
		t.Errorf("kind = %q, want regular", note.Kind)
	}
}

func TestNoteGetNotFound(t *testing.T) {
	svc := NewService(newFakeNotes(), newFakeFolders())
	_, err := svc.Get(context.Background(), 1, "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestNoteUpdateAndDelete(t *testing.T) {
	notesRepo := newFakeNotes()
	svc := NewService(notesRepo, newFakeFolders())
	ctx := context.Background()

	note, err := svc.Create(ctx, 1, "Draft", "v1", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Update(ctx, 1, note.ID, "Final", "v2", nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != "Final" || updated.Content != "v2" {
		t.Errorf("updated note = %+v", updated)
	}

	if _, err := svc.Update(ctx, 1, "missing", "x", "y", nil); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("update of missing note: got %v", err)
	}

	if err := svc.Delete(ctx, 1, note.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(ctx, 1, note.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}
}

func TestSearchValidation(t *testing.T) {
	svc := NewService(newFakeNotes(), newFakeFolders())
	ctx := context.Background()

	if _, err := svc.Search(ctx, 1, "   ", 10); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank query: expected validation error, got %v", err)
	}
	if _, err := svc.Search(ctx, 1, "roadmap", 0); err != nil {
		t.Errorf("zero limit should fall back to the default, got %v", err)
	}
	if _, err := svc.Search(ctx, 1, "roadmap", 10_000); err != nil {
		t.Errorf("oversized limit should be clamped, got %v", err)
	}
}
