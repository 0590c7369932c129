package notes

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/store"
)

// fakeFolders is an in-memory FolderRepository.
type fakeFolders struct {
	folders map[string]*store.Folder
}

func newFakeFolders(folders ...*store.Folder) *fakeFolders {
	m := make(map[string]*store.Folder)
	for _, f := range folders {
		m[f.ID] = f
	}
	return &fakeFolders{folders: m}
}

func (f *fakeFolders) Create(ctx context.Context, folder store.Folder) (*store.Folder, error) {
	f.folders[folder.ID] = &folder
	return &folder, nil
}

func (f *fakeFolders) GetByID(ctx context.Context, userID int64, id string) (*store.Folder, error) {
	folder, ok := f.folders[id]
	if !ok || folder.UserID != userID {
		return nil, store.ErrNotFound
	}
	copied := *folder
	return &copied, nil
}

func (f *fakeFolders) FindChildByName(ctx context.Context, userID int64, parentID *string, name string) (*store.Folder, error) {
	for _, folder := range f.folders {
		if folder.UserID != userID || folder.Name != name {
			continue
		}
		if (folder.ParentID == nil) != (parentID == nil) {
			continue
		}
		if parentID != nil && *folder.ParentID != *parentID {
			continue
		}
		copied := *folder
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeFolders) ListByUser(ctx context.Context, userID int64) ([]store.Folder, error) {
	var out []store.Folder
	for _, folder := range f.folders {
		if folder.UserID == userID {
			out = append(out, *folder)
		}
	}
	return out, nil
}

func (f *fakeFolders) Rename(ctx context.Context, userID int64, id, name string) error {
	folder, ok := f.folders[id]
	if !ok || folder.UserID != userID {
		return store.ErrNotFound
	}
	folder.Name = name
	return nil
}

func (f *fakeFolders) Delete(ctx context.Context, userID int64, id string) error {
	folder, ok := f.folders[id]
	if !ok || folder.UserID != userID {
		return store.ErrNotFound
	}
	delete(f.folders, id)
	return nil
}

func strptr(s string) *string { return &s }

func TestFolderCreateValidation(t *testing.T) {
	svc := NewFolderService(newFakeFolders())
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, "   ", nil); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank name: expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, 1, strings.Repeat("x", 121), nil); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("oversized name: expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, 1, "Inbox", strptr("missing-parent")); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown parent: expected not found error, got %v", err)
	}

	folder, err := svc.Create(ctx, 1, "  Inbox  ", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if folder.Name != "Inbox" {
		t.Errorf("name = %q, want trimmed %q", folder.Name, "Inbox")
	}
}

func TestFolderPath(t *testing.T) {
	root := &store.Folder{ID: "r", UserID: 1, Name: "Daily"}
	year := &store.Folder{ID: "y", UserID: 1, Name: "2024", ParentID: strptr("r")}
	month := &store.Folder{ID: "m", UserID: 1, Name: "03", ParentID: strptr("y")}
	svc := NewFolderService(newFakeFolders(root, year, month))

	path, err := svc.Path(context.Background(), 1, "m")
	if err != nil {
		t.Fatalf("Path returned error: %v", err)
	}
	if want := []string{"Daily", "2024", "03"}; !reflect.DeepEqual(path, want) {
		t.Errorf("path = %v, want %v", path, want)
	}
}

func TestFolderPathDetectsCycle(t *testing.T) {
	a := &store.Folder{ID: "a", UserID: 1, Name: "A", ParentID: strptr("b")}
	b := &store.Folder{ID: "b", UserID: 1, Name: "B", ParentID: strptr("a")}
	svc := NewFolderService(newFakeFolders(a, b))

	_, err := svc.Path(context.Background(), 1, "a")
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error %q does not mention the cycle", err)
	}
}

func TestFolderPathOtherUsersFolder(t *testing.T) {
	other := &store.Folder{ID: "x", UserID: 2, Name: "Private"}
	svc := NewFolderService(newFakeFolders(other))

	_, err := svc.Path(context.Background(), 1, "x")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected not found for another user's folder, got %v", err)
	}
}

func TestEnsurePathCreatesMissingLevels(t *testing.T) {
	repo := newFakeFolders()
	svc := NewFolderService(repo)
	ctx := context.Background()

	leaf, err := svc.EnsurePath(ctx, 1, []string{"Daily", "2024", "03", "15"})
	if err != nil {
		t.Fatalf("EnsurePath returned error: %v", err)
	}
	if leaf.Name != "15" {
		t.Errorf("leaf name = %q, want %q", leaf.Name, "15")
	}
	if len(repo.folders) != 4 {
		t.Errorf("created %d folders, want 4", len(repo.folders))
	}

	path, err := svc.Path(ctx, 1, leaf.ID)
	if err != nil {
		t.Fatalf("Path returned error: %v", err)
	}
	if want := []string{"Daily", "2024", "03", "15"}; !reflect.DeepEqual(path, want) {
		t.Errorf("path = %v, want %v", path, want)
	}
}

func TestEnsurePathIdempotent(t *testing.T) {
	repo := newFakeFolders()
	svc := NewFolderService(repo)
	ctx := context.Background()

	first, err := svc.EnsurePath(ctx, 1, []string{"Daily", "2024"})
	if err != nil {
		t.Fatalf("EnsurePath returned error: %v", err)
	}
	second, err := svc.EnsurePath(ctx, 1, []string{"Daily", "2024"})
	if err != nil {
		t.Fatalf("EnsurePath returned error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("repeated EnsurePath created a new leaf: %q vs %q", first.ID, second.ID)
	}
	if len(repo.folders) != 2 {
		t.Errorf("have %d folders, want 2", len(repo.folders))
	}
}

func TestEnsurePathEmpty(t *testing.T) {
	svc := NewFolderService(newFakeFolders())
	if _, err := svc.EnsurePath(context.Background(), 1, nil); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
