package notes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/calendar"
	"github.com/k7labs/k7notes/internal/store"
)

// fakeNotes is an in-memory NoteRepository. Daily uniqueness per (user, date)
// is enforced the way the partial unique index does in Postgres.
type fakeNotes struct {
	notes map[string]*store.Note
}

func newFakeNotes() *fakeNotes {
	return &fakeNotes{notes: make(map[string]*store.Note)}
}

func (f *fakeNotes) Create(ctx context.Context, note store.Note) (*store.Note, error) {
	if note.Kind == store.NoteKindDaily && note.Date != nil {
		for _, existing := range f.notes {
			if existing.UserID == note.UserID && existing.Kind == store.NoteKindDaily &&
				existing.Date != nil && *existing.Date == *note.Date {
				return nil, store.ErrDuplicate
			}
		}
	}
	f.notes[note.ID] = &note
	return &note, nil
}

func (f *fakeNotes) GetByID(ctx context.Context, userID int64, id string) (*store.Note, error) {
	note, ok := f.notes[id]
	if !ok || note.UserID != userID {
		return nil, store.ErrNotFound
	}
	copied := *note
	return &copied, nil
}

func (f *fakeNotes) ListByFolder(ctx context.Context, userID int64, folderID *string) ([]store.Note, error) {
	var out []store.Note
	for _, note := range f.notes {
		if note.UserID == userID {
			out = append(out, *note)
		}
	}
	return out, nil
}

func (f *fakeNotes) Update(ctx context.Context, userID int64, id string, title, content string, folderID *string) (*store.Note, error) {
	note, ok := f.notes[id]
	if !ok || note.UserID != userID {
		return nil, store.ErrNotFound
	}
	note.Title = title
	note.Content = content
	note.FolderID = folderID
	copied := *note
	return &copied, nil
}

func (f *fakeNotes) UpdateContent(ctx context.Context, userID int64, id, content string) (*store.Note, error) {
	note, ok := f.notes[id]
	if !ok || note.UserID != userID {
		return nil, store.ErrNotFound
	}
	note.Content = content
	copied := *note
	return &copied, nil
}

func (f *fakeNotes) Delete(ctx context.Context, userID int64, id string) error {
	if _, ok := f.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

func (f *fakeNotes) FindDaily(ctx context.Context, userID int64, date string) (*store.Note, error) {
	for _, note := range f.notes {
		if note.UserID == userID && note.Kind == store.NoteKindDaily && note.Date != nil && *note.Date == date {
			copied := *note
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeNotes) Search(ctx context.Context, userID int64, query string, limit int) ([]store.NoteSearchResult, error) {
	return nil, nil
}

// stubProvider serves a fixed event list for daily note tests.
type stubProvider struct {
	events []calendar.Event
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) OAuthURL(redirectURL, state string) string { return "" }

func (p *stubProvider) ExchangeCode(ctx context.Context, code, redirectURL string) (*calendar.Tokens, error) {
	return &calendar.Tokens{AccessToken: "stub"}, nil
}

func (p *stubProvider) RefreshTokens(ctx context.Context, refreshToken string) (*calendar.Tokens, error) {
	return &calendar.Tokens{AccessToken: "stub"}, nil
}

func (p *stubProvider) UserInfo(ctx context.Context, accessToken string) (*calendar.UserInfo, error) {
	return &calendar.UserInfo{Email: "stub@example.com"}, nil
}

func (p *stubProvider) ListCalendars(ctx context.Context, accessToken string) ([]calendar.CalendarInfo, error) {
	return nil, nil
}

func (p *stubProvider) ListEvents(ctx context.Context, accessToken, calendarID string, start, end time.Time, maxResults int) ([]calendar.Event, error) {
	return p.events, nil
}

// stubConnections serves one always-fresh active connection for the stub
// provider.
type stubConnections struct {
	conns []store.CalendarConnection
}

func (s *stubConnections) Upsert(ctx context.Context, conn store.CalendarConnection) (*store.CalendarConnection, error) {
	return &conn, nil
}

func (s *stubConnections) GetByID(ctx context.Context, userID int64, id string) (*store.CalendarConnection, error) {
	for _, conn := range s.conns {
		if conn.ID == id && conn.UserID == userID {
			copied := conn
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *stubConnections) ListByUser(ctx context.Context, userID int64) ([]store.CalendarConnection, error) {
	return s.conns, nil
}

func (s *stubConnections) ListActiveByUser(ctx context.Context, userID int64) ([]store.CalendarConnection, error) {
	return s.conns, nil
}

func (s *stubConnections) UpdateTokens(ctx context.Context, id, accessToken string, refreshToken *string, expiresAt *time.Time) error {
	return nil
}

func (s *stubConnections) Deactivate(ctx context.Context, userID int64, id string) error {
	return nil
}

func newDailyService(events []calendar.Event) (*DailyService, *fakeNotes, *fakeFolders) {
	expiry := time.Now().Add(time.Hour)
	conns := &stubConnections{conns: []store.CalendarConnection{{
		ID:             "conn-1",
		UserID:         1,
		Provider:       "stub",
		AccountEmail:   "stub@example.com",
		AccessToken:    "stub",
		TokenExpiresAt: &expiry,
		IsActive:       true,
	}}}
	calendars := calendar.NewService(calendar.NewRegistry(&stubProvider{events: events}), conns, "")

	notesRepo := newFakeNotes()
	foldersRepo := newFakeFolders()
	return NewDailyService(notesRepo, NewFolderService(foldersRepo), calendars), notesRepo, foldersRepo
}

func TestParseDailyDate(t *testing.T) {
	tests := []struct {
		date string
		ok   bool
	}{
		{"2024-03-15", true},
		{"2024-12-31", true},
		{"2024/03/15", false},
		{"abc", false},
		{"", false},
		{"2024-3-15", false},
		{"2024-03-15T00:00:00Z", false},
		{"2024-13-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			day, err := parseDailyDate(tt.date)
			if tt.ok {
				if err != nil {
					t.Fatalf("parseDailyDate(%q) returned error: %v", tt.date, err)
				}
				if day.Location() != time.UTC {
					t.Errorf("expected UTC midnight, got %v", day)
				}
				return
			}
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("parseDailyDate(%q): expected validation error, got %v", tt.date, err)
			}
		})
	}
}

func TestEventHeading(t *testing.T) {
	start := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	timed := calendar.Event{Title: "Standup", StartTime: start}
	if got := eventHeading(timed); got != "14:30 - Standup" {
		t.Errorf("timed heading = %q", got)
	}

	allDay := calendar.Event{Title: "Offsite", StartTime: start, IsAllDay: true}
	if got := eventHeading(allDay); got != "All Day - Offsite" {
		t.Errorf("all-day heading = %q", got)
	}

	// Headings render in UTC regardless of the event's zone.
	est := time.FixedZone("EST", -5*3600)
	shifted := calendar.Event{Title: "Call", StartTime: time.Date(2024, 3, 15, 9, 0, 0, 0, est)}
	if got := eventHeading(shifted); got != "14:00 - Call" {
		t.Errorf("zoned heading = %q, want UTC rendering", got)
	}
}

func TestRenderDailyContent(t *testing.T) {
	if got := renderDailyContent("2024-03-15", nil); got != "# 2024-03-15\n\n" {
		t.Errorf("empty day content = %q", got)
	}

	events := []calendar.Event{
		{Title: "Standup", StartTime: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), Location: "Room A"},
		{Title: "Review", StartTime: time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)},
	}
	got := renderDailyContent("2024-03-15", events)
	want := "# 2024-03-15\n\n" +
		"## 09:00 - Standup\nLocation: Room A\n\n" +
		"## 13:00 - Review\n\n"
	if got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestAppendNewEventSections(t *testing.T) {
	content := "# 2024-03-15\n\n## 09:00 - Standup\nMy notes from standup\n\n"
	events := []calendar.Event{
		{Title: "Standup", StartTime: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)},
		{Title: "Review", StartTime: time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)},
	}

	updated, added := appendNewEventSections(content, events)
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	if !strings.HasPrefix(updated, content) {
		t.Errorf("existing content was modified")
	}
	if !strings.Contains(updated, "## 13:00 - Review\n") {
		t.Errorf("new section missing from %q", updated)
	}
	if strings.Count(updated, "## 09:00 - Standup") != 1 {
		t.Errorf("existing section duplicated in %q", updated)
	}

	again, added := appendNewEventSections(updated, events)
	if added != 0 {
		t.Errorf("second append added %d sections, want 0", added)
	}
	if again != updated {
		t.Errorf("second append changed content")
	}
}

func TestDailyGetOrCreate(t *testing.T) {
	events := []calendar.Event{
		{ID: "e1", Title: "Standup", StartTime: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)},
	}
	svc, _, foldersRepo := newDailyService(events)
	ctx := context.Background()

	note, err := svc.GetOrCreate(ctx, 1, "2024-03-15")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if note.Kind != store.NoteKindDaily {
		t.Errorf("kind = %q, want daily", note.Kind)
	}
	if note.Title != "2024-03-15" {
		t.Errorf("title = %q", note.Title)
	}
	if !strings.Contains(note.Content, "## 09:00 - Standup") {
		t.Errorf("content %q missing event section", note.Content)
	}

	// Daily/2024/03/15 was created.
	if note.FolderID == nil {
		t.Fatalf("daily note has no folder")
	}
	path, err := NewFolderService(foldersRepo).Path(ctx, 1, *note.FolderID)
	if err != nil {
		t.Fatalf("Path returned error: %v", err)
	}
	if strings.Join(path, "/") != "Daily/2024/03/15" {
		t.Errorf("folder path = %v", path)
	}

	again, err := svc.GetOrCreate(ctx, 1, "2024-03-15")
	if err != nil {
		t.Fatalf("second GetOrCreate returned error: %v", err)
	}
	if again.ID != note.ID {
		t.Errorf("second call created a new note: %q vs %q", again.ID, note.ID)
	}
}

func TestDailyGetOrCreateRejectsMalformedDate(t *testing.T) {
	svc, _, _ := newDailyService(nil)
	if _, err := svc.GetOrCreate(context.Background(), 1, "March 15"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDailyRefreshEventsAppendsOnlyNew(t *testing.T) {
	svc, notesRepo, _ := newDailyService(nil)
	ctx := context.Background()

	note, err := svc.GetOrCreate(ctx, 1, "2024-03-15")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}

	// A user edit plus an event that shows up after creation.
	edited := note.Content + "Some personal notes\n"
	if _, err := notesRepo.UpdateContent(ctx, 1, note.ID, edited); err != nil {
		t.Fatalf("UpdateContent returned error: %v", err)
	}

	svc2, _, _ := newDailyService([]calendar.Event{
		{ID: "late", Title: "Late Meeting", StartTime: time.Date(2024, 3, 15, 16, 0, 0, 0, time.UTC)},
	})
	svc2.notes = notesRepo

	refreshed, err := svc2.RefreshEvents(ctx, 1, note.ID)
	if err != nil {
		t.Fatalf("RefreshEvents returned error: %v", err)
	}
	if !strings.Contains(refreshed.Content, "Some personal notes") {
		t.Errorf("user edit lost: %q", refreshed.Content)
	}
	if !strings.Contains(refreshed.Content, "## 16:00 - Late Meeting") {
		t.Errorf("new event missing: %q", refreshed.Content)
	}

	// A second refresh with the same events is a no-op.
	again, err := svc2.RefreshEvents(ctx, 1, note.ID)
	if err != nil {
		t.Fatalf("second RefreshEvents returned error: %v", err)
	}
	if again.Content != refreshed.Content {
		t.Errorf("second refresh changed content")
	}
}

func TestDailyRefreshEventsRejectsRegularNote(t *testing.T) {
	svc, notesRepo, _ := newDailyService(nil)
	ctx := context.Background()

	regular, err := notesRepo.Create(ctx, store.Note{ID: "n1", UserID: 1, Title: "Plain", Kind: store.NoteKindRegular})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.RefreshEvents(ctx, 1, regular.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected not found for regular note, got %v", err)
	}
}

func TestDailyFind(t *testing.T) {
	svc, _, _ := newDailyService(nil)
	ctx := context.Background()

	note, err := svc.Find(ctx, 1, "2024-03-15")
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if note != nil {
		t.Errorf("expected nil for absent daily note, got %+v", note)
	}

	created, err := svc.GetOrCreate(ctx, 1, "2024-03-15")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	found, err := svc.Find(ctx, 1, "2024-03-15")
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("Find = %+v, want note %q", found, created.ID)
	}
}
