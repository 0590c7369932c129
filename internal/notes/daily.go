package notes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/calendar"
	"github.com/k7labs/k7notes/internal/store"
)

// dailyRootFolder is the top of the auto-managed folder hierarchy; a note for
// 2024-03-15 lives in Daily/2024/03/15.
const dailyRootFolder = "Daily"

// maxEventsPerConnection caps how many events one connection may contribute
// to a daily note.
const maxEventsPerConnection = 50

// DailyService creates and refreshes the auto-managed daily notes.
type DailyService struct {
	notes     store.NoteRepository
	folders   *FolderService
	calendars *calendar.Service
}

func NewDailyService(notes store.NoteRepository, folders *FolderService, calendars *calendar.Service) *DailyService {
	return &DailyService{notes: notes, folders: folders, calendars: calendars}
}

// GetOrCreate returns the daily note for (userID, date), creating it with the
// day's calendar events when it does not exist yet. Two calls with the same
// arguments return the same note.
func (s *DailyService) GetOrCreate(ctx context.Context, userID int64, date string) (*store.Note, error) {
	day, err := parseDailyDate(date)
	if err != nil {
		return nil, err
	}

	existing, err := s.notes.FindDaily(ctx, userID, date)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find daily note: %w", err)
	}

	leaf, err := s.folders.EnsurePath(ctx, userID, dailyFolderSegments(day))
	if err != nil {
		return nil, fmt.Errorf("ensure daily folder path: %w", err)
	}

	events := s.fetchDayEvents(ctx, userID, day)
	content := renderDailyContent(date, events)

	note, err := s.notes.Create(ctx, store.Note{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    date,
		Content:  content,
		Kind:     store.NoteKindDaily,
		Date:     &date,
		FolderID: &leaf.ID,
	})
	if errors.Is(err, store.ErrDuplicate) {
		// A concurrent request created the note first; return theirs.
		return s.notes.FindDaily(ctx, userID, date)
	}
	return note, err
}

// RefreshEvents re-fetches the day's events for an existing daily note and
// appends sections for events not yet present. Existing content is never
// reordered or removed, so user edits survive; newly discovered earlier
// events therefore land at the end of the document.
func (s *DailyService) RefreshEvents(ctx context.Context, userID int64, noteID string) (*store.Note, error) {
	note, err := s.notes.GetByID(ctx, userID, noteID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("note", noteID)
	}
	if err != nil {
		return nil, err
	}
	if note.Kind != store.NoteKindDaily || note.Date == nil {
		return nil, apperror.NotFound("daily note", noteID)
	}

	day, err := parseDailyDate(*note.Date)
	if err != nil {
		return nil, err
	}

	events := s.fetchDayEvents(ctx, userID, day)
	updated, added := appendNewEventSections(note.Content, events)
	if added == 0 {
		return note, nil
	}
	return s.notes.UpdateContent(ctx, userID, noteID, updated)
}

// Find returns the daily note for a date, or nil when none exists.
func (s *DailyService) Find(ctx context.Context, userID int64, date string) (*store.Note, error) {
	if _, err := parseDailyDate(date); err != nil {
		return nil, err
	}
	note, err := s.notes.FindDaily(ctx, userID, date)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return note, err
}

// fetchDayEvents aggregates the UTC day's events across all active
// connections. Per-connection failures are logged and contribute zero events;
// daily-note creation always proceeds.
func (s *DailyService) fetchDayEvents(ctx context.Context, userID int64, day time.Time) []calendar.Event {
	start := day
	end := day.Add(24*time.Hour - time.Millisecond)

	results, err := s.calendars.EventsForAllConnections(ctx, userID, start, end, maxEventsPerConnection)
	if err != nil {
		log.Printf("[WARN] daily note: listing connections for user %d: %v", userID, err)
		return nil
	}

	lists := make([][]calendar.Event, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			log.Printf("[WARN] daily note: %s connection %s contributed no events: %v", res.Provider, res.ConnectionID, res.Err)
			continue
		}
		lists = append(lists, res.Events)
	}
	return calendar.MergeEvents(lists...)
}

// parseDailyDate validates the strict YYYY-MM-DD format and returns the UTC
// midnight for that date.
func parseDailyDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil || day.Format("2006-01-02") != date {
		return time.Time{}, apperror.Validation("date", fmt.Sprintf("date must be YYYY-MM-DD, got %q", date))
	}
	return day, nil
}

func dailyFolderSegments(day time.Time) []string {
	return []string{dailyRootFolder, day.Format("2006"), day.Format("01"), day.Format("02")}
}

// eventHeading formats the level-2 heading text for one event, in UTC.
func eventHeading(ev calendar.Event) string {
	if ev.IsAllDay {
		return "All Day - " + ev.Title
	}
	return ev.StartTime.UTC().Format("15:04") + " - " + ev.Title
}

func renderEventSection(ev calendar.Event) string {
	var b strings.Builder
	b.WriteString("## ")
	b.WriteString(eventHeading(ev))
	b.WriteString("\n")
	if ev.Location != "" {
		b.WriteString("Location: ")
		b.WriteString(ev.Location)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderDailyContent renders the full document: a level-1 date heading
// followed by one section per event. With no events the content is exactly
// "# <date>\n\n".
func renderDailyContent(date string, events []calendar.Event) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(date)
	b.WriteString("\n\n")
	for _, ev := range events {
		b.WriteString(renderEventSection(ev))
	}
	return b.String()
}

// existingHeadings extracts the text of every level-2 heading line.
func existingHeadings(content string) map[string]struct{} {
	headings := make(map[string]struct{})
	for _, line := range strings.Split(content, "\n") {
		if rest, ok := strings.CutPrefix(line, "## "); ok {
			headings[strings.TrimSpace(rest)] = struct{}{}
		}
	}
	return headings
}

// appendNewEventSections appends sections for events whose heading is not
// already in the content. It returns the updated content and how many
// sections were added.
func appendNewEventSections(content string, events []calendar.Event) (string, int) {
	present := existingHeadings(content)

	var b strings.Builder
	b.WriteString(content)
	added := 0
	for _, ev := range events {
		heading := eventHeading(ev)
		if _, ok := present[heading]; ok {
			continue
		}
		present[heading] = struct{}{}
		if added == 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
		b.WriteString(renderEventSection(ev))
		added++
	}
	return b.String(), added
}
