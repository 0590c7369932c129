package calendar

import (
	"context"
	"fmt"
	"time"
)

// MockProvider produces deterministic synthetic data for integration testing
// without network calls. Every method sleeps briefly so async code paths are
// exercised the same way real provider calls would.
type MockProvider struct {
	// Delay before each response. Zero means the default.
	Delay time.Duration
}

const mockDefaultDelay = 50 * time.Millisecond

var mockEventTemplates = []struct {
	title    string
	location string
}{
	{"Team Standup", "Meeting Room A"},
	{"Project Review", "Conference Room"},
	{"Client Call", ""},
	{"Design Sync", "Meeting Room B"},
}

func (p *MockProvider) Name() string { return ProviderMock }

func (p *MockProvider) sleep(ctx context.Context) error {
	delay := p.Delay
	if delay == 0 {
		delay = mockDefaultDelay
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *MockProvider) OAuthURL(redirectURL, state string) string {
	return fmt.Sprintf("https://mock.example.com/oauth/authorize?redirect_uri=%s&state=%s", redirectURL, state)
}

func (p *MockProvider) ExchangeCode(ctx context.Context, code, redirectURL string) (*Tokens, error) {
	if err := p.sleep(ctx); err != nil {
		return nil, err
	}
	refresh := "mock-refresh-token"
	expires := time.Now().Add(time.Hour)
	return &Tokens{AccessToken: "mock-access-" + code, RefreshToken: &refresh, ExpiresAt: &expires}, nil
}

func (p *MockProvider) RefreshTokens(ctx context.Context, refreshToken string) (*Tokens, error) {
	if err := p.sleep(ctx); err != nil {
		return nil, err
	}
	expires := time.Now().Add(time.Hour)
	return &Tokens{AccessToken: "mock-access-refreshed", ExpiresAt: &expires}, nil
}

func (p *MockProvider) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	if err := p.sleep(ctx); err != nil {
		return nil, err
	}
	return &UserInfo{Email: "mock.user@example.com", Name: "Mock User"}, nil
}

func (p *MockProvider) ListCalendars(ctx context.Context, accessToken string) ([]CalendarInfo, error) {
	if err := p.sleep(ctx); err != nil {
		return nil, err
	}
	return []CalendarInfo{
		{ID: "mock-primary", Name: "Calendar", Primary: true},
		{ID: "mock-work", Name: "Work", Primary: false},
	}, nil
}

// ListEvents generates one event every two hours between 09:00 and 17:00 UTC
// on the start date, cycling through the fixed templates.
func (p *MockProvider) ListEvents(ctx context.Context, accessToken, calendarID string, start, end time.Time, maxResults int) ([]Event, error) {
	if err := p.sleep(ctx); err != nil {
		return nil, err
	}
	if calendarID == "" {
		calendarID = "mock-primary"
	}

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	organizer := &Attendee{Email: "organizer@example.com", Name: "Mock Organizer"}
	attendees := []Attendee{
		{Email: "mock.user@example.com", Name: "Mock User"},
		{Email: "colleague@example.com", Name: "Mock Colleague"},
	}

	var events []Event
	for i, hour := 0, 9; hour < 17; i, hour = i+1, hour+2 {
		if len(events) >= maxResults {
			break
		}
		tmpl := mockEventTemplates[i%len(mockEventTemplates)]
		evStart := day.Add(time.Duration(hour) * time.Hour)
		if evStart.After(end) || evStart.Add(time.Hour).Before(start) {
			continue
		}
		events = append(events, Event{
			ID:          fmt.Sprintf("mock-%s-%02d", day.Format("20060102"), hour),
			CalendarID:  calendarID,
			Title:       tmpl.title,
			Description: "Synthetic event for integration testing",
			Location:    tmpl.location,
			StartTime:   evStart,
			EndTime:     evStart.Add(time.Hour),
			Status:      "confirmed",
			Organizer:   organizer,
			Attendees:   attendees,
			HTMLLink:    "https://mock.example.com/events/" + fmt.Sprintf("%02d", hour),
		})
	}
	return events, nil
}
