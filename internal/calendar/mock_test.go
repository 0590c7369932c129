package calendar

import (
	"context"
	"testing"
	"time"
)

func TestMockProviderListEventsDeterministic(t *testing.T) {
	p := &MockProvider{Delay: time.Millisecond}
	ctx := context.Background()
	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Millisecond)

	first, err := p.ListEvents(ctx, "token", "", start, end, 50)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	second, err := p.ListEvents(ctx, "token", "", start, end, 50)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}

	if len(first) != 4 {
		t.Fatalf("got %d events, want 4 (09:00 through 15:00 every two hours)", len(first))
	}
	for i := range first {
		if first[i].ID != second[i].ID || !first[i].StartTime.Equal(second[i].StartTime) {
			t.Errorf("event %d differs between identical calls: %+v vs %+v", i, first[i], second[i])
		}
	}

	if first[0].ID != "mock-20240315-09" {
		t.Errorf("first event id = %q, want %q", first[0].ID, "mock-20240315-09")
	}
	if first[0].Title != "Team Standup" {
		t.Errorf("first event title = %q, want %q", first[0].Title, "Team Standup")
	}
	if first[0].CalendarID != "mock-primary" {
		t.Errorf("empty calendar id should fall back to primary, got %q", first[0].CalendarID)
	}
	for _, ev := range first {
		if !ev.EndTime.Equal(ev.StartTime.Add(time.Hour)) {
			t.Errorf("event %s duration is not one hour", ev.ID)
		}
	}
}

func TestMockProviderListEventsRespectsMaxResults(t *testing.T) {
	p := &MockProvider{Delay: time.Millisecond}
	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	events, err := p.ListEvents(context.Background(), "token", "", start, start.Add(24*time.Hour), 2)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}

func TestMockProviderHonorsContextCancellation(t *testing.T) {
	p := &MockProvider{Delay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.ListEvents(ctx, "token", "", time.Now(), time.Now().Add(time.Hour), 10); err == nil {
		t.Errorf("expected error from cancelled context")
	}
}

func TestMockProviderExchangeAndRefresh(t *testing.T) {
	p := &MockProvider{Delay: time.Millisecond}
	ctx := context.Background()

	tokens, err := p.ExchangeCode(ctx, "abc", "https://example.com/cb")
	if err != nil {
		t.Fatalf("ExchangeCode returned error: %v", err)
	}
	if tokens.AccessToken != "mock-access-abc" {
		t.Errorf("access token = %q", tokens.AccessToken)
	}
	if tokens.RefreshToken == nil || *tokens.RefreshToken == "" {
		t.Errorf("expected refresh token on exchange")
	}
	if tokens.ExpiresAt == nil || !tokens.ExpiresAt.After(time.Now()) {
		t.Errorf("expected future expiry on exchange")
	}

	refreshed, err := p.RefreshTokens(ctx, *tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens returned error: %v", err)
	}
	if refreshed.AccessToken != "mock-access-refreshed" {
		t.Errorf("refreshed access token = %q", refreshed.AccessToken)
	}
}
