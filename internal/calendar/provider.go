// Package calendar implements the external calendar integration: the
// per-provider adapter contract, OAuth state tokens, and the user-facing
// connection service.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const (
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
	ProviderMock      = "mock"
)

// requestTimeout bounds every outbound provider HTTP call. A slow provider is
// treated the same as an unreachable one.
const requestTimeout = 10 * time.Second

// Tokens is the credential set returned by a code exchange or refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
}

// UserInfo identifies the external account a token belongs to.
type UserInfo struct {
	Email string
	Name  string
}

// CalendarInfo describes one calendar in the external account.
type CalendarInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Primary bool   `json:"primary"`
}

// Attendee is a participant on an event.
type Attendee struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Event is the normalized, transient event shape produced by adapters. Events
// are never persisted.
type Event struct {
	ID          string     `json:"id"`
	CalendarID  string     `json:"calendar_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	IsAllDay    bool       `json:"is_all_day"`
	Status      string     `json:"status,omitempty"`
	Organizer   *Attendee  `json:"organizer,omitempty"`
	Attendees   []Attendee `json:"attendees,omitempty"`
	HTMLLink    string     `json:"html_link,omitempty"`
}

// Provider is the capability contract implemented per calendar backend.
//
// ListEvents must return events whose time window intersects [start, end].
// Ordering is provider-defined; callers must not assume sorted output. An
// empty calendarID means the account's primary calendar.
type Provider interface {
	Name() string

	// OAuthURL builds the provider's authorization endpoint URL. Pure string
	// construction, no I/O.
	OAuthURL(redirectURL, state string) string

	ExchangeCode(ctx context.Context, code, redirectURL string) (*Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*Tokens, error)
	UserInfo(ctx context.Context, accessToken string) (*UserInfo, error)
	ListCalendars(ctx context.Context, accessToken string) ([]CalendarInfo, error)
	ListEvents(ctx context.Context, accessToken, calendarID string, start, end time.Time, maxResults int) ([]Event, error)
}

// Registry holds the configured providers. It is built once at startup and
// injected into consumers; there is no package-level provider state.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown calendar provider %q", name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MergeEvents flattens event lists from multiple connections, deduplicates by
// event ID (first occurrence wins), and sorts ascending by start time.
func MergeEvents(lists ...[]Event) []Event {
	seen := make(map[string]struct{})
	var merged []Event
	for _, list := range lists {
		for _, ev := range list {
			if _, dup := seen[ev.ID]; dup {
				continue
			}
			seen[ev.ID] = struct{}{}
			merged = append(merged, ev)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartTime.Before(merged[j].StartTime)
	})
	return merged
}
