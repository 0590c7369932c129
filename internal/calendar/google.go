package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/config"
	"github.com/k7labs/k7notes/internal/metrics"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider implements Provider against the Google Calendar API.
type GoogleProvider struct {
	clientID     string
	clientSecret string
}

func NewGoogleProvider(client config.OAuthClient) *GoogleProvider {
	return &GoogleProvider{clientID: client.ClientID, clientSecret: client.ClientSecret}
}

func (p *GoogleProvider) Name() string { return ProviderGoogle }

func (p *GoogleProvider) config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/calendar.readonly",
		},
	}
}

func (p *GoogleProvider) OAuthURL(redirectURL, state string) string {
	// access_type=offline plus prompt=consent so Google issues a refresh
	// token even on repeat connections.
	return p.config(redirectURL).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code, redirectURL string) (*Tokens, error) {
	start := time.Now()
	tok, err := p.config(redirectURL).Exchange(withHTTPTimeout(ctx), code)
	metrics.ObserveProviderCall(ProviderGoogle, "exchange_code", start, err)
	if err != nil {
		return nil, apperror.AuthExchange(ProviderGoogle, err)
	}
	return tokensFromOAuth2(tok), nil
}

func (p *GoogleProvider) RefreshTokens(ctx context.Context, refreshToken string) (*Tokens, error) {
	start := time.Now()
	src := p.config("").TokenSource(withHTTPTimeout(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	metrics.ObserveProviderCall(ProviderGoogle, "refresh_tokens", start, err)
	if err != nil {
		return nil, apperror.TokenRefresh(ProviderGoogle, err)
	}
	return tokensFromOAuth2(tok), nil
}

func (p *GoogleProvider) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	start := time.Now()
	info, err := p.fetchUserInfo(ctx, accessToken)
	metrics.ObserveProviderCall(ProviderGoogle, "user_info", start, err)
	return info, err
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	client := authedClient(ctx, accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, apperror.ProviderUnavailable(ProviderGoogle, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.ProviderUnavailable(ProviderGoogle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.ProviderUnavailable(ProviderGoogle, fmt.Errorf("userinfo returned status %d", resp.StatusCode))
	}

	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperror.ProviderUnavailable(ProviderGoogle, err)
	}
	if body.Email == "" {
		return nil, apperror.ProviderUnavailable(ProviderGoogle, fmt.Errorf("userinfo returned no email"))
	}
	return &UserInfo{Email: body.Email, Name: body.Name}, nil
}

func (p *GoogleProvider) ListCalendars(ctx context.Context, accessToken string) ([]CalendarInfo, error) {
	start := time.Now()
	cals, err := p.listCalendars(ctx, accessToken)
	metrics.ObserveProviderCall(ProviderGoogle, "list_calendars", start, err)
	return cals, err
}

func (p *GoogleProvider) listCalendars(ctx context.Context, accessToken string) ([]CalendarInfo, error) {
	svc, err := p.calendarService(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	list, err := svc.CalendarList.List().MaxResults(100).Context(ctx).Do()
	if err != nil {
		return nil, apperror.ProviderUnavailable(ProviderGoogle, err)
	}

	cals := make([]CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		name := item.Summary
		if item.SummaryOverride != "" {
			name = item.SummaryOverride
		}
		cals = append(cals, CalendarInfo{ID: item.Id, Name: name, Primary: item.Primary})
	}
	return cals, nil
}

func (p *GoogleProvider) ListEvents(ctx context.Context, accessToken, calendarID string, start, end time.Time, maxResults int) ([]Event, error) {
	began := time.Now()
	events, err := p.listEvents(ctx, accessToken, calendarID, start, end, maxResults)
	metrics.ObserveProviderCall(ProviderGoogle, "list_events", began, err)
	return events, err
}

func (p *GoogleProvider) listEvents(ctx context.Context, accessToken, calendarID string, start, end time.Time, maxResults int) ([]Event, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	svc, err := p.calendarService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	call := svc.Events.List(calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		MaxResults(int64(maxResults)).
		Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return nil, apperror.ProviderUnavailable(ProviderGoogle, err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		ev, err := googleEvent(calendarID, item)
		if err != nil {
			continue // skip events with unparseable times
		}
		events = append(events, ev)
	}
	return events, nil
}

func (p *GoogleProvider) calendarService(ctx context.Context, accessToken string) (*calapi.Service, error) {
	svc, err := calapi.NewService(ctx, option.WithHTTPClient(authedClient(ctx, accessToken)))
	if err != nil {
		return nil, apperror.ProviderUnavailable(ProviderGoogle, err)
	}
	return svc, nil
}

func googleEvent(calendarID string, item *calapi.Event) (Event, error) {
	startTime, allDay, err := googleEventTime(item.Start)
	if err != nil {
		return Event{}, err
	}
	endTime, _, err := googleEventTime(item.End)
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		ID:          item.Id,
		CalendarID:  calendarID,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		StartTime:   startTime,
		EndTime:     endTime,
		IsAllDay:    allDay,
		Status:      item.Status,
		HTMLLink:    item.HtmlLink,
	}
	if item.Organizer != nil {
		ev.Organizer = &Attendee{Email: item.Organizer.Email, Name: item.Organizer.DisplayName}
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, Attendee{Email: a.Email, Name: a.DisplayName})
	}
	return ev, nil
}

func googleEventTime(edt *calapi.EventDateTime) (time.Time, bool, error) {
	if edt == nil {
		return time.Time{}, false, fmt.Errorf("event has no time")
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", edt.Date, time.UTC)
		return t, true, err
	}
	t, err := time.Parse(time.RFC3339, edt.DateTime)
	return t, false, err
}

// withHTTPTimeout installs a timeout-bounded HTTP client for oauth2 calls
// derived from this context.
func withHTTPTimeout(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: requestTimeout})
}

// authedClient returns an HTTP client that injects the given access token and
// enforces the provider request timeout.
func authedClient(ctx context.Context, accessToken string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	client := oauth2.NewClient(withHTTPTimeout(ctx), src)
	client.Timeout = requestTimeout
	return client
}

func tokensFromOAuth2(tok *oauth2.Token) *Tokens {
	tokens := &Tokens{AccessToken: tok.AccessToken}
	if tok.RefreshToken != "" {
		rt := tok.RefreshToken
		tokens.RefreshToken = &rt
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry
		tokens.ExpiresAt = &exp
	}
	return tokens
}
