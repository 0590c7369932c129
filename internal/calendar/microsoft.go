package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/config"
	"github.com/k7labs/k7notes/internal/metrics"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// MicrosoftProvider implements Provider against the Microsoft Graph API.
type MicrosoftProvider struct {
	clientID     string
	clientSecret string
}

func NewMicrosoftProvider(client config.OAuthClient) *MicrosoftProvider {
	return &MicrosoftProvider{clientID: client.ClientID, clientSecret: client.ClientSecret}
}

func (p *MicrosoftProvider) Name() string { return ProviderMicrosoft }

func (p *MicrosoftProvider) config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     microsoft.AzureADEndpoint("common"),
		Scopes: []string{
			"offline_access",
			"User.Read",
			"Calendars.Read",
		},
	}
}

func (p *MicrosoftProvider) OAuthURL(redirectURL, state string) string {
	return p.config(redirectURL).AuthCodeURL(state)
}

func (p *MicrosoftProvider) ExchangeCode(ctx context.Context, code, redirectURL string) (*Tokens, error) {
	start := time.Now()
	tok, err := p.config(redirectURL).Exchange(withHTTPTimeout(ctx), code)
	metrics.ObserveProviderCall(ProviderMicrosoft, "exchange_code", start, err)
	if err != nil {
		return nil, apperror.AuthExchange(ProviderMicrosoft, err)
	}
	return tokensFromOAuth2(tok), nil
}

func (p *MicrosoftProvider) RefreshTokens(ctx context.Context, refreshToken string) (*Tokens, error) {
	start := time.Now()
	src := p.config("").TokenSource(withHTTPTimeout(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	metrics.ObserveProviderCall(ProviderMicrosoft, "refresh_tokens", start, err)
	if err != nil {
		return nil, apperror.TokenRefresh(ProviderMicrosoft, err)
	}
	return tokensFromOAuth2(tok), nil
}

func (p *MicrosoftProvider) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	start := time.Now()
	var body struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		DisplayName       string `json:"displayName"`
	}
	err := p.graphGet(ctx, accessToken, "/me", &body)
	metrics.ObserveProviderCall(ProviderMicrosoft, "user_info", start, err)
	if err != nil {
		return nil, err
	}

	email := body.Mail
	if email == "" {
		// Personal accounts often leave mail unset; the principal name is the
		// sign-in address.
		email = body.UserPrincipalName
	}
	if email == "" {
		return nil, apperror.ProviderUnavailable(ProviderMicrosoft, fmt.Errorf("profile returned no email"))
	}
	return &UserInfo{Email: email, Name: body.DisplayName}, nil
}

func (p *MicrosoftProvider) ListCalendars(ctx context.Context, accessToken string) ([]CalendarInfo, error) {
	start := time.Now()
	var body struct {
		Value []struct {
			ID                string `json:"id"`
			Name              string `json:"name"`
			IsDefaultCalendar bool   `json:"isDefaultCalendar"`
		} `json:"value"`
	}
	err := p.graphGet(ctx, accessToken, "/me/calendars", &body)
	metrics.ObserveProviderCall(ProviderMicrosoft, "list_calendars", start, err)
	if err != nil {
		return nil, err
	}

	cals := make([]CalendarInfo, 0, len(body.Value))
	for _, c := range body.Value {
		cals = append(cals, CalendarInfo{ID: c.ID, Name: c.Name, Primary: c.IsDefaultCalendar})
	}
	return cals, nil
}

type graphEvent struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	BodyPreview string `json:"bodyPreview"`
	IsAllDay    bool   `json:"isAllDay"`
	WebLink     string `json:"webLink"`
	ShowAs      string `json:"showAs"`
	Location    struct {
		DisplayName string `json:"displayName"`
	} `json:"location"`
	Start     graphDateTime `json:"start"`
	End       graphDateTime `json:"end"`
	Organizer *struct {
		EmailAddress graphEmailAddress `json:"emailAddress"`
	} `json:"organizer"`
	Attendees []struct {
		EmailAddress graphEmailAddress `json:"emailAddress"`
	} `json:"attendees"`
}

type graphEmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func (p *MicrosoftProvider) ListEvents(ctx context.Context, accessToken, calendarID string, start, end time.Time, maxResults int) ([]Event, error) {
	began := time.Now()
	events, err := p.listEvents(ctx, accessToken, calendarID, start, end, maxResults)
	metrics.ObserveProviderCall(ProviderMicrosoft, "list_events", began, err)
	return events, err
}

func (p *MicrosoftProvider) listEvents(ctx context.Context, accessToken, calendarID string, start, end time.Time, maxResults int) ([]Event, error) {
	path := "/me/calendarview"
	if calendarID != "" {
		path = "/me/calendars/" + url.PathEscape(calendarID) + "/calendarview"
	}
	query := url.Values{}
	query.Set("startDateTime", start.UTC().Format(time.RFC3339))
	query.Set("endDateTime", end.UTC().Format(time.RFC3339))
	query.Set("$top", strconv.Itoa(maxResults))
	query.Set("$orderby", "start/dateTime")

	var body struct {
		Value []graphEvent `json:"value"`
	}
	if err := p.graphGet(ctx, accessToken, path+"?"+query.Encode(), &body); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(body.Value))
	for _, item := range body.Value {
		ev, err := microsoftEvent(calendarID, item)
		if err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (p *MicrosoftProvider) graphGet(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, graphBaseURL+path, nil)
	if err != nil {
		return apperror.ProviderUnavailable(ProviderMicrosoft, err)
	}
	// Ask Graph to render event times in UTC so parsing is uniform.
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := authedClient(ctx, accessToken).Do(req)
	if err != nil {
		return apperror.ProviderUnavailable(ProviderMicrosoft, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperror.ProviderUnavailable(ProviderMicrosoft, fmt.Errorf("graph %s returned status %d", path, resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.ProviderUnavailable(ProviderMicrosoft, err)
	}
	return nil
}

func microsoftEvent(calendarID string, item graphEvent) (Event, error) {
	startTime, err := parseGraphTime(item.Start)
	if err != nil {
		return Event{}, err
	}
	endTime, err := parseGraphTime(item.End)
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		ID:          item.ID,
		CalendarID:  calendarID,
		Title:       item.Subject,
		Description: item.BodyPreview,
		Location:    item.Location.DisplayName,
		StartTime:   startTime,
		EndTime:     endTime,
		IsAllDay:    item.IsAllDay,
		Status:      item.ShowAs,
		HTMLLink:    item.WebLink,
	}
	if item.Organizer != nil {
		ev.Organizer = &Attendee{Email: item.Organizer.EmailAddress.Address, Name: item.Organizer.EmailAddress.Name}
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, Attendee{Email: a.EmailAddress.Address, Name: a.EmailAddress.Name})
	}
	return ev, nil
}

// parseGraphTime handles Graph's fractional-second datetime rendering
// (e.g. "2024-03-15T09:00:00.0000000") in the requested UTC zone.
func parseGraphTime(dt graphDateTime) (time.Time, error) {
	value := dt.DateTime
	if i := strings.IndexByte(value, '.'); i >= 0 {
		value = value[:i]
	}
	loc := time.UTC
	if dt.TimeZone != "" && dt.TimeZone != "UTC" {
		if parsed, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = parsed
		}
	}
	return time.ParseInLocation("2006-01-02T15:04:05", value, loc)
}
