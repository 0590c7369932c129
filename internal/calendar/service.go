package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/store"
)

// refreshMargin is how close to expiry an access token may get before it is
// refreshed ahead of a provider call.
const refreshMargin = 2 * time.Minute

// connectionFetchLimit bounds how many connections are queried in parallel
// during multi-connection event aggregation.
const connectionFetchLimit = 4

// connectionFetchTimeout bounds each connection's share of an aggregation so
// one slow provider cannot stall the others.
const connectionFetchTimeout = 10 * time.Second

// Service implements the user-facing operations over calendar connections.
type Service struct {
	registry    *Registry
	connections store.ConnectionRepository
	// callbackURL is the server's public OAuth callback, registered with each
	// provider as the redirect URI.
	callbackURL string
}

func NewService(registry *Registry, connections store.ConnectionRepository, callbackURL string) *Service {
	return &Service{registry: registry, connections: connections, callbackURL: callbackURL}
}

// OAuthURLResult carries the provider authorization URL plus the state token
// embedded in it.
type OAuthURLResult struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// GetOAuthURL builds the provider authorization URL for a user. The platform
// tag in the state token is derived from redirectURL: a client that supplies a
// deep-link redirect is mobile, one that does not is web.
func (s *Service) GetOAuthURL(ctx context.Context, userID int64, provider, redirectURL string) (*OAuthURLResult, error) {
	p, err := s.registry.Get(provider)
	if err != nil {
		return nil, apperror.Validation("provider", err.Error())
	}

	platform := PlatformWeb
	if redirectURL != "" {
		platform = PlatformMobile
	}
	state := FormatState(provider, platform, userID)
	return &OAuthURLResult{URL: p.OAuthURL(s.callbackURL, state), State: state}, nil
}

// HandleOAuthCallback completes a calendar connection: it exchanges the code
// for tokens, resolves the external account, and upserts the connection row
// (reactivating a matching inactive one).
func (s *Service) HandleOAuthCallback(ctx context.Context, userID int64, provider, code, state string) (*store.CalendarConnection, error) {
	p, err := s.registry.Get(provider)
	if err != nil {
		return nil, apperror.Validation("provider", err.Error())
	}
	parsed := ParseState(state)
	if parsed == nil {
		return nil, apperror.Validation("state", "malformed state token")
	}
	if parsed.Provider != provider {
		return nil, apperror.Validation("state", "state token issued for a different provider")
	}
	if parsed.UserID != strconv.FormatInt(userID, 10) {
		return nil, apperror.Validation("state", "state token issued for a different user")
	}

	tokens, err := p.ExchangeCode(ctx, code, s.callbackURL)
	if err != nil {
		return nil, err
	}
	info, err := p.UserInfo(ctx, tokens.AccessToken)
	if err != nil {
		return nil, apperror.AuthExchange(provider, err)
	}

	conn := store.CalendarConnection{
		ID:             uuid.NewString(),
		UserID:         userID,
		Provider:       provider,
		AccountEmail:   info.Email,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		TokenExpiresAt: tokens.ExpiresAt,
	}
	if info.Name != "" {
		conn.AccountName = &info.Name
	}
	saved, err := s.connections.Upsert(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("save connection: %w", err)
	}
	return saved, nil
}

// ListConnections returns all of the user's connections, active and inactive.
func (s *Service) ListConnections(ctx context.Context, userID int64) ([]store.CalendarConnection, error) {
	return s.connections.ListByUser(ctx, userID)
}

// Disconnect marks a connection inactive. The stored row is kept so a later
// reconnect can reactivate it.
func (s *Service) Disconnect(ctx context.Context, userID int64, connectionID string) error {
	err := s.connections.Deactivate(ctx, userID, connectionID)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound("connection", connectionID)
	}
	return err
}

// ListCalendars lists the calendars of one connection, refreshing the access
// token first if needed.
func (s *Service) ListCalendars(ctx context.Context, userID int64, connectionID string) ([]CalendarInfo, error) {
	conn, p, err := s.freshConnection(ctx, userID, connectionID)
	if err != nil {
		return nil, err
	}
	return p.ListCalendars(ctx, conn.AccessToken)
}

// ListEvents lists events for one connection in [start, end]. An empty
// calendarID means the provider's primary calendar.
func (s *Service) ListEvents(ctx context.Context, userID int64, connectionID, calendarID string, start, end time.Time, maxResults int) ([]Event, error) {
	conn, p, err := s.freshConnection(ctx, userID, connectionID)
	if err != nil {
		return nil, err
	}
	return p.ListEvents(ctx, conn.AccessToken, calendarID, start, end, maxResults)
}

// ConnectionEvents is the per-connection outcome of a multi-connection fetch:
// either a list of events or the reason the connection contributed none.
type ConnectionEvents struct {
	ConnectionID string
	Provider     string
	Events       []Event
	Err          error
}

// EventsForAllConnections fetches events from every active connection of the
// user with bounded parallelism and a per-connection timeout. Failures are
// captured per connection, never returned: a broken connection degrades the
// aggregate to fewer events.
func (s *Service) EventsForAllConnections(ctx context.Context, userID int64, start, end time.Time, maxPerConnection int) ([]ConnectionEvents, error) {
	conns, err := s.connections.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active connections: %w", err)
	}

	results := make([]ConnectionEvents, len(conns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(connectionFetchLimit)
	for i, conn := range conns {
		i, conn := i, conn
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, connectionFetchTimeout)
			defer cancel()

			events, err := s.ListEvents(fetchCtx, userID, conn.ID, "", start, end, maxPerConnection)
			results[i] = ConnectionEvents{ConnectionID: conn.ID, Provider: conn.Provider, Events: events, Err: err}
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors; outcomes live in results

	return results, nil
}

// freshConnection loads a connection and transparently refreshes its access
// token when it is expired or within the refresh margin. Refreshed tokens are
// persisted before any provider call so a crash cannot lose them.
func (s *Service) freshConnection(ctx context.Context, userID int64, connectionID string) (*store.CalendarConnection, Provider, error) {
	conn, err := s.connections.GetByID(ctx, userID, connectionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, apperror.NotFound("connection", connectionID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load connection: %w", err)
	}

	p, err := s.registry.Get(conn.Provider)
	if err != nil {
		return nil, nil, apperror.Validation("provider", err.Error())
	}

	if conn.TokenExpiresAt == nil || time.Until(*conn.TokenExpiresAt) > refreshMargin {
		return conn, p, nil
	}

	if conn.RefreshToken == nil {
		return nil, nil, apperror.TokenRefresh(conn.Provider, errors.New("no refresh token stored; reconnect required"))
	}
	tokens, err := p.RefreshTokens(ctx, *conn.RefreshToken)
	if err != nil {
		return nil, nil, err
	}
	if err := s.connections.UpdateTokens(ctx, conn.ID, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
		return nil, nil, fmt.Errorf("persist refreshed tokens: %w", err)
	}
	log.Printf("[INFO] refreshed %s access token for connection %s", conn.Provider, conn.ID)

	conn.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != nil {
		conn.RefreshToken = tokens.RefreshToken
	}
	conn.TokenExpiresAt = tokens.ExpiresAt
	return conn, p, nil
}
