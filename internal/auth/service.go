package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/k7labs/k7notes/internal/config"
	httperrors "github.com/k7labs/k7notes/internal/http/errors"
	"github.com/k7labs/k7notes/internal/store"
)

const loginStateCookie = "k7notes_login_state"

// Service implements sign-in to K7Notes via OIDC and session enforcement.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	sessions *SessionManager
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config
}

func NewService(ctx context.Context, cfg *config.Config, stor *store.Store, sessions *SessionManager) (*Service, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Login.IssuerURL)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:      cfg,
		store:    stor,
		sessions: sessions,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.Login.ClientID}),
		oauth: &oauth2.Config{
			ClientID:     cfg.Login.ClientID,
			ClientSecret: cfg.Login.ClientSecret,
			RedirectURL:  strings.TrimRight(cfg.BaseURL, "/") + cfg.Login.RedirectPath,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// BeginOAuth starts the sign-in flow: it stores a random state nonce in a
// cookie and redirects to the identity provider.
func (s *Service) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	state, err := randomToken()
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to generate login state")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     loginStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

// HandleOAuthCallback completes the sign-in flow: it verifies the state
// nonce, exchanges the code, validates the ID token, upserts the user, and
// starts a session.
func (s *Service) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(loginStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		httperrors.BadRequestError(w, r, err, "login state mismatch")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: loginStateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		httperrors.BadRequestError(w, r, nil, "missing authorization code")
		return
	}

	token, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		httperrors.InternalError(w, r, err, "login code exchange failed")
		return
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		httperrors.InternalError(w, r, nil, "identity provider returned no id_token")
		return
	}
	idToken, err := s.verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		httperrors.InternalError(w, r, err, "id token verification failed")
		return
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		httperrors.InternalError(w, r, err, "id token missing email claim")
		return
	}

	user, err := s.store.Users.UpsertOAuthUser(r.Context(), idToken.Subject, claims.Email, claims.Name)
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to persist user")
		return
	}
	if err := s.sessions.Issue(w, user.ID); err != nil {
		httperrors.InternalError(w, r, err, "failed to start session")
		return
	}

	http.Redirect(w, r, s.cfg.WebAppURL, http.StatusFound)
}

// Logout clears the session cookie.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// RequireSession resolves the current user from the session cookie and puts
// it on the request context, or rejects with 401.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.sessions.CurrentUserID(r)
		if !ok {
			unauthorized(w)
			return
		}
		user, err := s.store.Users.GetByID(r.Context(), userID)
		if err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "message": "authentication required"})
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
