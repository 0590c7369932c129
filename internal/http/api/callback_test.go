package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/k7labs/k7notes/internal/calendar"
	"github.com/k7labs/k7notes/internal/config"
)

func callbackHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := &config.Config{
		WebAppURL:    "https://app.example.com",
		MobileScheme: "k7notes",
	}
	return NewHandler(cfg, nil, nil, nil, nil, nil)
}

func doCallback(t *testing.T, h *Handler, query url.Values) *url.URL {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/oauth/callback?"+query.Encode(), nil)
	rec := httptest.NewRecorder()

	h.OAuthCallback(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect location: %v", err)
	}
	return loc
}

func TestOAuthCallbackWebRedirect(t *testing.T) {
	h := callbackHandler(t)
	state := calendar.FormatState("google", calendar.PlatformWeb, 1)

	loc := doCallback(t, h, url.Values{"code": {"abc"}, "state": {state}})

	if loc.Host != "app.example.com" || loc.Path != "/calendar/callback" {
		t.Errorf("redirect target = %q", loc.String())
	}
	if loc.Query().Get("code") != "abc" {
		t.Errorf("code not forwarded: %q", loc.RawQuery)
	}
	if loc.Query().Get("state") != state {
		t.Errorf("state not forwarded: %q", loc.RawQuery)
	}
}

func TestOAuthCallbackMobileRedirect(t *testing.T) {
	h := callbackHandler(t)
	state := calendar.FormatState("google", calendar.PlatformMobile, 1)

	loc := doCallback(t, h, url.Values{"code": {"abc"}, "state": {state}})

	if loc.Scheme != "k7notes" {
		t.Errorf("scheme = %q, want mobile deep link", loc.Scheme)
	}
	if loc.Query().Get("code") != "abc" || loc.Query().Get("state") != state {
		t.Errorf("code/state not forwarded: %q", loc.RawQuery)
	}
}

func TestOAuthCallbackProviderError(t *testing.T) {
	h := callbackHandler(t)
	state := calendar.FormatState("google", calendar.PlatformWeb, 1)

	loc := doCallback(t, h, url.Values{"state": {state}, "error": {"access_denied"}})

	if loc.Host != "app.example.com" {
		t.Errorf("redirect target = %q", loc.String())
	}
	if loc.Query().Get("error") != "access_denied" {
		t.Errorf("provider error not forwarded: %q", loc.RawQuery)
	}
	if loc.Query().Get("code") != "" {
		t.Errorf("unexpected code in error redirect: %q", loc.RawQuery)
	}
}

func TestOAuthCallbackMissingCode(t *testing.T) {
	h := callbackHandler(t)
	state := calendar.FormatState("google", calendar.PlatformMobile, 1)

	loc := doCallback(t, h, url.Values{"state": {state}})

	if loc.Scheme != "k7notes" {
		t.Errorf("platform from state ignored: %q", loc.String())
	}
	if loc.Query().Get("error") != "missing authorization code" {
		t.Errorf("error param = %q", loc.Query().Get("error"))
	}
}

func TestOAuthCallbackMangledStateFailsOpenToWeb(t *testing.T) {
	h := callbackHandler(t)

	loc := doCallback(t, h, url.Values{"code": {"abc"}, "state": {"garbage"}})

	if loc.Host != "app.example.com" {
		t.Errorf("mangled state should land on the web app, got %q", loc.String())
	}
	// Code and state are still forwarded; the client decides what to do.
	if loc.Query().Get("code") != "abc" || loc.Query().Get("state") != "garbage" {
		t.Errorf("query = %q", loc.RawQuery)
	}
}
