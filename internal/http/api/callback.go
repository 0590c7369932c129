package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/k7labs/k7notes/internal/calendar"
	httperrors "github.com/k7labs/k7notes/internal/http/errors"
)

// OAuthCallback receives the calendar provider's redirect. It is public: the
// provider cannot carry our session, so this endpoint never exchanges the
// code itself. It only forwards code and state to the client app (mobile deep
// link or web callback page), which completes the exchange over its
// authenticated session. Every outcome is a redirect; errors travel as an
// `error` query parameter.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	state := q.Get("state")
	providerError := q.Get("error")

	// Platform selection fails open to web so the user always lands
	// somewhere, even with a mangled state token.
	platform := calendar.PlatformWeb
	if parsed := calendar.ParseState(state); parsed != nil {
		platform = parsed.Platform
	}

	if providerError != "" {
		httperrors.LogInfo(r, "calendar oauth denied by provider: "+providerError)
		h.redirectClient(w, r, platform, url.Values{"error": {providerError}})
		return
	}
	if code == "" || state == "" {
		h.redirectClient(w, r, platform, url.Values{"error": {"missing authorization code"}})
		return
	}

	h.redirectClient(w, r, platform, url.Values{"code": {code}, "state": {state}})
}

func (h *Handler) redirectClient(w http.ResponseWriter, r *http.Request, platform string, params url.Values) {
	var target string
	if platform == calendar.PlatformMobile {
		target = h.cfg.MobileScheme + "://calendar/callback"
	} else {
		target = strings.TrimRight(h.cfg.WebAppURL, "/") + "/calendar/callback"
	}
	http.Redirect(w, r, target+"?"+params.Encode(), http.StatusFound)
}
