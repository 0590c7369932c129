package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/auth"
	"github.com/k7labs/k7notes/internal/store"
)

func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	conns, err := h.calendars.ListConnections(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if conns == nil {
		conns = []store.CalendarConnection{}
	}
	writeJSON(w, http.StatusOK, conns)
}

func (h *Handler) GetOAuthURL(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req struct {
		Provider    string `json:"provider"`
		RedirectURL string `json:"redirectUrl,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.calendars.GetOAuthURL(r.Context(), user.ID, req.Provider, req.RedirectURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) CompleteOAuth(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req struct {
		Provider string `json:"provider"`
		Code     string `json:"code"`
		State    string `json:"state"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Code == "" || req.State == "" {
		writeError(w, r, apperror.Validation("code", "code and state are required"))
		return
	}

	conn, err := h.calendars.HandleOAuthCallback(r.Context(), user.ID, req.Provider, req.Code, req.State)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conn)
}

func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	if err := h.calendars.Disconnect(r.Context(), user.ID, chi.URLParam(r, "connectionID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	cals, err := h.calendars.ListCalendars(r.Context(), user.ID, chi.URLParam(r, "connectionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cals)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	q := r.URL.Query()

	start, err := parseTimeParam(q.Get("start"))
	if err != nil {
		writeError(w, r, apperror.Validation("start", "start must be RFC 3339 or YYYY-MM-DD"))
		return
	}
	end, err := parseTimeParam(q.Get("end"))
	if err != nil {
		writeError(w, r, apperror.Validation("end", "end must be RFC 3339 or YYYY-MM-DD"))
		return
	}
	if !end.After(start) {
		writeError(w, r, apperror.Validation("end", "end must be after start"))
		return
	}

	maxResults := 50
	if v := q.Get("maxResults"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 250 {
			writeError(w, r, apperror.Validation("maxResults", "maxResults must be between 1 and 250"))
			return
		}
		maxResults = parsed
	}

	events, err := h.calendars.ListEvents(r.Context(), user.ID, chi.URLParam(r, "connectionID"),
		q.Get("calendarId"), start, end, maxResults)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", value, time.UTC)
}
