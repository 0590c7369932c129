package api

import (
	"net/http"
	"time"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/auth"
	"github.com/k7labs/k7notes/internal/store"
)

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	prefs, err := h.store.Preferences.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req struct {
		DefaultFolderID   *string `json:"default_folder_id,omitempty"`
		TimeZone          string  `json:"time_zone"`
		DailyNotesEnabled bool    `json:"daily_notes_enabled"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.TimeZone == "" {
		req.TimeZone = "UTC"
	}
	if _, err := time.LoadLocation(req.TimeZone); err != nil {
		writeError(w, r, apperror.Validation("time_zone", "unknown time zone"))
		return
	}

	prefs, err := h.store.Preferences.Upsert(r.Context(), store.Preferences{
		UserID:            user.ID,
		DefaultFolderID:   req.DefaultFolderID,
		TimeZone:          req.TimeZone,
		DailyNotesEnabled: req.DailyNotesEnabled,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
