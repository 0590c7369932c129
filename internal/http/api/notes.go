package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/auth"
	"github.com/k7labs/k7notes/internal/store"
)

type noteRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	FolderID *string `json:"folder_id,omitempty"`
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	note, err := h.notes.Create(r.Context(), user.ID, req.Title, req.Content, req.FolderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	note, err := h.notes.Get(r.Context(), user.ID, chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var folderID *string
	if v := r.URL.Query().Get("folderId"); v != "" {
		folderID = &v
	}
	notes, err := h.notes.List(r.Context(), user.ID, folderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []store.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	note, err := h.notes.Update(r.Context(), user.ID, chi.URLParam(r, "noteID"), req.Title, req.Content, req.FolderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	if err := h.notes.Delete(r.Context(), user.ID, chi.URLParam(r, "noteID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SearchNotes(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, r, apperror.Validation("limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	results, err := h.notes.Search(r.Context(), user.ID, r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if results == nil {
		results = []store.NoteSearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) GetOrCreateDailyNote(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req struct {
		Date string `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	note, err := h.daily.GetOrCreate(r.Context(), user.ID, req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) RefreshDailyNoteEvents(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	note, err := h.daily.RefreshEvents(r.Context(), user.ID, chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) FindDailyNote(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	note, err := h.daily.Find(r.Context(), user.ID, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if note == nil {
		writeError(w, r, apperror.NotFound("daily note", r.URL.Query().Get("date")))
		return
	}
	writeJSON(w, http.StatusOK, note)
}
