package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/k7labs/k7notes/internal/apperror"
	"github.com/k7labs/k7notes/internal/auth"
	"github.com/k7labs/k7notes/internal/store"
)

// Transcription records are storage only; the speech-to-text provider call
// happens outside this server and reports back via CompleteTranscription.

func (h *Handler) CreateTranscription(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req struct {
		NoteID *string `json:"note_id,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tr, err := h.store.Transcriptions.Create(r.Context(), store.Transcription{
		ID:     uuid.NewString(),
		UserID: user.ID,
		NoteID: req.NoteID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tr)
}

func (h *Handler) GetTranscription(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	tr, err := h.store.Transcriptions.GetByID(r.Context(), user.ID, chi.URLParam(r, "transcriptionID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, apperror.NotFound("transcription", chi.URLParam(r, "transcriptionID")))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (h *Handler) ListTranscriptions(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	trs, err := h.store.Transcriptions.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if trs == nil {
		trs = []store.Transcription{}
	}
	writeJSON(w, http.StatusOK, trs)
}

func (h *Handler) CompleteTranscription(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req struct {
		Text            string  `json:"text"`
		DurationSeconds float64 `json:"duration_seconds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Text == "" {
		writeError(w, r, apperror.Validation("text", "transcription text is required"))
		return
	}

	id := chi.URLParam(r, "transcriptionID")
	tr, err := h.store.Transcriptions.Complete(r.Context(), user.ID, id, req.Text, req.DurationSeconds)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, apperror.NotFound("transcription", id))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}
