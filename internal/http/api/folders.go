package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/k7labs/k7notes/internal/auth"
	"github.com/k7labs/k7notes/internal/store"
)

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parent_id,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	folder, err := h.folders.Create(r.Context(), user.ID, req.Name, req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	folders, err := h.folders.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if folders == nil {
		folders = []store.Folder{}
	}
	writeJSON(w, http.StatusOK, folders)
}

func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.folders.Rename(r.Context(), user.ID, chi.URLParam(r, "folderID"), req.Name); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	if err := h.folders.Delete(r.Context(), user.ID, chi.URLParam(r, "folderID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FolderPath returns the root-first names of a folder's ancestry.
func (h *Handler) FolderPath(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	path, err := h.folders.Path(r.Context(), user.ID, chi.URLParam(r, "folderID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"path": path})
}
