package api

import (
	"github.com/k7labs/k7notes/internal/calendar"
	"github.com/k7labs/k7notes/internal/config"
	"github.com/k7labs/k7notes/internal/notes"
	"github.com/k7labs/k7notes/internal/store"
)

// Handler serves the authenticated JSON API plus the public calendar OAuth
// callback.
type Handler struct {
	cfg       *config.Config
	store     *store.Store
	calendars *calendar.Service
	notes     *notes.Service
	folders   *notes.FolderService
	daily     *notes.DailyService
}

func NewHandler(cfg *config.Config, stor *store.Store, calendars *calendar.Service, notesSvc *notes.Service, folders *notes.FolderService, daily *notes.DailyService) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     stor,
		calendars: calendars,
		notes:     notesSvc,
		folders:   folders,
		daily:     daily,
	}
}
