package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	appauth "github.com/k7labs/k7notes/internal/auth"
	"github.com/k7labs/k7notes/internal/calendar"
	"github.com/k7labs/k7notes/internal/config"
	httpserver "github.com/k7labs/k7notes/internal/http"
	"github.com/k7labs/k7notes/internal/notes"
	"github.com/k7labs/k7notes/internal/store"
)

func main() {
	log.Println("Starting K7Notes server...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("failed to create db pool: %v", err)
	}
	defer pool.Close()

	if err := store.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	stor := store.New(pool)
	sessionManager := appauth.NewSessionManager(cfg)
	authService, err := appauth.NewService(ctx, cfg, stor, sessionManager)
	if err != nil {
		log.Fatalf("failed to initialize auth service: %v", err)
	}

	var providers []calendar.Provider
	if cfg.Google.ClientID != "" {
		providers = append(providers, calendar.NewGoogleProvider(cfg.Google))
	}
	if cfg.Microsoft.ClientID != "" {
		providers = append(providers, calendar.NewMicrosoftProvider(cfg.Microsoft))
	}
	if cfg.CalendarMockEnabled {
		log.Println("calendar mock provider enabled")
		providers = append(providers, &calendar.MockProvider{})
	}
	registry := calendar.NewRegistry(providers...)

	callbackURL := strings.TrimRight(cfg.BaseURL, "/") + "/api/calendar/oauth/callback"
	calendars := calendar.NewService(registry, stor.Connections, callbackURL)
	folderService := notes.NewFolderService(stor.Folders)
	noteService := notes.NewService(stor.Notes, stor.Folders)
	dailyService := notes.NewDailyService(stor.Notes, folderService, calendars)

	r := httpserver.NewRouter(cfg, stor, authService, calendars, noteService, folderService, dailyService)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
