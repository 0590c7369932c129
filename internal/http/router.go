package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/k7labs/k7notes/internal/auth"
	"github.com/k7labs/k7notes/internal/calendar"
	"github.com/k7labs/k7notes/internal/config"
	"github.com/k7labs/k7notes/internal/http/api"
	"github.com/k7labs/k7notes/internal/http/csrf"
	"github.com/k7labs/k7notes/internal/http/ratelimit"
	"github.com/k7labs/k7notes/internal/metrics"
	"github.com/k7labs/k7notes/internal/notes"
	"github.com/k7labs/k7notes/internal/store"
)

// NewRouter wires all HTTP routes: health, auth, the public calendar OAuth
// callback, and the authenticated JSON API.
func NewRouter(
	cfg *config.Config,
	stor *store.Store,
	authService *auth.Service,
	calendars *calendar.Service,
	notesSvc *notes.Service,
	folders *notes.FolderService,
	daily *notes.DailyService,
) http.Handler {
	r := chi.NewRouter()

	// Auth and OAuth endpoints: 5 requests per second, burst of 10
	authRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)
	// API endpoints: 20 requests per second, burst of 50
	apiRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(20), 50, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := stor.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	apiHandler := api.NewHandler(cfg, stor, calendars, notesSvc, folders, daily)

	r.Route("/auth", func(r chi.Router) {
		r.Use(authRateLimiter.Middleware())
		r.Get("/login", authService.BeginOAuth)
		r.Get("/callback", authService.HandleOAuthCallback)
	})
	r.With(authService.RequireSession, csrf.Middleware(cfg)).Post("/auth/logout", authService.Logout)

	// Public hop of the calendar OAuth flow: the provider redirects here
	// without a session, and we forward code+state to the client app.
	r.With(authRateLimiter.Middleware()).Get("/api/calendar/oauth/callback", apiHandler.OAuthCallback)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Use(authService.RequireSession)

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/connections", apiHandler.ListConnections)
			r.Post("/oauth/url", apiHandler.GetOAuthURL)
			r.Post("/oauth/complete", apiHandler.CompleteOAuth)
			r.Delete("/connections/{connectionID}", apiHandler.Disconnect)
			r.Get("/connections/{connectionID}/calendars", apiHandler.ListCalendars)
			r.Get("/connections/{connectionID}/events", apiHandler.ListEvents)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", apiHandler.ListNotes)
			r.Post("/", apiHandler.CreateNote)
			r.Get("/search", apiHandler.SearchNotes)
			r.Get("/daily", apiHandler.FindDailyNote)
			r.Post("/daily", apiHandler.GetOrCreateDailyNote)
			r.Get("/{noteID}", apiHandler.GetNote)
			r.Put("/{noteID}", apiHandler.UpdateNote)
			r.Delete("/{noteID}", apiHandler.DeleteNote)
			r.Post("/{noteID}/refresh-events", apiHandler.RefreshDailyNoteEvents)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Get("/", apiHandler.ListFolders)
			r.Post("/", apiHandler.CreateFolder)
			r.Get("/{folderID}/path", apiHandler.FolderPath)
			r.Put("/{folderID}", apiHandler.RenameFolder)
			r.Delete("/{folderID}", apiHandler.DeleteFolder)
		})

		r.Get("/preferences", apiHandler.GetPreferences)
		r.Put("/preferences", apiHandler.UpdatePreferences)

		r.Route("/transcriptions", func(r chi.Router) {
			r.Get("/", apiHandler.ListTranscriptions)
			r.Post("/", apiHandler.CreateTranscription)
			r.Get("/{transcriptionID}", apiHandler.GetTranscription)
			r.Post("/{transcriptionID}/complete", apiHandler.CompleteTranscription)
		})
	})

	return r
}
