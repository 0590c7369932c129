package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

type Config struct {
	ListenAddr string
	BaseURL    string

	// WebAppURL is where the browser client lives; the public calendar OAuth
	// callback forwards web users to <WebAppURL>/calendar/callback.
	WebAppURL string
	// MobileScheme is the deep-link scheme for the mobile client.
	MobileScheme string

	DB struct {
		DSN string
	}

	// Login is the OIDC client used for signing in to K7Notes itself.
	Login struct {
		ClientID     string
		ClientSecret string
		IssuerURL    string
		RedirectPath string
	}

	// Calendar OAuth clients, one per provider.
	Google    OAuthClient
	Microsoft OAuthClient

	Session struct {
		Secret string
	}

	CalendarMockEnabled bool
	PrometheusEnabled   bool
	TrustedProxies      []string
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ListenAddr = getenvDefault("APP_LISTEN_ADDR", ":8080")
	cfg.BaseURL = getenvDefault("APP_BASE_URL", "http://localhost:8080")
	cfg.WebAppURL = getenvDefault("APP_WEB_APP_URL", "http://localhost:3000")
	cfg.MobileScheme = getenvDefault("APP_MOBILE_SCHEME", "k7notes")
	cfg.DB.DSN = os.Getenv("APP_DB_DSN")

	if cfg.DB.DSN == "" {
		host := os.Getenv("APP_DB_HOST")
		name := os.Getenv("APP_DB_NAME")
		user := os.Getenv("APP_DB_USER")
		password := os.Getenv("APP_DB_PASSWORD")
		port := getenvDefault("APP_DB_PORT", "5432")
		sslmode := getenvDefault("APP_DB_SSLMODE", "disable")

		if host != "" && name != "" && user != "" && password != "" {
			cfg.DB.DSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
		}
	}

	cfg.Login.ClientID = os.Getenv("APP_LOGIN_CLIENT_ID")
	cfg.Login.ClientSecret = os.Getenv("APP_LOGIN_CLIENT_SECRET")
	cfg.Login.IssuerURL = getenvDefault("APP_LOGIN_ISSUER_URL", "https://accounts.google.com")
	cfg.Login.RedirectPath = getenvDefault("APP_LOGIN_REDIRECT_PATH", "/auth/callback")

	cfg.Google.ClientID = os.Getenv("APP_GOOGLE_CLIENT_ID")
	cfg.Google.ClientSecret = os.Getenv("APP_GOOGLE_CLIENT_SECRET")
	cfg.Microsoft.ClientID = os.Getenv("APP_MICROSOFT_CLIENT_ID")
	cfg.Microsoft.ClientSecret = os.Getenv("APP_MICROSOFT_CLIENT_SECRET")

	cfg.Session.Secret = os.Getenv("APP_SESSION_SECRET")
	cfg.CalendarMockEnabled = getenvBool("APP_CALENDAR_MOCK", false)
	cfg.PrometheusEnabled = getenvBool("APP_PROMETHEUS_ENDPOINT_ENABLED", false)
	cfg.TrustedProxies = getenvList("APP_TRUSTED_PROXIES")

	if cfg.DB.DSN == "" {
		return nil, errors.New("APP_DB_DSN is required (or set APP_DB_HOST, APP_DB_NAME, APP_DB_USER, and APP_DB_PASSWORD)")
	}
	if cfg.Login.ClientID == "" || cfg.Login.ClientSecret == "" {
		return nil, errors.New("login oauth configuration is required: APP_LOGIN_CLIENT_ID and APP_LOGIN_CLIENT_SECRET")
	}
	if cfg.Session.Secret == "" {
		return nil, errors.New("APP_SESSION_SECRET is required")
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, fmt.Errorf("APP_SESSION_SECRET must be at least 32 characters long (got %d)", len(cfg.Session.Secret))
	}
	if !cfg.CalendarMockEnabled && cfg.Google.ClientID == "" && cfg.Microsoft.ClientID == "" {
		fmt.Println("WARNING: No calendar OAuth clients configured. Calendar connections will be unavailable.")
	}

	if len(cfg.TrustedProxies) == 0 {
		fmt.Println("WARNING: No APP_TRUSTED_PROXIES configured. K7Notes will trust all proxies - Not recommended for public environments.")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}
