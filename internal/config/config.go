// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the service. Values come from
// environment variables, optionally seeded from a .env file.
type Config struct {
	Addr        string
	Environment string
	DatabaseURL string
	BaseURL     string

	StravaClientID     string
	StravaClientSecret string
	StravaAPIURL       string
	StravaOAuthURL     string
	StravaRedirectURL  string

	WebhookVerifyToken  string
	WebhookCallbackPath string

	OpenWeatherAPIKey string
	OpenWeatherURL    string
	OpenWeatherLang   string

	HTTPTimeout       time.Duration
	WorkerConcurrency int

	// AllowedAthleteIDs seeds the authorization allow-list at startup.
	AllowedAthleteIDs []int64

	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	JWTIssuer         string
	OIDCIssuer        string
	OIDCClientID      string

	SentryDSN string
}

// Load reads a .env file if one exists and then the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        getEnv("ADDR", ":8080"),
		Environment: getEnv("ENVIRONMENT", "production"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),

		StravaClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		StravaAPIURL:       getEnv("STRAVA_API_URL", "https://www.strava.com/api/v3"),
		StravaOAuthURL:     getEnv("STRAVA_OAUTH_URL", "https://www.strava.com/oauth"),
		StravaRedirectURL:  os.Getenv("STRAVA_REDIRECT_URL"),

		WebhookVerifyToken:  os.Getenv("WEBHOOK_VERIFY_TOKEN"),
		WebhookCallbackPath: getEnv("WEBHOOK_CALLBACK_PATH", "/webhook"),

		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherURL:    getEnv("OPENWEATHER_URL", "https://api.openweathermap.org"),
		OpenWeatherLang:   getEnv("OPENWEATHER_LANG", "en"),

		HTTPTimeout:       getDurationEnv("HTTP_TIMEOUT", 15*time.Second),
		WorkerConcurrency: getIntEnv("WORKER_CONCURRENCY", 8),

		AllowedAthleteIDs: parseIDs(os.Getenv("ALLOWED_ATHLETE_IDS")),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTIssuer:         getEnv("JWT_ISSUER", "activityweather"),
		OIDCIssuer:        os.Getenv("OIDC_ISSUER"),
		OIDCClientID:      os.Getenv("OIDC_CLIENT_ID"),

		SentryDSN: os.Getenv("SENTRY_DSN"),
	}
}

// IsDevelopment reports whether the service runs in the development environment.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// RedirectURL returns the OAuth callback URL, derived from BaseURL when unset.
func (c Config) RedirectURL() string {
	if c.StravaRedirectURL != "" {
		return c.StravaRedirectURL
	}
	return c.BaseURL + "/auth/callback"
}

// WebhookCallbackURL is the public URL the platform pushes events to.
func (c Config) WebhookCallbackURL() string {
	return c.BaseURL + c.WebhookCallbackPath
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func parseIDs(value string) []int64 {
	var out []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}
