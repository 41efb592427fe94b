// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"activityweather/internal/app"
	"activityweather/internal/domain"
)

// Pipeline runs enrichment for webhook events and exposes its records.
type Pipeline interface {
	ProcessActivityEvent(ctx context.Context, ev domain.WebhookEvent) app.Outcome
	RecentActivities(ctx context.Context, athleteID int64, limit int) ([]domain.ProcessedActivity, error)
}

// Dispatcher runs tasks detached from the request.
type Dispatcher interface {
	Submit(task func(ctx context.Context)) error
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// VersionInfo describes the running build.
type VersionInfo struct {
	Version     string `json:"version"`
	BuildDate   string `json:"buildDate"`
	Environment string `json:"environment"`
}

// Deps are the collaborators of a Server.
type Deps struct {
	Pipeline      Pipeline
	Dispatcher    Dispatcher
	Auth          *app.AuthService
	Admin         *app.AdminAuthService
	Subscriptions *app.SubscriptionService
	Health        Pinger
	Version       VersionInfo
	WebhookPath   string
	// SecureCookies marks the OAuth state cookie Secure.
	SecureCookies bool
	Logger        *zap.Logger
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	pipeline      Pipeline
	dispatcher    Dispatcher
	authSvc       *app.AuthService
	adminSvc      *app.AdminAuthService
	subscriptions *app.SubscriptionService
	health        Pinger
	version       VersionInfo
	webhookPath   string
	secureCookies bool
	logger        *zap.Logger
}

// New creates a Server wired to the given application services.
func New(d Deps) *Server {
	path := d.WebhookPath
	if path == "" {
		path = "/webhook"
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		pipeline:      d.Pipeline,
		dispatcher:    d.Dispatcher,
		authSvc:       d.Auth,
		adminSvc:      d.Admin,
		subscriptions: d.Subscriptions,
		health:        d.Health,
		version:       d.Version,
		webhookPath:   path,
		secureCookies: d.SecureCookies,
		logger:        logger,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(withNoCache)

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get(s.webhookPath, s.handleWebhookValidation)
	r.Post(s.webhookPath, s.handleWebhookEvent)

	r.Get("/auth", s.handleAuthorize)
	r.Get("/auth/callback", s.handleAuthCallback)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/webhook/subscribe", s.handleSubscribe)
		r.Get("/webhook/subscriptions", s.handleListSubscriptions)
		r.Delete("/webhook/subscribe/{id}", s.handleUnsubscribe)

		r.Post("/admin/allowlist/{athleteID}", s.handleAllowAthlete)
		r.Get("/admin/athletes/{athleteID}/activities", s.handleRecentActivities)
	})

	return r
}
