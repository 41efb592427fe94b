package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	adapthttp "activityweather/internal/adapter/http"
	"activityweather/internal/adapter/memory"
	"activityweather/internal/adapter/openweather"
	"activityweather/internal/adapter/postgres"
	"activityweather/internal/adapter/strava"
	"activityweather/internal/app"
	"activityweather/internal/config"
	"activityweather/internal/domain"
	"activityweather/internal/observability"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	buildDate = "unknown"
)

type store interface {
	domain.AthleteTokenRepository
	domain.ProcessedActivityRepository
	domain.AllowlistRepository
	Ping(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.IsDevelopment())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := observability.InitSentry(observability.SentryConfig{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     version,
	}, logger); err != nil {
		logger.Warn("error reporting disabled", zap.Error(err))
	}
	defer sentry.Flush(2 * time.Second)

	var db store
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		db = memory.New()
	} else {
		pg, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db open", zap.Error(err))
		}
		defer func() { _ = pg.Close() }()
		db = pg
	}

	ctx := context.Background()
	for _, id := range cfg.AllowedAthleteIDs {
		if err := db.AllowAthlete(ctx, id); err != nil {
			logger.Fatal("seeding allow-list", zap.Int64("athlete_id", id), zap.Error(err))
		}
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	platform := strava.NewClient(strava.Config{
		APIURL:       cfg.StravaAPIURL,
		OAuthURL:     cfg.StravaOAuthURL,
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		RedirectURL:  cfg.RedirectURL(),
	}, httpClient, logger.Named("strava"))
	weather := openweather.NewClient(cfg.OpenWeatherURL, cfg.OpenWeatherAPIKey, cfg.OpenWeatherLang, httpClient, logger.Named("openweather"))

	adminCfg := app.AdminAuthConfig{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		Secret:       []byte(cfg.JWTSecret),
		Issuer:       cfg.JWTIssuer,
	}
	if cfg.OIDCIssuer != "" {
		provider, err := oidc.NewProvider(oidc.ClientContext(ctx, httpClient), cfg.OIDCIssuer)
		if err != nil {
			logger.Fatal("oidc provider", zap.String("issuer", cfg.OIDCIssuer), zap.Error(err))
		}
		adminCfg.Verifier = provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})
	}

	tokenSvc := app.NewTokenService(db, platform, logger.Named("tokens"))
	webhookSvc := app.NewWebhookService(db, db, tokenSvc, platform, weather, cfg.IsDevelopment(), logger.Named("pipeline"))
	authSvc := app.NewAuthService(platform, db, db, logger.Named("auth"))
	subscriptionSvc := app.NewSubscriptionService(platform, cfg.WebhookCallbackURL(), cfg.WebhookVerifyToken, logger.Named("subscriptions"))
	dispatcher := app.NewDispatcher(cfg.WorkerConcurrency, logger.Named("dispatcher"))

	h := adapthttp.New(adapthttp.Deps{
		Pipeline:      webhookSvc,
		Dispatcher:    dispatcher,
		Auth:          authSvc,
		Admin:         app.NewAdminAuthService(adminCfg),
		Subscriptions: subscriptionSvc,
		Health:        db,
		Version: adapthttp.VersionInfo{
			Version:     version,
			BuildDate:   buildDate,
			Environment: cfg.Environment,
		},
		WebhookPath:   cfg.WebhookCallbackPath,
		SecureCookies: !cfg.IsDevelopment(),
		Logger:        logger.Named("http"),
	}).Handler()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Warn("background tasks still running at exit", zap.Error(err))
	}
}
