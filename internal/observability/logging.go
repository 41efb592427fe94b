package observability

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// NewLogger builds the process logger: console output in development, JSON
// otherwise.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
}

// InitSentry enables error reporting. It is a no-op without a DSN.
func InitSentry(cfg SentryConfig, logger *zap.Logger) error {
	if cfg.DSN == "" {
		logger.Info("sentry DSN not configured, error reporting disabled")
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Request != nil && event.Request.Headers != nil {
				delete(event.Request.Headers, "Authorization")
				delete(event.Request.Headers, "Cookie")
			}
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	logger.Info("sentry initialized", zap.String("environment", cfg.Environment))
	return nil
}

// CaptureError reports err with optional tags. Without an initialized client
// the call does nothing.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}
