package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/signalforge/signalforge/internal/config"
	"github.com/signalforge/signalforge/internal/logger"
)

// Initialize sets up the Sentry SDK. A disabled or unconfigured Sentry is
// not an error; error reporting is then a no-op.
func Initialize(cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Sentry.Enabled || cfg.Sentry.DSN == "" {
		log.Infow("sentry disabled")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		SampleRate:       cfg.Sentry.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return err
	}

	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
	return nil
}

// CaptureException reports an error. Safe to call when Sentry is disabled.
func CaptureException(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// Flush drains buffered events, to be called on shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}
