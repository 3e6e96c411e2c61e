package main

import (
	"context"
	"database/sql"
	"net/http"

	"go.uber.org/fx"

	v1 "github.com/signalforge/signalforge/internal/api/v1"
	"github.com/signalforge/signalforge/internal/config"
	"github.com/signalforge/signalforge/internal/domain/billing"
	"github.com/signalforge/signalforge/internal/domain/catalog"
	stripeclient "github.com/signalforge/signalforge/internal/integration/stripe"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/repository/postgres"
	"github.com/signalforge/signalforge/internal/repository/supabase"
	"github.com/signalforge/signalforge/internal/rest"
	"github.com/signalforge/signalforge/internal/sentry"
	"github.com/signalforge/signalforge/internal/service"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			postgres.NewDB,
			postgres.NewProfileRepository,
			supabase.NewIdentityStore,
			stripeclient.NewClient,
			catalog.New,
			billing.NewExtractor,
			service.NewCustomerService,
			service.NewReconciliationService,
			v1.NewWebhookHandler,
			v1.NewBillingHandler,
			newRouterHandlers,
		),
		fx.Invoke(initSentry),
		fx.Invoke(startServer),
	).Run()
}

func newRouterHandlers(webhook *v1.WebhookHandler, billingHandler *v1.BillingHandler) rest.Handlers {
	return rest.Handlers{
		Webhook: webhook,
		Billing: billingHandler,
	}
}

func initSentry(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) error {
	if err := sentry.Initialize(cfg, log); err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sentry.Flush()
			return nil
		},
	})
	return nil
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	log *logger.Logger,
	db *sql.DB,
	handlers rest.Handlers,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: rest.NewRouter(cfg, log, handlers),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			return db.Close()
		},
	})
}
