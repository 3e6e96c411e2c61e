package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/signalforge/signalforge/internal/api/v1"
	"github.com/signalforge/signalforge/internal/config"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/rest/middleware"
)

// Handlers bundles everything the router serves.
type Handlers struct {
	Webhook *v1.WebhookHandler
	Billing *v1.BillingHandler
}

// NewRouter wires middleware and routes. The webhook route authenticates
// via signature verification instead of a bearer token.
func NewRouter(cfg *config.Configuration, log *logger.Logger, handlers Handlers) *gin.Engine {
	if !cfg.IsProduction() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandlerMiddleware,
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := router.Group("/v1")
	group.POST("/webhooks/stripe", handlers.Webhook.HandleStripeWebhook)

	billing := group.Group("/billing")
	billing.Use(
		middleware.AuthenticateMiddleware(cfg, log),
		middleware.SentryUserContextMiddleware,
	)
	billing.POST("/sync", handlers.Billing.SyncNow)
	billing.POST("/portal", handlers.Billing.Portal)

	return router
}
