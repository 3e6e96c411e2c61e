package stripe

import (
	"github.com/hashicorp/go-retryablehttp"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/signalforge/signalforge/internal/config"
	"github.com/signalforge/signalforge/internal/domain/billing"
	"github.com/signalforge/signalforge/internal/logger"
)

// Client implements billing.ProviderClient against the Stripe API.
type Client struct {
	sc  *client.API
	cfg *config.Configuration
	log *logger.Logger
}

// NewClient builds the Stripe client. Transient HTTP failures are retried
// at the transport level; Stripe's idempotent GET/search calls tolerate
// that safely.
func NewClient(cfg *config.Configuration, log *logger.Logger) billing.ProviderClient {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = nil

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: retryClient.StandardClient(),
	})

	sc := &client.API{}
	sc.Init(cfg.Stripe.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &Client{sc: sc, cfg: cfg, log: log}
}
