package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/types"
)

// Configuration is the full application configuration, loaded once at
// startup. Values come from config.yaml with SIGNALFORGE_-prefixed
// environment overrides.
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Billing    BillingConfig    `mapstructure:"billing"`
}

type DeploymentConfig struct {
	Mode        string `mapstructure:"mode" validate:"required"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type AuthConfig struct {
	Supabase SupabaseConfig `mapstructure:"supabase"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
	JWTSecret  string `mapstructure:"jwt_secret"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// PriceBinding binds one provider price id to a (plan, cycle) pair. The
// price catalog is built from these at startup.
type PriceBinding struct {
	PriceID      string             `mapstructure:"price_id"`
	PlanSlug     types.PlanSlug     `mapstructure:"plan_slug"`
	BillingCycle types.BillingCycle `mapstructure:"billing_cycle"`
	Amount       decimal.Decimal    `mapstructure:"amount"`
	Currency     string             `mapstructure:"currency"`
}

type BillingConfig struct {
	Prices          []PriceBinding `mapstructure:"prices"`
	PortalReturnURL string         `mapstructure:"portal_return_url"`
}

// NewConfig loads the configuration. A missing config file is tolerated
// (everything can come from the environment); invalid configuration is not.
func NewConfig() (*Configuration, error) {
	// Load .env if present; environment variables win over file values.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SIGNALFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("deployment.mode", "api")
	v.SetDefault("deployment.environment", "development")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("sentry.sample_rate", 1.0)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrConfiguration)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse configuration").
			Mark(ierr.ErrConfiguration)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate refuses to start on missing credentials. The subsystem must not
// silently no-op when its stores or the payment provider are unreachable
// by construction.
func (c *Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid configuration").
			Mark(ierr.ErrConfiguration)
	}

	if c.Stripe.SecretKey == "" {
		return ierr.NewError("stripe secret key is not configured").
			WithHint("Set SIGNALFORGE_STRIPE_SECRET_KEY").
			Mark(ierr.ErrConfiguration)
	}
	if c.Auth.Supabase.BaseURL == "" || c.Auth.Supabase.ServiceKey == "" {
		return ierr.NewError("supabase credentials are not configured").
			WithHint("Set SIGNALFORGE_AUTH_SUPABASE_BASE_URL and SIGNALFORGE_AUTH_SUPABASE_SERVICE_KEY").
			Mark(ierr.ErrConfiguration)
	}
	if c.Postgres.DSN == "" {
		return ierr.NewError("postgres DSN is not configured").
			WithHint("Set SIGNALFORGE_POSTGRES_DSN").
			Mark(ierr.ErrConfiguration)
	}

	// Partial price catalogs are expected outside production; an empty one
	// in production means billing cannot be resolved at all.
	if c.IsProduction() && len(c.Billing.Prices) == 0 {
		return ierr.NewError("no price bindings configured").
			WithHint("Configure at least one billing price binding").
			Mark(ierr.ErrConfiguration)
	}

	return nil
}

func (c *Configuration) IsProduction() bool {
	return strings.EqualFold(c.Deployment.Environment, "production")
}
