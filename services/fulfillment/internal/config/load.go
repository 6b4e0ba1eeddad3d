package config

import (
	"strings"
	"time"

	"github.com/Skotchmaster/bakery_shop/pkg/config"
)

const (
	PricingClient  = "client"
	PricingCatalog = "catalog"
)

type ServiceConfig struct {
	config.Config

	PricingMode      string
	TransitionPolicy string

	TxTimeout    time.Duration
	TxMaxRetries int

	CacheTTL time.Duration
}

func Load() ServiceConfig {
	cfg := config.Load()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustOneOf(cfg.EventsBroker, "EVENTS_BROKER", "kafka", "amqp", "none")

	sc := FromBase(cfg)
	config.MustOneOf(sc.PricingMode, "ORDER_PRICING_MODE", PricingClient, PricingCatalog)
	config.MustOneOf(sc.TransitionPolicy, "DELIVERY_TRANSITIONS", "strict", "legacy")
	return sc
}

// FromBase reads the fulfillment settings without the required-key checks.
func FromBase(cfg config.Config) ServiceConfig {
	return ServiceConfig{
		Config: cfg,

		PricingMode:      strings.ToLower(config.EnvDefault("ORDER_PRICING_MODE", PricingClient)),
		TransitionPolicy: strings.ToLower(config.EnvDefault("DELIVERY_TRANSITIONS", "strict")),

		TxTimeout:    config.EnvDurationDefault("TX_TIMEOUT", 5*time.Second),
		TxMaxRetries: config.EnvIntDefault("TX_MAX_RETRIES", 3),

		CacheTTL: config.EnvDurationDefault("DELIVERY_CACHE_TTL", 10*time.Minute),
	}
}
