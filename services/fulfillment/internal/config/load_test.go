package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/bakery_shop/pkg/config"
)

func TestFromBase(t *testing.T) {
	t.Setenv("ORDER_PRICING_MODE", "Catalog")
	t.Setenv("DELIVERY_TRANSITIONS", "")
	t.Setenv("TX_TIMEOUT", "2s")
	t.Setenv("TX_MAX_RETRIES", "5")

	sc := FromBase(config.Load())
	assert.Equal(t, PricingCatalog, sc.PricingMode)
	assert.Equal(t, "strict", sc.TransitionPolicy)
	assert.Equal(t, 2*time.Second, sc.TxTimeout)
	assert.Equal(t, 5, sc.TxMaxRetries)
	assert.Equal(t, 10*time.Minute, sc.CacheTTL)
}
