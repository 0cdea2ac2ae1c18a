package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("FIATPAY_HMAC_SECRET", "s3cret")
	t.Setenv("FIATPAY_MERCHANT_DOMAIN", "shop.example")
	t.Setenv("FIATPAY_PROCESSOR_URL", "https://pay.example/pay")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "https://pay.example/pay", cfg.ProcessorBaseURL)
	assert.Equal(t, "./data/orders.db", cfg.OrdersDBPath)
}

func TestValidate_RequiresSecret(t *testing.T) {
	cfg := Config{MerchantDomain: "shop.example"}
	require.ErrorIs(t, cfg.Validate(), ErrMissingSecret)
}

func TestValidate_RequiresMerchant(t *testing.T) {
	cfg := Config{HMACSecret: "s3cret"}
	require.ErrorIs(t, cfg.Validate(), ErrMissingMerchant)
}
