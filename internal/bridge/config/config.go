// Package config carries the process-wide settings of the bridge as an
// explicit value. Loaded once at startup and never mutated per request.
package config

import (
	"errors"
	"os"
)

// Config holds everything the bridge reads from its environment. The
// HMAC secret is shared with the payment processor out-of-band; it must
// never be logged or transmitted.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string

	// ProcessorBaseURL is the payment processor endpoint the shopper is
	// redirected to, with the encoded payload appended as a path segment.
	ProcessorBaseURL string

	// HMACSecret signs outbound payloads and verifies inbound callbacks.
	HMACSecret string

	// MerchantDomain is this shop's bare hostname (no scheme); part of the
	// signed payload.
	MerchantDomain string

	// OrdersDBPath and PaymentLogDBPath are the SQLite files. An empty
	// PaymentLogDBPath disables the audit log.
	OrdersDBPath     string
	PaymentLogDBPath string

	// RedisAddr enables the duplicate-delivery detector when non-empty.
	RedisAddr string
}

var (
	ErrMissingSecret   = errors.New("config: FIATPAY_HMAC_SECRET is required")
	ErrMissingMerchant = errors.New("config: FIATPAY_MERCHANT_DOMAIN is required")
)

// FromEnv builds a Config from environment variables with development
// defaults where safe. Call Validate before using it.
func FromEnv() Config {
	return Config{
		ListenAddr:       ":" + getEnv("PORT", "8080"),
		ProcessorBaseURL: os.Getenv("FIATPAY_PROCESSOR_URL"),
		HMACSecret:       os.Getenv("FIATPAY_HMAC_SECRET"),
		MerchantDomain:   os.Getenv("FIATPAY_MERCHANT_DOMAIN"),
		OrdersDBPath:     getEnv("FIATPAY_ORDERS_DB", "./data/orders.db"),
		PaymentLogDBPath: getEnv("FIATPAY_PAYMENTLOG_DB", "./data/paymentlog.db"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
	}
}

// Validate rejects configurations the bridge must not start with. A
// missing secret is a hard error, never a silent empty key.
func (c Config) Validate() error {
	if c.HMACSecret == "" {
		return ErrMissingSecret
	}
	if c.MerchantDomain == "" {
		return ErrMissingMerchant
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
