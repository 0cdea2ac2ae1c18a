package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/config"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/callback"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/checkout"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/signing"
	orderstoresqlite "github.com/jcmexdev/fiatpay-bridge/internal/bridge/infra/adapters/orderstore/sqlite"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/infra/httpx"
	"github.com/jcmexdev/fiatpay-bridge/internal/paymentlog"
	paymentlogsqlite "github.com/jcmexdev/fiatpay-bridge/internal/paymentlog/sqlite"
	"github.com/jcmexdev/fiatpay-bridge/internal/pkg/cache"
	"github.com/jcmexdev/fiatpay-bridge/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "fiatpay-bridge"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	signer, err := signing.NewSigner(cfg.HMACSecret)
	if err != nil {
		slog.Error("invalid signing configuration", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OrdersDBPath), 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	orders, err := orderstoresqlite.Open(cfg.OrdersDBPath)
	if err != nil {
		slog.Error("failed to open order store", "path", cfg.OrdersDBPath, "error", err)
		os.Exit(1)
	}
	defer orders.Close()

	var audit paymentlog.Repository
	if cfg.PaymentLogDBPath != "" {
		repo, err := paymentlogsqlite.Open(cfg.PaymentLogDBPath)
		if err != nil {
			slog.Error("failed to open payment log", "path", cfg.PaymentLogDBPath, "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		audit = repo
	}

	var dedup cache.Cache
	if cfg.RedisAddr != "" {
		dedup = cache.NewRedisCache(cfg.RedisAddr, "bridge")
	}

	initiator := checkout.NewInitiator(orders, signer, cfg.ProcessorBaseURL, cfg.MerchantDomain)
	processor := callback.NewProcessor(orders, signing.NewVerifier(signer, cfg.MerchantDomain), audit, dedup)

	router := httpx.NewRouter(httpx.NewHandler(initiator, processor))
	server := &http.Server{Addr: cfg.ListenAddr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("fiatpay bridge running", "addr", cfg.ListenAddr, "merchant", cfg.MerchantDomain)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
