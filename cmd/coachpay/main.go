package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"coachpay/internal/backend"
	"coachpay/internal/cli"
	apphttp "coachpay/internal/http"
	applog "coachpay/internal/log"
	"coachpay/internal/metrics"
	"coachpay/internal/services"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger("info", applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(boot.Logger)
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)

	m := metrics.NewManager(metrics.WithRuntimeCollectors())

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	opts := []services.Option{
		services.WithMetrics(m),
		services.WithSeasonYear(cfg.SeasonYear),
	}
	if result.Publisher != nil {
		opts = append(opts, services.WithPublisher(result.Publisher))
	}
	records := services.NewRecordService(result.Store, opts...)
	payments := services.NewPaymentService(result.Store, m)

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Records:  records,
		Payments: payments,
		Metrics:  m,
		Logger:   logger,
		Ready:    result.Ready,
	}, apphttp.Options{
		OperatorPhrase:     cfg.OperatorPhrase,
		AdminPhrase:        cfg.AdminPhrase,
		SessionTTL:         cfg.SessionTTL,
		SecureCookies:      cfg.SecureCookies,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting coachpay server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"season_year", cfg.SeasonYear,
		"sync_enabled", result.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
