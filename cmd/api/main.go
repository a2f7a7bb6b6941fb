package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/dental-booking/internal/api/router"
	"github.com/wolfman30/dental-booking/internal/app/bootstrap"
	"github.com/wolfman30/dental-booking/internal/bookings"
	appconfig "github.com/wolfman30/dental-booking/internal/config"
	"github.com/wolfman30/dental-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/dental-booking/internal/http/middleware"
	"github.com/wolfman30/dental-booking/internal/observability/metrics"
	"github.com/wolfman30/dental-booking/internal/schedule"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting dental booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.Location().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt := bootstrap.BuildBookingRuntime(ctx, cfg, logger)
	defer rt.Close()

	metricsHandler, bookingMetrics := setupMetrics()
	svc := newBookingService(cfg, rt.Store, logger, bookingMetrics)

	if cfg.SeedDemoBooking {
		seeded, err := svc.SeedDemo(ctx, svc.Engine().Today())
		if err != nil {
			logger.Warn("demo booking not seeded", "error", err)
		} else if seeded {
			logger.Info("seeded demo booking")
		}
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, svc, logger, metricsHandler, limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "backend", rt.Store.ActiveBackend())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}

func newBookingService(cfg *appconfig.Config, store *bookings.Store, logger *logging.Logger, m *metrics.BookingMetrics) *bookings.Service {
	loc, err := cfg.LoadLocation()
	if err != nil {
		logger.Warn("unknown clinic timezone; using UTC", "error", err)
	}
	engine := schedule.NewEngine(schedule.SystemClock{Location: loc}, loc, cfg.SlotGracePeriod)
	return bookings.NewService(store, engine, logger, m)
}

func newRouter(cfg *appconfig.Config, svc *bookings.Service, logger *logging.Logger, metricsHandler http.Handler, limiter *httpmiddleware.RateLimiter) http.Handler {
	if cfg.AdminPassword == "" || cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_PASSWORD or ADMIN_JWT_SECRET unset; admin dashboard disabled")
	}
	return router.New(&router.Config{
		Logger:         logger,
		BookingHandler: handlers.NewBookingHandler(svc, logger),
		PatientHandler: handlers.NewPatientHandler(svc, logger),
		AdminHandler: handlers.NewAdminHandler(svc, handlers.AdminConfig{
			Password:   cfg.AdminPassword,
			JWTSecret:  cfg.AdminJWTSecret,
			SessionTTL: cfg.AdminSessionTTL,
		}, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})
}
