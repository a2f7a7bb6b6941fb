package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wolfman30/dental-booking/internal/app/bootstrap"
	"github.com/wolfman30/dental-booking/internal/bookings"
	appconfig "github.com/wolfman30/dental-booking/internal/config"
	"github.com/wolfman30/dental-booking/internal/schedule"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(openService)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openService connects to the same store the API server would use. When
// DATABASE_URL is set but the database cannot be reached it fails instead of
// editing the local fallback, which the server would not read.
func openService(ctx context.Context) (*bookings.Service, func(), error) {
	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: "warn", Format: "text", Output: os.Stderr})

	rt := bootstrap.BuildBookingRuntime(ctx, cfg, logger)
	if cfg.RemoteConfigured() && rt.Pool == nil {
		rt.Close()
		return nil, nil, errors.New("bookingctl: DATABASE_URL is set but the bookings database is unreachable")
	}

	loc, err := cfg.LoadLocation()
	if err != nil {
		logger.Warn("unknown clinic timezone; using UTC", "error", err)
	}
	engine := schedule.NewEngine(schedule.SystemClock{Location: loc}, loc, cfg.SlotGracePeriod)
	return bookings.NewService(rt.Store, engine, logger, nil), rt.Close, nil
}
