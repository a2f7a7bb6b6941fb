package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/dental-booking/internal/bookings"
	appconfig "github.com/wolfman30/dental-booking/internal/config"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

const connectTimeout = 5 * time.Second

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPostgresPool connects to the remote bookings database. It returns nil
// when DATABASE_URL is unset or the database does not answer a ping.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *pgxpool.Pool {
	if cfg == nil || !cfg.RemoteConfigured() {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("invalid DATABASE_URL; running in local mode", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Warn("bookings database unreachable; running in local mode", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// BookingRuntime owns the store and the connections behind it.
type BookingRuntime struct {
	Store *bookings.Store
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// Close releases the connections.
func (rt *BookingRuntime) Close() {
	if rt == nil {
		return
	}
	if rt.Pool != nil {
		rt.Pool.Close()
	}
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
}

// BuildBookingRuntime picks the booking backend once for the process: the
// remote database when reachable, with a local fallback kept in Redis or, if
// Redis is not configured, in a file under LocalStorePath.
func BuildBookingRuntime(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, opts ...bookings.StoreOption) *BookingRuntime {
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	rt := &BookingRuntime{
		Pool:  BuildPostgresPool(ctx, cfg, logger),
		Redis: BuildRedisClient(ctx, cfg, logger, true),
	}

	var kv bookings.KV
	if rt.Redis != nil {
		kv = bookings.NewRedisKV(rt.Redis)
	} else {
		dir := strings.TrimSpace(cfg.LocalStorePath)
		if dir == "" {
			dir = appconfig.DefaultLocalStorePath
		}
		fileKV := bookings.NewFileKV(dir)
		logger.Info("local bookings kept on disk", "path", fileKV.Path(localKey(cfg)))
		kv = fileKV
	}
	local := bookings.NewLocalBackend(kv, localKey(cfg))

	var primary bookings.Backend
	if rt.Pool != nil {
		primary = bookings.NewPostgresBackend(rt.Pool)
	}

	opts = append([]bookings.StoreOption{bookings.WithLogger(logger)}, opts...)
	rt.Store = bookings.NewStore(primary, local, opts...)
	logger.Info("booking store ready", "backend", rt.Store.ActiveBackend())
	return rt
}

func localKey(cfg *appconfig.Config) string {
	if key := strings.TrimSpace(cfg.LocalStoreKey); key != "" {
		return key
	}
	return bookings.DefaultLocalKey
}
