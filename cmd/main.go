package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/okian/pricewise/internal/adapters/catalog"
	"github.com/okian/pricewise/internal/adapters/http/api"
	"github.com/okian/pricewise/internal/adapters/http/swagger"
	"github.com/okian/pricewise/internal/adapters/notify"
	"github.com/okian/pricewise/internal/adapters/ratelimit"
	"github.com/okian/pricewise/internal/adapters/repository"
	service "github.com/okian/pricewise/internal/app"
	"github.com/okian/pricewise/internal/config"
	"github.com/okian/pricewise/internal/domain/scoring"
	"github.com/okian/pricewise/pkg/logger"
	"github.com/okian/pricewise/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
	redisDialTimeout      = 2 * time.Second
	loginLimiterPrefix    = "pricewise:login"
)

func main() {
	os.Exit(serve())
}

// serve loads config, sets up logging and runs the server. It returns the
// process exit code.
func serve() int {
	// Default Go collectors live on the default registry; ours is custom.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger depends on config, so report on stderr.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn(ctx, "using the development jwt_secret; set PRICEWISE_JWT_SECRET")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server failed", logger.Error(err))
		return 1
	}
	return 0
}

// run wires the process from cfg and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, err := repository.Open(ctx, cfg.DatabaseDSN,
		repository.WithLogger(log.Named("repository")),
		repository.WithSlowQueryThreshold(cfg.SlowQueryThreshold()),
	)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "close store", logger.Error(err))
		}
	}()

	svc := newService(cfg, store, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	limiter, closeLimiter := newLoginLimiter(ctx, cfg, log)
	defer closeLimiter()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, limiter, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("dialect", store.Dialect()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

func newService(cfg *config.Config, store *repository.Store, log logger.Logger) *service.Service {
	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithStore(store),
		service.WithSource(catalog.NewSimulatedSource()),
		service.WithRanker(scoring.NewRanker(
			scoring.WithRatingWeight(cfg.RatingWeight),
			scoring.WithPopularityDivisor(cfg.PopularityDivisor),
		)),
		service.WithJWTSecret(cfg.JWTSecret),
		service.WithTokenTTL(cfg.TokenTTL()),
		service.WithResetCodeTTL(cfg.ResetCodeTTL()),
		service.WithBcryptCost(cfg.BcryptCost),
		service.WithNotifier(notify.New(notify.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		}, log.Named("notify"))),
	)
}

// newLoginLimiter returns the redis limiter backed by an in-memory one when
// redis_addr is set, and the in-memory limiter alone otherwise.
func newLoginLimiter(ctx context.Context, cfg *config.Config, log logger.Logger) (ratelimit.Limiter, func()) {
	mem := ratelimit.NewMemoryLimiter(cfg.LoginRatePerSec, cfg.LoginBurst)
	if cfg.RedisAddr == "" {
		return mem, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DialTimeout: redisDialTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn(ctx, "redis unreachable; login limiter falls back to memory", logger.String("addr", cfg.RedisAddr), logger.Error(err))
	}
	shared := ratelimit.NewRedisLimiter(rdb, loginLimiterPrefix, cfg.LoginRatePerSec, cfg.LoginBurst)
	limiter := ratelimit.NewFallback(shared, mem, func(err error) {
		log.Warn(ctx, "redis limiter failed", logger.Error(err))
	})
	return limiter, func() { _ = rdb.Close() }
}

// newHandler builds the HTTP routes behind the request logger.
func newHandler(ctx context.Context, svc *service.Service, limiter ratelimit.Limiter, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithLogger(log.Named("api")),
		api.WithLoginLimiter(limiter),
	).Register(ctx, mux)
	return api.RequestLogger(log.Named("http"), mux)
}

// startSystemMetricsUpdater periodically refreshes process gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
