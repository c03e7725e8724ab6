package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/analytics"
	"github.com/kartikshukla17/mashoor-landing-project/internal/bootstrap"
	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
	"github.com/kartikshukla17/mashoor-landing-project/internal/config"
	"github.com/kartikshukla17/mashoor-landing-project/internal/favorites"
	"github.com/kartikshukla17/mashoor-landing-project/internal/session"
	"github.com/kartikshukla17/mashoor-landing-project/internal/telemetry"
	"github.com/kartikshukla17/mashoor-landing-project/internal/web"
	"github.com/kartikshukla17/mashoor-landing-project/pkg/kit"
)

const (
	service      = "storefront"
	evictEvery   = time.Minute
	sweepEvery   = 5 * time.Minute
	startTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load(service, os.Args[1:])
	if err != nil {
		kit.NewLogger(service, "info", "development").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel, cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	tel, err := telemetry.New(startCtx, telemetry.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Env,
	}, log)
	if err != nil {
		return err
	}
	defer shutdown(log, "telemetry", tel.Shutdown)

	accessor, src, closeSrc, err := bootstrap.Catalog(startCtx, cfg.Catalog, log)
	if err != nil {
		return err
	}
	defer closeSrc()

	bundle, err := bootstrap.Messages()
	if err != nil {
		return err
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	opts := favorites.RegistryOptions{IdleTTL: cfg.Favorites.IdleTTL, Log: log}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		snaps := favorites.NewRedisSnapshots(rdb, cfg.Redis.TTL)
		if err := snaps.Ping(startCtx); err != nil {
			return err
		}
		opts.Snapshots = snaps
		log.Info("favorites snapshots enabled", zap.String("redis", cfg.Redis.Addr))
	}

	registry := favorites.NewRegistry(opts)
	registry.Start(evictEvery)
	defer registry.Close()

	var emitter analytics.Emitter = analytics.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		cl, err := analytics.NewKafkaClient(startCtx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		emitter = analytics.NewKafkaEmitter(cl, log)
		log.Info("favorite events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	defer shutdown(log, "analytics", emitter.Close)
	registry.Subscribe(emitter.Emit)

	limiter := kit.NewIPRateLimiter(cfg.RateLimit.PerMinute, time.Minute)
	sweepStop := make(chan struct{})
	defer close(sweepStop)
	go web.SweepEvery(limiter, sweepEvery, sweepStop)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &web.Server{
		Catalog:   accessor,
		Favorites: registry,
		I18n:      bundle,
		Renderer:  renderer,
		SiteURL:   cfg.SiteURL,
		Log:       log,
	}
	h := web.NewHandler(s, web.HTTPDeps{
		Log:              log,
		Service:          service,
		Registry:         reg,
		MetricsEnabled:   cfg.Metrics.Enabled,
		MetricsTokenHash: cfg.Metrics.TokenHash,
		Sessions: &session.Manager{
			Tokens: session.NewTokenMaker(cfg.Session.Secret),
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.Secure,
			Log:    log,
		},
		Limiter: limiter,
		CatalogAPI: &catalog.Server{
			Catalog: accessor,
			Source:  src,
			Log:     log,
			Tracer:  tel.Tracer("catalog"),
		},
		Tracing: true,
	})

	return kit.RunHTTPServer(ctx, cfg.HTTPAddr, tel.Middleware(service)(h), log)
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn("shutdown", zap.String("component", name), zap.Error(err))
	}
}
