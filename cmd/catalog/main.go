package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/bootstrap"
	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
	"github.com/kartikshukla17/mashoor-landing-project/internal/config"
	"github.com/kartikshukla17/mashoor-landing-project/internal/telemetry"
	"github.com/kartikshukla17/mashoor-landing-project/pkg/kit"
)

const service = "catalog"

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
		log.Fatal("catalog stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	tel, err := telemetry.New(startCtx, telemetry.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Env,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(sctx)
	}()

	accessor, src, closeSrc, err := bootstrap.Catalog(startCtx, cfg.Catalog, log)
	if err != nil {
		return err
	}
	defer closeSrc()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &catalog.Server{
		Catalog: accessor,
		Source:  src,
		Log:     log,
		Tracer:  tel.Tracer(service),
	}
	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:              log,
		Service:          service,
		Registry:         reg,
		MetricsEnabled:   cfg.Metrics.Enabled,
		MetricsTokenHash: cfg.Metrics.TokenHash,
	})

	return kit.RunHTTPServer(ctx, cfg.HTTPAddr, tel.Middleware(service)(h), log)
}
