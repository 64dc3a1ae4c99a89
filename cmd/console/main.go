package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/greenlink-logistics/dispatch-console/api/routes"
	"github.com/greenlink-logistics/dispatch-console/internal/driverportal"
	"github.com/greenlink-logistics/dispatch-console/internal/gateway"
	"github.com/greenlink-logistics/dispatch-console/internal/geometry"
	"github.com/greenlink-logistics/dispatch-console/internal/livestate"
	"github.com/greenlink-logistics/dispatch-console/internal/session"
	"github.com/greenlink-logistics/dispatch-console/pkg/config"
	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
	"github.com/greenlink-logistics/dispatch-console/pkg/metrics"
	redisclient "github.com/greenlink-logistics/dispatch-console/pkg/redis"
	"github.com/greenlink-logistics/dispatch-console/pkg/routing"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "console"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "console",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redisclient.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessions, err := session.NewStore(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	backendRoot := cfg.Backend.Root(cfg.App.PublicOrigin)
	gatewayClient, err := gateway.NewClient(backendRoot,
		gateway.WithTimeout(cfg.Backend.RequestTimeout),
		gateway.WithLogger(logg),
		gateway.WithMetrics(metrics.NewGatewayMetrics(registry)),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create backend gateway", err)
		os.Exit(1)
	}

	var pathSource geometry.PathSource
	if cfg.Routing.Enabled {
		routingClient, err := routing.NewClient(cfg.Routing.BaseURL,
			routing.WithTimeout(cfg.Routing.RequestTimeout),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create routing client", err)
			os.Exit(1)
		}
		pathSource = routingClient
	}
	paths := geometry.NewService(pathSource, logg)

	state := livestate.New(gatewayClient, cfg.Sync, logg, metrics.NewRefreshMetrics(registry))
	portal := driverportal.NewService(gatewayClient)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go state.Run(runCtx)

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": backendRoot,
	})
	logg.Info(ctx, "starting dispatch console")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			Redis:        redisClient,
			Sessions:     sessions,
			Gateway:      gatewayClient,
			State:        state,
			Paths:        paths,
			DriverPortal: portal,
			Metrics:      registry,
		}),
	}

	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error shutting down server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "console server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "dispatch console stopped")
}
