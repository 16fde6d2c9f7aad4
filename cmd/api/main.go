package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/askcampus/askcampus/internal/adapters/http"
	"github.com/askcampus/askcampus/internal/bootstrap"
	"github.com/askcampus/askcampus/internal/config"
	"github.com/askcampus/askcampus/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewAPI(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// Build the first snapshot before accepting traffic. An empty index is
	// tolerable (fresh database); a failed rebuild against populated storage
	// is not.
	if err := app.Rebuilder.Rebuild(ctx); err != nil {
		logger.Error("initial_index_rebuild_failed", "error", err)
		os.Exit(1)
	}

	// Every api instance rebuilds its own snapshot when the worker announces
	// new chunks. The subscription blocks until shutdown, so it runs beside
	// the HTTP server.
	go func() {
		err := app.Queue.SubscribeIndexRefresh(ctx, func(msgCtx context.Context) error {
			rebuildCtx, cancel := context.WithTimeout(msgCtx, 2*time.Minute)
			defer cancel()
			return app.Rebuilder.Rebuild(rebuildCtx)
		})
		if err != nil {
			logger.Error("index_refresh_subscribe_failed", "error", err)
			stop()
		}
	}()

	router := httpadapter.NewRouter(
		httpadapter.RouterConfig{
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			MaxInFlight:    cfg.MaxConcurrentConns,
			MaxUploadBytes: cfg.MaxUploadBytes,
		},
		app.QueryUC,
		app.DocumentUC,
		app.DocumentUC,
		app.Health,
		app.Metrics,
		logger,
	)

	server := &http.Server{
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		logger.Error("listen_failed", "port", cfg.APIPort, "error", err)
		os.Exit(1)
	}
	listener = netutil.LimitListener(listener, cfg.MaxConcurrentConns)

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("api_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
