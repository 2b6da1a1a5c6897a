package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"surveyhub/internal/app"
	"surveyhub/internal/config"
	"surveyhub/internal/logger"
	"surveyhub/internal/model"
	"surveyhub/internal/service"
	"surveyhub/internal/transport/rest"
	"surveyhub/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	wsHub := ws.NewHub(log)
	defer wsHub.Close()
	a.SetBroadcaster(wsHub)

	// populate the collection once before serving
	result, err := a.SyncService.EnsureInitialized(ctx, false)
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		log.Info("another instance is populating the collection")
	case err != nil:
		return fmt.Errorf("failed to initialize collection: %w", err)
	case result.Status == model.SyncSkipped:
		log.Info("collection already populated")
	default:
		log.Info("collection populated",
			zap.Int("documents", result.Documents),
			zap.Int("inserted", result.Inserted))
	}

	router := rest.NewRouter(&rest.Container{
		RecordService:  a.RecordService,
		SyncService:    a.SyncService,
		WSHub:          wsHub,
		Metrics:        a.Metrics,
		MetricsHandler: promhttp.Handler(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
