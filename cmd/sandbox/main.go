package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/config"
	server "github.com/mauv0809/courtside/internal/http"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/sandbox"
)

func main() {
	startTime := time.Now()
	cfg := config.Load(false)
	if cfg.LogFormat == "json" {
		log.SetFormatter(log.JSONFormatter)
	}

	backend := sandbox.New()
	backend.Seed(sandbox.DefaultPlayers()...)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	s := server.NewServer(backend, metricsSvc, metricsHandler, cfg.SandboxSecret)

	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	srv := &http.Server{
		Addr:    ":" + cfg.SandboxPort,
		Handler: s,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Sandbox started", "port", cfg.SandboxPort, "tokens", "/api/sandbox/tokens")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Sandbox shutting down")
}
