package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmakana/dabus/internal/arrivals"
	"github.com/mmakana/dabus/internal/config"
	"github.com/mmakana/dabus/internal/httpapi"
	"github.com/mmakana/dabus/internal/observability"
	"github.com/mmakana/dabus/internal/session"
	"github.com/mmakana/dabus/internal/skill"
	"github.com/mmakana/dabus/internal/turnlog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := turnlog.NewStore(ctx, cfg.DatabaseURL, cfg.TurnLogLimit)
	if err != nil {
		log.Fatalf("turn log init failed: %v", err)
	}
	defer store.Close()

	var fetcher arrivals.Fetcher
	if cfg.BusAPIKey == "" {
		fetcher = arrivals.NewMockFetcher()
		log.Printf("arrivals fetcher: mock (BUS_API_KEY not set)")
	} else {
		fetcher = arrivals.NewHTTPFetcher(cfg.BusFeedURL, cfg.BusAPIKey, cfg.FetchTimeout)
		log.Printf("arrivals fetcher: %s (timeout %s)", cfg.BusFeedURL, cfg.FetchTimeout)
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	hub := httpapi.NewHub()
	dispatcher := skill.NewDispatcher(sessions, fetcher, store, metrics, hub)

	api := httpapi.New(cfg, sessions, dispatcher, store, metrics, hub)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
