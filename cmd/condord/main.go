package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/condor/internal/config"
	"github.com/joshp123/condor/internal/core"
	"github.com/joshp123/condor/internal/logger"
	"github.com/joshp123/condor/internal/plugins"
	"github.com/joshp123/condor/internal/router"
	"github.com/joshp123/condor/internal/server"

	_ "github.com/joshp123/condor/plugins/airfryer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the condor config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg := logger.New(cfg.Core.LogLevel)
	defer func() { _ = logg.Sync() }()

	active := plugins.Compiled(cfg, logg)
	if err := core.ValidatePlugins(active); err != nil {
		logg.Fatalw("plugin validation failed", "error", err)
	}
	if err := core.WriteDashboards(cfg.Core.DashboardDir, active); err != nil {
		logg.Warnw("dashboard provisioning failed", "error", err)
	}

	metricsRegistry := core.MetricsRegistry(active)
	metricsRegistry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "condor_build_info",
		Help: "Build information",
	}, func() float64 { return 1 }))

	httpServer := server.NewHTTPServer(cfg.Core.HTTPAddr, router.New(active, metricsRegistry))

	errCh := make(chan error, 1)
	go func() {
		logg.Infow("http server listening", "addr", cfg.Core.HTTPAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logg.Infow("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Errorw("http serve failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logg.Warnw("http shutdown failed", "error", err)
	}
	for _, p := range active {
		if err := p.Close(ctx); err != nil {
			logg.Warnw("plugin close failed", "plugin", p.ID(), "error", err)
		}
	}
}
