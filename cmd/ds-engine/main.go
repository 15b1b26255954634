package main

import (
	"DrawSpectra/internal/api"
	"DrawSpectra/internal/config"
	"DrawSpectra/internal/engine/manager"
	"DrawSpectra/internal/metrics"
	"DrawSpectra/internal/query"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "go.uber.org/automaxprocs"
)

func main() {
	log.Println("Starting ds-engine...")

	// 1. Load configuration
	cfg, err := config.LoadOrDefault("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Metrics are only exposed through the API server.
	var collector metrics.Collector = metrics.NewNop()
	var reg *prometheus.Registry
	if cfg.API.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector = metrics.NewPrometheus(reg, cfg.Metrics.Namespace)
	}

	// 3. Build the manager and resume from the checkpoint
	mgr, err := manager.NewManager(cfg, collector)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}
	if err := mgr.Start(); err != nil {
		log.Fatalf("Failed to start manager: %v", err)
	}

	// 4. Start the API server
	var server *api.Server
	if cfg.API.Enabled {
		querier, err := query.NewFromConfig(cfg)
		if err != nil {
			log.Printf("Warning: history queries disabled: %v", err)
			querier = nil
		}
		if querier != nil {
			defer querier.Close()
		}
		server = api.NewServer(cfg.API, mgr.Board(), reg, querier)
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}

	// 5. Wait for a shutdown signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping simulation...")
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Stop(ctx); err != nil {
			log.Printf("API server forced to shutdown: %v", err)
		}
		cancel()
	}
	mgr.Stop()
	log.Println("Shutdown complete.")
}
