// Package main is the entry point for the genesis gateway: the
// job-oriented orchestration layer in front of the capability workers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amine-mosbah/genesis-multimodal-ai/internal/config"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/executor"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/gateway"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/gateway/handlers"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/job"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/logger"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/observability"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/pipeline"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/store/sqlite"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/worker"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func main() {
	// Parse flags
	migrateFlag := flag.Bool("migrate", true, "Run database migrations before starting")
	configPath := flag.String("config", "", "Path to config file (default: genesis.yaml in current directory)")
	flag.Parse()

	// Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	slogger := logger.New("gateway")

	// Setup Database
	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	if *migrateFlag {
		log.Println("Running database migrations...")
		if err := sqlite.Migrate(store.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "genesis-gateway", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	// Use Observable Gauges (Async) that query the DB only when scraped.
	meter := otel.Meter("genesis-gateway")
	for _, status := range []job.Status{job.StatusQueued, job.StatusRunning} {
		status := status
		_, err = meter.Int64ObservableGauge(fmt.Sprintf("genesis.jobs.%s", status),
			metric.WithDescription(fmt.Sprintf("Current number of %s jobs", status)),
			metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
				count, err := store.CountByStatus(ctx, status)
				if err != nil {
					log.Printf("Failed to count %s jobs: %v", status, err)
					return nil // Don't crash metrics scrape on DB error
				}
				obs.Observe(count)
				return nil
			}),
		)
		if err != nil {
			log.Printf("Failed to register %s jobs gauge: %v", status, err)
		}
	}

	// Pipeline Registry: builtins plus optional overlay file
	defs := pipeline.Defaults()
	if cfg.PipelinesFile != "" {
		overlay, err := pipeline.LoadOverlay(cfg.PipelinesFile)
		if err != nil {
			log.Fatalf("Failed to load pipeline overlay: %v", err)
		}
		defs = append(defs, overlay...)
	}
	registry, err := pipeline.New(defs)
	if err != nil {
		log.Fatalf("Invalid pipeline definitions: %v", err)
	}

	// Executor over the configured worker endpoints
	client := worker.NewClient(cfg.Workers, cfg.WorkerTimeout)
	exec := executor.New(store, registry, client, slogger)

	h := handlers.New(store, registry, exec, slogger, handlers.PageLimits{
		Default: cfg.DefaultPageSize,
		Max:     cfg.MaxPageSize,
	})

	// Start Server
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := gateway.New(addr, h, gateway.Options{
		MetricsHandler: metricsHandler,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	go func() {
		log.Printf("Genesis gateway starting on %s", addr)
		if err := srv.Run(ctx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown. In-flight executions are not resumed after a
	// restart; abandoned jobs stay in the running state.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gateway...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited properly")
}
