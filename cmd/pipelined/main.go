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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lucamachado49/finance-pipeline/internal/config"
	"github.com/lucamachado49/finance-pipeline/internal/metrics"
	"github.com/lucamachado49/finance-pipeline/internal/schedule"
	"github.com/lucamachado49/finance-pipeline/pkg/ingest"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	runOnStart := flag.Bool("run-on-start", false, "Run one ingest immediately on startup")
	flag.Parse()

	// Load environment from .env if present
	_ = godotenv.Load()

	if v := os.Getenv("CONFIG_PATH"); v != "" && *configPath == "config.yaml" {
		*configPath = v
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := ingest.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("pipeline daemon starting",
		zap.Strings("tickers", cfg.Tickers),
		zap.String("cron", cfg.Schedule.Cron),
		zap.String("provider", cfg.Source.Provider))

	svc, err := ingest.NewService(cfg, logger)
	if err != nil {
		logger.Fatal("failed to start service", zap.Error(err))
	}
	defer svc.Close()

	if err := svc.Setup(context.Background()); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	metrics.Register(prometheus.DefaultRegisterer)
	metricsSrv := metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, logger)
	metricsSrv.Start()

	sched := schedule.New(cfg.Schedule.Timezone, cfg.Schedule.RunTimeout(), logger)
	job := &ingestJob{svc: svc}
	if err := sched.Schedule(cfg.Schedule.Cron, job); err != nil {
		logger.Fatal("failed to schedule ingest", zap.Error(err))
	}
	sched.Start()

	if next, err := sched.NextRun(job.Name()); err == nil {
		logger.Info("ingest scheduled", zap.Time("next_run", next))
	}

	if *runOnStart || cfg.Schedule.RunOnStart {
		logger.Info("run on start enabled, executing ingest now")
		if err := sched.RunNow(job.Name()); err != nil {
			logger.Error("failed to trigger startup run", zap.Error(err))
		}
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Stop(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", zap.Error(err))
	}
	logger.Info("pipeline daemon stopped")
}

// ingestJob adapts the ingest service to the scheduler.
type ingestJob struct {
	svc ingest.Service
}

func (j *ingestJob) Name() string { return "ingest" }

func (j *ingestJob) Execute(ctx context.Context) error {
	summary, err := j.svc.RunOnce(ctx, nil, time.Time{}, time.Time{})
	if err != nil {
		return err
	}
	if len(summary.Results) > 0 && summary.Done == 0 {
		return fmt.Errorf("all %d tickers failed", summary.Failed)
	}
	return nil
}
