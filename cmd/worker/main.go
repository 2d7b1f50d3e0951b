package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/guardianai/guardianai/internal/bootstrap"
	"github.com/guardianai/guardianai/internal/config"
	"github.com/guardianai/guardianai/internal/observability/logging"
	"github.com/guardianai/guardianai/internal/observability/metrics"
)

const processTimeout = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("guardian-worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("guardian-worker")
	app.ProcessUC.OnIndexed(func(chunks int) {
		workerMetrics.ObserveIndexedChunks("guardian-worker", chunks)
	})

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribePolicyIngested(ctx, func(handlerCtx context.Context, policyID string) error {
		workerMetrics.StartPolicy()
		start := time.Now()

		processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
		defer cancel()

		if policy, lookupErr := app.Repo.GetByID(processCtx, policyID); lookupErr == nil {
			workerMetrics.ObserveQueueLag("guardian-worker", start.Sub(policy.CreatedAt))
		}

		processErr := app.ProcessUC.ProcessByID(processCtx, policyID)
		workerMetrics.FinishPolicy("guardian-worker", time.Since(start), processErr)
		return processErr
	})
	if err != nil {
		logger.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}
