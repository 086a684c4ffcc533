// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"inspection-workers/internal/common/camunda"
	"inspection-workers/internal/common/config"
	"inspection-workers/internal/common/health"
	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/common/observability"
	"inspection-workers/internal/pipeline"
	"inspection-workers/internal/workers/reports/reportjob"

	exportjson "inspection-workers/internal/workers/reports/export-json"
	generatedocx "inspection-workers/internal/workers/reports/generate-docx"
	importjson "inspection-workers/internal/workers/reports/import-json"
	prefillreport "inspection-workers/internal/workers/reports/prefill-report"
)

const serviceName = "inspection-workers"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.Build(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		logger.New("info", "console").Fatal("logger setup failed", zap.Error(err))
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	if err := config.ValidateForWorkers(cfg); err != nil {
		zapLog.Fatal("invalid worker configuration", zap.Error(err))
	}

	obs, err := observability.New(serviceName)
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
		obs = observability.NewNoop()
	}
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Document pipeline (Redis, S3, templates, assembler) ---
	pipe, err := pipeline.New(ctx, cfg, log, pipeline.Options{UseRedis: true, RedisRetries: 15})
	if err != nil {
		zapLog.Fatal("document pipeline setup failed", zap.Error(err))
	}
	defer pipe.Close()

	// --- Zeebe client with retry ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFromApp(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	manager := camunda.NewWorkerManager(zeebe.GetClient(), log)
	if err := registerWorkers(manager, cfg, pipe, obs, log); err != nil {
		zapLog.Fatal("worker registration failed", zap.Error(err))
	}
	zapLog.Info("Report workers registered", zap.Strings("taskTypes", manager.TaskTypes()))

	// --- Health & Metrics Server ---
	checker := health.NewChecker(3 * time.Second)
	checker.Register("zeebe", zeebe.HealthCheck)
	if pipe.Redis != nil {
		checker.Register("redis", pipe.Redis.Ping)
	}
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           health.NewRouter(serviceName, checker, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	manager.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// registerWorkers builds the report handlers and opens one job worker each.
func registerWorkers(m *camunda.WorkerManager, cfg *config.Config, pipe *pipeline.Pipeline, obs *observability.Observability, log logger.Logger) error {
	// a nil *store.RecordStore must stay an untyped nil interface
	var records reportjob.RecordStore
	if pipe.Records != nil {
		records = pipe.Records
	}

	docxCfg := generatedocx.NewConfig(cfg)
	docxHandler, err := generatedocx.NewHandler(generatedocx.HandlerOptions{
		Config:        docxCfg,
		Exporter:      pipe.Assembler,
		Records:       records,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	exportCfg := exportjson.NewConfig(cfg)
	exportHandler, err := exportjson.NewHandler(exportjson.HandlerOptions{
		Config:        exportCfg,
		Exporter:      pipe.Assembler,
		Records:       records,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	importCfg := importjson.NewConfig(cfg)
	importHandler, err := importjson.NewHandler(importjson.HandlerOptions{
		Config:        importCfg,
		Importer:      pipe.Assembler,
		Records:       records,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	prefillCfg := prefillreport.NewConfig(cfg)
	prefillHandler, err := prefillreport.NewHandler(prefillreport.HandlerOptions{
		Config:        prefillCfg,
		Records:       records,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	workers := []struct {
		handler  camunda.JobHandler
		settings camunda.WorkerSettings
	}{
		{docxHandler, camunda.WorkerSettings{MaxJobsActive: docxCfg.MaxJobsActive, Timeout: docxCfg.Timeout}},
		{exportHandler, camunda.WorkerSettings{MaxJobsActive: exportCfg.MaxJobsActive, Timeout: exportCfg.Timeout}},
		{importHandler, camunda.WorkerSettings{MaxJobsActive: importCfg.MaxJobsActive, Timeout: importCfg.Timeout}},
		{prefillHandler, camunda.WorkerSettings{MaxJobsActive: prefillCfg.MaxJobsActive, Timeout: prefillCfg.Timeout}},
	}
	for _, w := range workers {
		if err := m.Start(w.handler, w.settings); err != nil {
			return err
		}
	}
	return nil
}
