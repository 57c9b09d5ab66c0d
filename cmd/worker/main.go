package main

import (
	"context"
	"log"
	"time"

	"huntbrief/internal/activities"
	"huntbrief/internal/config"
	"huntbrief/internal/logging"
	"huntbrief/internal/storage"
	"huntbrief/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	if !cfg.DigestsEnabled() {
		logger.Fatal("worker needs temporal_address and postgres_url")
	}

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		logger.Fatal("dial temporal", zap.Error(err))
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	a, err := activities.NewFromDB(cfg, db, logger)
	if err != nil {
		logger.Fatal("build activities", zap.Error(err))
	}
	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	activities.Register(w, a)

	logger.Info("huntbrief worker listening",
		zap.String("temporal", cfg.TemporalAddress),
		zap.String("queue", cfg.TemporalTaskQueue),
		zap.String("llm_providers", cfg.LLMProviders),
	)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
