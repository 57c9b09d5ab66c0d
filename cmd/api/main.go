package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"huntbrief/internal/api"
	"huntbrief/internal/config"
	"huntbrief/internal/logging"

	"github.com/joho/godotenv"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := api.ListenAndServe(ctx, cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}
