package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ats-portal/internal/app"
	"ats-portal/internal/config"
	"ats-portal/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	envFilePath      = ".env"
	signalBufferSize = 1
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	if err := godotenv.Load(envFilePath); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	zl.Info("configuration loaded",
		zap.String("session_store", cfg.Session.Store),
		zap.Bool("directory", cfg.Auth.DirectoryFile != ""),
		zap.Bool("exchange", cfg.Auth.ExchangeEnabled()))

	service, err := app.InitializeService(context.Background(), cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize service", zap.Error(err))
	}

	go func() {
		if err := service.Start(); err != nil {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	zl.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := service.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
		return
	}

	zl.Info("server exited gracefully")
}
