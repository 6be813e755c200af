// Command planner drives the task and schedule operations from a shell.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/fastygo/planner/internal/app"
	"github.com/fastygo/planner/internal/config"
	redisInfra "github.com/fastygo/planner/internal/infrastructure/redis"
	"github.com/fastygo/planner/internal/infrastructure/storage"
	"github.com/fastygo/planner/pkg/logger"
	redisRepo "github.com/fastygo/planner/repository/redis"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	// Logs go to stderr so stdout stays machine readable.
	zapLogger, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding, Output: os.Stderr})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Context.RequestTimeout)
	defer cancel()

	store, err := storage.Open(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("store open failed", zap.Error(err))
	}
	defer store.Close()

	redisClient, err := redisInfra.NewClient(ctx, cfg.Redis)
	if err != nil {
		zapLogger.Warn("user cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	a := app.New(redisRepo.WithUserCache(store, redisClient, cfg.Redis.UserTTL, zapLogger), cfg.Security, nil, zapLogger)
	if err := run(ctx, a, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
