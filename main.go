package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keystats/internal"
	"keystats/internal/api"
	"keystats/internal/config"
	"keystats/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLoggerWithFile(internal.ParseLogLevel(appConfig.Logging.Level), internal.LogFileOptions{
		Path: appConfig.Logging.File,
	})
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		logger.Error("Failed to create application container: %v", err)
		os.Exit(1)
	}
	if err := appContainer.InitWithDatabase(ctx); err != nil {
		logger.Error("Failed to initialize container: %v", err)
		os.Exit(1)
	}
	if err := appContainer.Migrate(ctx); err != nil {
		logger.Error("Database migration failed: %v", err)
		os.Exit(1)
	}

	// Admin listener: metrics always, pprof when enabled
	admin := api.StartAdmin(":"+appConfig.Profiling.Port,
		api.NewAdminRouter(appContainer.Records, appConfig.Profiling.Enabled), logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- appContainer.Server.Start(":" + appConfig.Server.Port)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Received %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil {
			logger.Error("API server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := admin.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Admin listener shutdown: %v", err)
	}
	if err := appContainer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}
