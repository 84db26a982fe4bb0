package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civicline/backend/internal/config"
	"github.com/civicline/backend/internal/db"
	"github.com/civicline/backend/internal/logger"
	"github.com/civicline/backend/internal/routes"
	"github.com/civicline/backend/internal/services"
	"github.com/civicline/backend/internal/throttle"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet, fall back to defaults
		logger.Fatal("Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format, nil)

	gin.SetMode(cfg.Server.GinMode)

	// Connect to the incident store
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repo, closeStore, err := db.Open(ctx, cfg.Store)
	cancel()
	if err != nil {
		logger.Fatal("Failed to connect to store", map[string]interface{}{
			"driver": cfg.Store.Driver,
			"error":  err.Error(),
		})
	}
	defer closeStore()

	guard := throttle.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, "geocoder")
	geocoder, err := services.NewGeocoder(cfg.Geocoder, guard)
	if err != nil {
		logger.Fatal("Failed to create geocoder", map[string]interface{}{
			"provider": cfg.Geocoder.Provider,
			"error":    err.Error(),
		})
	}

	if cfg.Geocoder.APIKey == "" {
		logger.Warn("No geocoder API key configured, reports will have no coordinates", nil)
	}
	if !cfg.Dispatch.Enabled() {
		logger.Warn("Call dispatch is not fully configured, incidents will be stored without a call", nil)
	}

	r := routes.NewRouter(cfg.Server)
	routes.SetupRoutes(r, routes.Dependencies{
		Repo:     repo,
		Geocoder: geocoder,
		Notifier: services.NewDispatchService(cfg.Dispatch),
		Config:   cfg,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	logger.Info("Starting incident backend server", map[string]interface{}{
		"port":     cfg.Server.Port,
		"gin_mode": gin.Mode(),
		"store":    cfg.Store.Driver,
		"geocoder": cfg.Geocoder.Provider,
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	logger.Info("Shutting down server gracefully...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}
