// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/ai"
	"github.com/javajoker/reelshop/internal/config"
	"github.com/javajoker/reelshop/internal/database"
	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/metrics"
	"github.com/javajoker/reelshop/internal/router"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/workspace"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize metrics before the database so pool stats register on
	// the real provider
	appMetrics, meterProvider, err := metrics.Init(context.Background(), cfg.Metrics)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize metrics")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("Failed to flush metrics")
		}
	}()

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	media, err := services.NewMediaService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize media storage")
	}

	registry := workspace.NewRegistry(workspace.Options{
		Persister: database.NewSnapshotRepository(db),
		Media:     media,
		AI:        ai.NewHTTPClient(cfg.AI, appMetrics),
		AIConfig:  cfg.AI,
		Metrics:   appMetrics,
	})
	defer registry.Close()

	// Initialize router
	r := router.Initialize(cfg, router.Deps{
		Registry: registry,
		Devices:  database.NewDeviceRepository(db),
		Media:    media,
		Metrics:  appMetrics,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}
