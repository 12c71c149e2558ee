package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/avatarctic/diskcache/configs"
	"github.com/avatarctic/diskcache/internal/application/services"
	"github.com/avatarctic/diskcache/internal/core/ports"
	"github.com/avatarctic/diskcache/internal/infrastructure/filestore"
	"github.com/avatarctic/diskcache/internal/infrastructure/health"
	"github.com/avatarctic/diskcache/internal/infrastructure/httpserver"
	"github.com/avatarctic/diskcache/internal/infrastructure/memindex"
	"github.com/avatarctic/diskcache/internal/infrastructure/rediscompat"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting diskcache...")

	// Storage tier
	store := filestore.New(cfg.Cache.Dir, logger)
	if err := store.EnsureDirectory(); err != nil {
		logger.Fatal("Failed to prepare cache directory:", err)
	}

	// Memory tier
	index := memindex.New(cfg.Cache.MaxMemoryItems)

	// Engine: one instance per process, passed explicitly to everything that
	// needs it rather than held as package state.
	engine := services.NewCacheService(index, store, services.SystemClock{}, &services.CacheServiceConfig{
		DefaultTTL: cfg.Cache.DefaultTTL,
	}, logger)

	logger.WithFields(logrus.Fields{
		"dir":              cfg.Cache.Dir,
		"max_memory_items": cfg.Cache.MaxMemoryItems,
		"default_ttl":      cfg.Cache.DefaultTTL.String(),
	}).Info("Cache engine ready")

	// The networked-client call surface; hold on to it for the final sweep on
	// shutdown so the process quits the way a client connection would.
	client := rediscompat.NewClient(engine, logger)

	sweeper := services.NewSweeper(engine, cfg.Cache.SweepInterval, logger)
	sweeper.Start()

	hcSlice := []ports.HealthChecker{
		health.NewStorageHealthChecker(cfg.Cache.Dir),
		health.NewEngineHealthChecker(engine),
	}

	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	server := httpserver.NewServer(serverConfig, logger, engine, hcSlice)

	// Start ops server in a goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start ops server:", err)
		}
	}()

	logger.Infof("Ops endpoint listening on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	sweeper.Stop()

	// Final sweep on the way out, mirroring client quit semantics.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Quit(ctx); err != nil {
		logger.WithError(err).Warn("Final sweep failed")
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Ops server forced to shutdown:", err)
	}

	logger.Info("Exited")
}
