package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis"
	"gorm.io/gorm"

	"github.com/xpanvictor/newscap/internal/app"
	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/internal/database"
	"github.com/xpanvictor/newscap/internal/server"
	"github.com/xpanvictor/newscap/pkg/Logger"
)

// @title NewsCap Bot API
// @version 1.0
// @description Messaging bridge between Bot Framework channels, a hosted agent service and an MCP tool server.

// @host localhost:3978
// @BasePath /api/v1
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// This is the main entry point for the bot host.
// Loads in all system components
// Exposes functionalities
func main() {
	// fetch cfg
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// load global logger
	logger := Logger.New(cfg.Debug)
	logger.Info("Logger initialized")

	// persistence is optional, the host falls back to in-memory state
	var db *gorm.DB
	if cfg.DB.Host != "" {
		db, err = database.InitDB(cfg)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.MigrateDB(db); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
	}
	var rc *redis.Client
	if cfg.Redis.Addr != "" {
		rc, err = database.NewRedis(cfg.Redis)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
	}

	// SIGINT/SIGTERM cancels the root context: the refresh loop stops
	// and the server drains
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, logger, db, rc)
	if err != nil {
		logger.Fatalf("Failed to wire application: %v", err)
	}

	engine := server.NewRouter(application.ServerDependencies())
	if err := server.Run(ctx, cfg.App.Port, engine, logger); err != nil {
		logger.Errorf("Server exited: %v", err)
	}

	application.Shutdown(context.Background())
	logger.Info("Shutdown system")
}
