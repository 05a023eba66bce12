package main

import (
	"fmt"
	"os"

	"github.com/hibiken/asynq"

	"github.com/tenantgate/tenantgate/internal/auth"
	"github.com/tenantgate/tenantgate/internal/config"
	"github.com/tenantgate/tenantgate/internal/database"
	"github.com/tenantgate/tenantgate/internal/logger"
	"github.com/tenantgate/tenantgate/internal/server"
	"github.com/tenantgate/tenantgate/internal/sessions"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close(db)

	redisClient := sessions.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	// Asynq client for session purge tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	srv := server.New(cfg, log, server.Deps{
		DB:       db,
		Store:    sessions.NewRedisStore(redisClient),
		Verifier: auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL),
		Tasks:    asynqClient,
	}, version)

	log.Info().Str("version", version).Msg("Starting Tenantgate server...")

	// Start HTTP server (this blocks until shutdown)
	if err := srv.Start(); err != nil {
		log.Error().Err(err).Msg("Server failed")
	}
}
