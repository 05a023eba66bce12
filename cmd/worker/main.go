package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/tenantgate/tenantgate/internal/auth"
	"github.com/tenantgate/tenantgate/internal/config"
	"github.com/tenantgate/tenantgate/internal/logger"
	"github.com/tenantgate/tenantgate/internal/sessions"
	"github.com/tenantgate/tenantgate/internal/tasks"
	"github.com/tenantgate/tenantgate/internal/workers"
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

	log.Info().Str("version", version).Msg("Starting Tenantgate Asynq worker")

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	redisClient := sessions.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	janitor := workers.NewSessionJanitor(
		sessions.NewRedisStore(redisClient),
		auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL),
		log,
	)

	// Initialize Asynq client (for the sweep scheduler)
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	// Initialize Asynq server
	asynqServer := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: &asynqLogger{log: log},
		},
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSweepSessions, func(ctx context.Context, t *asynq.Task) error {
		return workers.HandleSweepSessions(ctx, t, janitor, log)
	})
	mux.HandleFunc(tasks.TypePurgeUserSession, func(ctx context.Context, t *asynq.Task) error {
		return workers.HandlePurgeUserSessions(ctx, t, janitor, log)
	})

	if cfg.Worker.SessionSweepSchedule != "" {
		scheduler, err := workers.NewSweepScheduler(cfg.Worker.SessionSweepSchedule, asynqClient, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid session sweep schedule")
		}
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		log.Info().Msg("Session sweep disabled")
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Info().Msg("Starting Asynq worker server...")
		if err := asynqServer.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("Asynq worker server failed")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info().Msg("Received shutdown signal, shutting down gracefully...")

	asynqServer.Shutdown()

	log.Info().Msg("Worker shutdown complete")
}

// asynqLogger is a wrapper to make zerolog compatible with Asynq's logger interface
type asynqLogger struct {
	log zerolog.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.log.Debug().Msg(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.log.Info().Msg(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.log.Warn().Msg(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.log.Error().Msg(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.log.Fatal().Msg(fmt.Sprint(args...))
}
