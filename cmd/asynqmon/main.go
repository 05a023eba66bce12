package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"

	"github.com/tenantgate/tenantgate/internal/config"
	"github.com/tenantgate/tenantgate/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	h := asynqmon.New(asynqmon.Options{
		RootPath: "/asynqmon",
		RedisConnOpt: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	})
	defer h.Close()

	log.Info().
		Str("port", cfg.Worker.AsynqmonPort).
		Str("redis", cfg.Redis.Address).
		Msg("Starting Asynqmon")

	if err := http.ListenAndServe(":"+cfg.Worker.AsynqmonPort, h); err != nil {
		log.Error().Err(err).Msg("Asynqmon stopped")
	}
}
