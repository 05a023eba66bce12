package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tenantgate/tenantgate/internal/config"
	"github.com/tenantgate/tenantgate/internal/database"
	"github.com/tenantgate/tenantgate/internal/logger"
	"github.com/tenantgate/tenantgate/internal/sessions"
)

// loadRuntime loads configuration and a console logger for local commands
func loadRuntime() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w\nSet JWT_SECRET and DATABASE_URL in the environment or a .env file", err)
	}

	logger.Init(cfg.Logging.Level, "console")
	return cfg, logger.GetLogger(), nil
}

// openDatabase opens the configured database; the caller closes it
func openDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// openSessionStore connects to Redis and verifies it is reachable
func openSessionStore(ctx context.Context, cfg *config.Config) (*sessions.RedisStore, func(), error) {
	client := sessions.NewRedisClient(cfg.Redis)
	store := sessions.NewRedisStore(client)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Address, err)
	}

	return store, func() { _ = client.Close() }, nil
}

// defaultServerURL is the local API address derived from config
func defaultServerURL(cfg *config.Config) string {
	return fmt.Sprintf("http://localhost:%s", cfg.HTTP.Port)
}
