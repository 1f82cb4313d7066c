package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	profilecmd "github.com/vasusumeet/Personal-Finance-App/profile-service/internal/command"
	profileqry "github.com/vasusumeet/Personal-Finance-App/profile-service/internal/query"
	"github.com/vasusumeet/Personal-Finance-App/profile-service/internal/repository"
	"github.com/vasusumeet/Personal-Finance-App/shared/config"
	"github.com/vasusumeet/Personal-Finance-App/shared/database"
	"github.com/vasusumeet/Personal-Finance-App/shared/events"
	"github.com/vasusumeet/Personal-Finance-App/shared/logging"
	redisClient "github.com/vasusumeet/Personal-Finance-App/shared/redis"
)

const eventStreamMaxLen = 10000

// app holds the connections and services shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redisClient.Client

	commands *profilecmd.ProfileCommandService
	queries  *profileqry.ProfileQueryService
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(serviceName, "8082")
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.Setup(cfg.Service, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	redis, err := redisClient.NewClient(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis, eventStreamMaxLen)
	writeRepo := repository.NewProfileWriteRepository(db)
	readRepo := repository.NewProfileReadRepository(db, redis, cfg.ViewCacheTTL, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		redis:  redis,
		commands: profilecmd.NewProfileCommandService(writeRepo, readRepo, publisher, logger, profilecmd.Options{
			ConflictRetryAttempts: cfg.ConflictRetryAttempts,
			InitialBackoff:        20 * time.Millisecond,
			MaxBackoff:            250 * time.Millisecond,
		}),
		queries: profileqry.NewProfileQueryService(readRepo, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("failed to close redis", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}
