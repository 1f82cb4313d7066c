package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	authcmd "github.com/vasusumeet/Personal-Finance-App/auth-service/internal/command"
	"github.com/vasusumeet/Personal-Finance-App/auth-service/internal/handler"
	authqry "github.com/vasusumeet/Personal-Finance-App/auth-service/internal/query"
	"github.com/vasusumeet/Personal-Finance-App/auth-service/internal/repository"
	"github.com/vasusumeet/Personal-Finance-App/shared/config"
	"github.com/vasusumeet/Personal-Finance-App/shared/database"
	"github.com/vasusumeet/Personal-Finance-App/shared/events"
	"github.com/vasusumeet/Personal-Finance-App/shared/logging"
	"github.com/vasusumeet/Personal-Finance-App/shared/middleware"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
	redisClient "github.com/vasusumeet/Personal-Finance-App/shared/redis"
	"github.com/vasusumeet/Personal-Finance-App/shared/token"
)

func main() {
	models.UseNumericAmounts()

	cfg, err := config.Load("auth-service", "8081")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger, err := logging.Setup(cfg.Service, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	redis, err := redisClient.NewClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redis.Close()

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis, 10000)
	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	credentials := repository.NewCredentialRepository(db)

	commandSvc := authcmd.NewAuthCommandService(credentials, publisher, logger)
	querySvc := authqry.NewAuthQueryService(credentials, tokens, logger)
	authHandler := handler.NewAuthHandler(commandSvc, querySvc)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/auth")
	{
		api.POST("/signup", authHandler.Signup)
		api.POST("/login", authHandler.Login)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("auth service starting", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
