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

	"github.com/vasusumeet/Personal-Finance-App/api-gateway/internal/proxy"
	"github.com/vasusumeet/Personal-Finance-App/shared/config"
	"github.com/vasusumeet/Personal-Finance-App/shared/logging"
	"github.com/vasusumeet/Personal-Finance-App/shared/token"
)

func main() {
	cfg, err := config.Load("api-gateway", "8080")
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

	router := proxy.NewRouter(
		proxy.NewForwarder(30*time.Second, logger),
		proxy.Targets{AuthServiceURL: cfg.AuthServiceURL, ProfileServiceURL: cfg.ProfileServiceURL},
		token.NewManager(cfg.JWTSecret, cfg.TokenTTL),
		cfg.CORSOrigins,
	)

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

	logger.Info("api gateway starting",
		"port", cfg.Port,
		"auth_service", cfg.AuthServiceURL,
		"profile_service", cfg.ProfileServiceURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
