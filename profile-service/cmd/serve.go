package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vasusumeet/Personal-Finance-App/profile-service/internal/handler"
	"github.com/vasusumeet/Personal-Finance-App/shared/events"
	"github.com/vasusumeet/Personal-Finance-App/shared/middleware"
	"github.com/vasusumeet/Personal-Finance-App/shared/token"
)

const consumerGroup = "profile-service-group"

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the user event consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newRouter(a *app, verifier middleware.TokenVerifier) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(a.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	profileHandler := handler.NewProfileHandler(a.commands, a.queries)
	profileHandler.RegisterRoutes(router.Group("/api/userdata", middleware.AuthMiddleware(verifier)))
	return router
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "profile-consumer-1"
	}
	return "profile-consumer-" + host
}

// runServe blocks until ctx is cancelled or either the server or the
// subscriber fails.
func runServe(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tokens := token.NewManager(a.cfg.JWTSecret, a.cfg.TokenTTL)
	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           newRouter(a, tokens),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("profile service starting", "port", a.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		subscriber := events.NewSubscriber(a.redis, events.SubscriberConfig{
			Group:    consumerGroup,
			Consumer: consumerName(),
			Stream:   events.UserEventsStream,
			Handler:  a.commands.HandleUserEvent,
			Logger:   a.logger,
		})
		if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
