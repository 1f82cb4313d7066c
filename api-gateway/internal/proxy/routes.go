package proxy

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vasusumeet/Personal-Finance-App/shared/middleware"
)

type Targets struct {
	AuthServiceURL    string
	ProfileServiceURL string
}

// NewRouter builds the gateway. Profile routes are token-checked here as
// well as in the profile service, so unauthenticated traffic never reaches
// the backend.
func NewRouter(f *Forwarder, targets Targets, verifier middleware.TokenVerifier, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(f.logger))
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "api-gateway"})
	})

	// Auth routes (no authentication required)
	toAuth := f.To(targets.AuthServiceURL)
	router.POST("/api/auth/signup", toAuth)
	router.POST("/api/auth/login", toAuth)

	toProfile := f.To(targets.ProfileServiceURL)
	userdata := router.Group("/api/userdata", middleware.AuthMiddleware(verifier))
	{
		userdata.POST("", toProfile)
		userdata.Any("/:userId", toProfile)
		userdata.Any("/:userId/*rest", toProfile)
	}

	router.NoRoute(func(c *gin.Context) {
		middleware.RespondWithError(c, http.StatusNotFound, "Route not found")
	})
	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		// cors.New panics on an empty origin list
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}
