package api

import (
	"github.com/gin-gonic/gin"
	"github.com/memelab/memeqa/internal/api/handler"
	"github.com/memelab/memeqa/internal/api/middleware"
	"github.com/memelab/memeqa/internal/config"
	"github.com/memelab/memeqa/internal/logger"
	"github.com/memelab/memeqa/internal/service"
)

// Handlers bundles the route handlers wired by SetupRouter.
type Handlers struct {
	Memes       *handler.MemeHandler
	Evaluations *handler.EvaluationHandler
	Auth        *handler.AuthHandler
	Stats       *handler.StatsHandler
}

// SetupRouter configures the Gin router with all routes.
// Parameters:
//   - cfg: server configuration (mode, CORS, cookie name).
//   - identity: identity resolver used by the session middleware.
//   - handlers: route handlers.
//   - log: base logger for the request middleware.
// Returns:
//   - *gin.Engine: configured router.
func SetupRouter(cfg *config.Config, identity *service.IdentityService, handlers Handlers, log *logger.Logger) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))
	r.Use(middleware.SessionMiddleware(identity, cfg.Auth.CookieName))

	// Health check
	healthHandler := handler.NewHealthHandler()
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Vocabularies and quota
		v1.GET("/meta", handlers.Memes.Meta)
		v1.GET("/quota", handlers.Evaluations.Quota)

		// Memes
		v1.POST("/memes", handlers.Memes.Upload)
		v1.GET("/memes", handlers.Memes.List)
		v1.GET("/memes/:id", handlers.Memes.Get)
		v1.POST("/memes/:id/like", handlers.Memes.ToggleLike)

		// Evaluations
		v1.GET("/evaluations/next", handlers.Evaluations.Next)
		v1.POST("/evaluations", handlers.Evaluations.Submit)

		// Auth
		v1.POST("/auth/register", handlers.Auth.Register)
		v1.POST("/auth/login/request", handlers.Auth.RequestLogin)
		v1.GET("/auth/login", handlers.Auth.Login)
		v1.POST("/auth/logout", handlers.Auth.Logout)
		v1.GET("/auth/profile", handlers.Auth.Profile)

		// Stats
		v1.GET("/stats", handlers.Stats.Global)
		v1.GET("/stats/distributions", handlers.Stats.Distributions)
		v1.GET("/stats/analytics", handlers.Stats.Analytics)
		v1.GET("/export", handlers.Stats.Export)
	}

	return r
}
