package main

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/homefinder/api/internal/errors"
	"github.com/stwalsh4118/homefinder/api/internal/handlers"
	"github.com/stwalsh4118/homefinder/api/internal/logger"
	"github.com/stwalsh4118/homefinder/api/internal/metrics"
	"github.com/stwalsh4118/homefinder/api/internal/middleware"
)

type routerConfig struct {
	log            *logger.Logger
	metrics        *metrics.Metrics
	corsOrigins    []string
	maxUploadBytes int64
	verifier       middleware.AccessTokenVerifier
}

type routeHandlers struct {
	health        *handlers.HealthHandler
	properties    *handlers.PropertyHandler
	propertyTypes *handlers.PropertyTypeHandler
	images        *handlers.ImageHandler
	favorites     *handlers.FavoriteHandler
	reviews       *handlers.ReviewHandler
	users         *handlers.UserHandler
	auth          *handlers.AuthHandler
}

// setupRouter builds the engine and the route table.
//
// Authenticate is attached only to routes that resolve a caller. The token and
// registration endpoints ignore the Authorization header, so a client holding
// an expired access token can still log in or refresh.
func setupRouter(cfg routerConfig, h routeHandlers) *gin.Engine {
	apierrors.UseJSONFieldNames()
	router := gin.New()
	router.MaxMultipartMemory = cfg.maxUploadBytes

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS -> Metrics
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.log))
	router.Use(middleware.Recovery(cfg.log, cfg.metrics))
	router.Use(middleware.CORS(cfg.corsOrigins))
	router.Use(middleware.Metrics(cfg.metrics))

	// Register health check and metrics routes
	router.GET("/health", h.health.Health)
	router.GET("/health/ready", h.health.Ready)
	router.GET("/api/v1/info", h.health.Info)
	router.GET("/metrics", gin.WrapH(cfg.metrics.Handler()))

	v1 := router.Group("/api/v1")

	// Public routes that never read the Authorization header
	{
		v1.GET("/property-types", h.propertyTypes.List)
		v1.POST("/users/register", h.users.Register)
		v1.POST("/token", h.auth.Login)
		v1.POST("/token/refresh", h.auth.Refresh)
		v1.POST("/token/verify", h.auth.Verify)
	}

	authed := v1.Group("", middleware.Authenticate(cfg.verifier))
	requireAuth := middleware.RequireAuth()
	{
		properties := authed.Group("/properties")
		{
			properties.GET("", h.properties.List)
			properties.GET("/:id", h.properties.Get)
			properties.POST("", requireAuth, h.properties.Create)
			properties.PUT("/:id", requireAuth, h.properties.Replace)
			properties.PATCH("/:id", requireAuth, h.properties.Patch)
			properties.DELETE("/:id", requireAuth, h.properties.Delete)
		}

		images := authed.Group("/property-images", requireAuth)
		{
			images.POST("", h.images.Upload)
			images.DELETE("/:id", h.images.Delete)
		}

		favorites := authed.Group("/favorites", requireAuth)
		{
			favorites.GET("", h.favorites.List)
			favorites.POST("", h.favorites.Create)
			favorites.GET("/:id", h.favorites.Get)
			favorites.DELETE("/:id", h.favorites.Delete)
		}

		reviews := authed.Group("/reviews")
		{
			reviews.GET("", h.reviews.List)
			reviews.GET("/:id", h.reviews.Get)
			reviews.POST("", requireAuth, h.reviews.Create)
		}

		authed.GET("/user", requireAuth, h.users.Me)
		authed.POST("/logout", requireAuth, h.auth.Logout)
	}

	return router
}
