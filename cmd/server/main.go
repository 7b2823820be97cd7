package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/homefinder/api/internal/config"
	"github.com/stwalsh4118/homefinder/api/internal/database"
	"github.com/stwalsh4118/homefinder/api/internal/events"
	"github.com/stwalsh4118/homefinder/api/internal/handlers"
	"github.com/stwalsh4118/homefinder/api/internal/logger"
	"github.com/stwalsh4118/homefinder/api/internal/metrics"
	"github.com/stwalsh4118/homefinder/api/internal/repository"
	"github.com/stwalsh4118/homefinder/api/internal/services"
	"github.com/stwalsh4118/homefinder/api/internal/storage"
	"github.com/stwalsh4118/homefinder/api/internal/tokens"
)

const (
	shutdownTimeout    = 30 * time.Second
	tokenPurgeInterval = time.Hour
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting HomeFinder API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("Failed to apply migrations", err, nil)
		}
		log.Info("Database schema up to date", nil)
	}

	// Optional backends. Each one degrades to a no-op when unconfigured.
	var (
		denylist    tokens.Denylist = tokens.NopDenylist{}
		cachePinger handlers.Pinger
	)
	if cfg.Redis.Addr != "" {
		client, err := tokens.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", err, map[string]interface{}{"addr": cfg.Redis.Addr})
		}
		defer client.Close()
		denylist = tokens.NewRedisDenylist(client)
		cachePinger = handlers.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		log.Info("Token denylist cache enabled", map[string]interface{}{"addr": cfg.Redis.Addr})
	}

	var imageStore storage.ImageStore = storage.Disabled{}
	if cfg.Storage.Endpoint != "" {
		store, err := storage.NewMinioStorage(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to connect to image storage", err, map[string]interface{}{
				"endpoint": cfg.Storage.Endpoint,
				"bucket":   cfg.Storage.Bucket,
			})
		}
		imageStore = store
		log.Info("Image storage enabled", map[string]interface{}{"bucket": cfg.Storage.Bucket})
	} else {
		log.Warn("STORAGE_ENDPOINT not set, image uploads are disabled", nil)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		nc, err := events.NewNATSPublisher(cfg.NATS, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", err, map[string]interface{}{"url": cfg.NATS.URL})
		}
		publisher = nc
		log.Info("Event publishing enabled", map[string]interface{}{"url": cfg.NATS.URL})
	}
	defer publisher.Close()

	m := metrics.New()

	// Initialize repository and service layers
	propertyRepo := repository.NewPropertyRepository(db.Pool)
	propertyTypeRepo := repository.NewPropertyTypeRepository(db.Pool)
	imageRepo := repository.NewImageRepository(db.Pool)
	favoriteRepo := repository.NewFavoriteRepository(db.Pool)
	reviewRepo := repository.NewReviewRepository(db.Pool)
	userRepo := repository.NewUserRepository(db.Pool)
	tokenRepo := repository.NewTokenRepository(db.Pool)

	lifecycle := tokens.NewLifecycle(tokenRepo, denylist, log)
	authService := services.NewAuthService(userRepo, tokens.NewManager(cfg.JWT), lifecycle, m, log)

	propertyService := services.NewPropertyService(propertyRepo, imageStore, publisher, m, log, cfg.Filters)
	propertyTypeService := services.NewPropertyTypeService(propertyTypeRepo, log)
	imageService := services.NewImageService(imageRepo, propertyRepo, imageStore, log, int64(cfg.Storage.MaxUploadMB)<<20)
	favoriteService := services.NewFavoriteService(favoriteRepo, propertyRepo, publisher, m, log)
	reviewService := services.NewReviewService(reviewRepo, publisher, m, log)
	userService := services.NewUserService(userRepo, publisher, log)

	go purgeExpiredTokens(ctx, tokenRepo, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(routerConfig{
		log:            log,
		metrics:        m,
		corsOrigins:    cfg.CORS.Origins,
		maxUploadBytes: int64(cfg.Storage.MaxUploadMB) << 20,
		verifier:       authService,
	}, routeHandlers{
		health:        handlers.NewHealthHandler(db, cachePinger, cfg.Server.Env),
		properties:    handlers.NewPropertyHandler(propertyService),
		propertyTypes: handlers.NewPropertyTypeHandler(propertyTypeService),
		images:        handlers.NewImageHandler(imageService),
		favorites:     handlers.NewFavoriteHandler(favoriteService),
		reviews:       handlers.NewReviewHandler(reviewService),
		users:         handlers.NewUserHandler(userService),
		auth:          handlers.NewAuthHandler(authService),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}

// purgeExpiredTokens drops token records whose expiry has passed. Once a
// token has expired its signature check fails anyway, so the record is dead.
func purgeExpiredTokens(ctx context.Context, repo repository.TokenRepository, log *logger.Logger) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				if ctx.Err() == nil {
					log.Error("Failed to purge expired tokens", err, nil)
				}
				continue
			}
			if n > 0 {
				log.Info("Purged expired tokens", map[string]interface{}{"count": n})
			}
		}
	}
}
