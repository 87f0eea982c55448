package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/connectos/backend/internal/auth"
	"github.com/connectos/backend/internal/cache"
	"github.com/connectos/backend/internal/config"
	"github.com/connectos/backend/internal/database"
	"github.com/connectos/backend/internal/feed"
	"github.com/connectos/backend/internal/handlers"
	"github.com/connectos/backend/internal/logger"
	"github.com/connectos/backend/internal/metrics"
	"github.com/connectos/backend/internal/middleware"
	"github.com/connectos/backend/internal/repository"
	"github.com/connectos/backend/internal/seed"
	storysvc "github.com/connectos/backend/internal/stories"
	"github.com/connectos/backend/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("ConnectOS backend starting")

	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	if os.Getenv("SEED_DEV") == "true" && !cfg.IsProduction() {
		if err := seed.NewSeeder(database.DB).SeedDev(); err != nil {
			logger.Log.Warn("dev seeding failed", zap.Error(err))
		}
	}

	// Redis backs rate limiting; the server still runs without it.
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
	}

	metrics.Initialize()

	tracerProvider, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "connectos-backend",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		SamplingRate: cfg.TracingSampleRate,
	})
	if err != nil {
		logger.Log.Warn("Tracing disabled", zap.Error(err))
	}
	if tracerProvider != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracerProvider.Shutdown(ctx)
		}()
	}

	if len(cfg.JWTSecret) == 0 {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}

	follows := repository.NewFollowRepository(database.DB)
	storyFollows := repository.NewStoryFollowRepository(database.DB)
	stories := repository.NewStoryRepository(database.DB)
	resolver := feed.NewResolver(follows, storyFollows, stories)
	feedService := feed.NewService(resolver, feed.NewCache(nil))

	h := handlers.NewHandlers(auth.NewService(cfg.JWTSecret), feedService, follows, storyFollows, stories)

	purger := storysvc.NewPurgeService(database.DB, cfg.StoryPurgeRetention, cfg.StoryPurgeInterval)
	purger.Start()
	defer purger.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.TracingMiddleware("connectos-backend"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.CORSOrigin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RedisRateLimitMiddleware(cfg.RateLimitMax, cfg.RateLimitWindow))
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", h.AuthMiddleware(), h.GetMe)
		}

		feedGroup := api.Group("/feed")
		{
			feedGroup.Use(h.AuthMiddleware())
			feedGroup.GET("", h.GetFeed)
			feedGroup.POST("/refresh", h.RefreshFeed)
		}

		users := api.Group("/users")
		{
			users.Use(h.AuthMiddleware())
			users.PATCH("/me", h.UpdateMyProfile)
			users.GET("/:id", h.GetUserProfile)
			users.GET("/:id/stories", h.ListUserStories)
			users.GET("/:id/followers", h.GetUserFollowers)
			users.GET("/:id/following", h.GetUserFollowing)
			users.PUT("/:id/follow", h.FollowUser)
			users.DELETE("/:id/follow", h.UnfollowUser)
			users.POST("/:id/follow/toggle", h.ToggleFollow)
		}

		storyGroup := api.Group("/stories")
		{
			storyGroup.Use(h.AuthMiddleware())
			storyGroup.GET("", h.ListMyStories)
			storyGroup.POST("", h.CreateStory)
			storyGroup.GET("/:id", h.GetStory)
			storyGroup.PATCH("/:id", h.UpdateStory)
			storyGroup.DELETE("/:id", h.DeleteStory)
			storyGroup.GET("/:id/export", h.ExportStory)
			storyGroup.PUT("/:id/follow", h.FollowStory)
			storyGroup.DELETE("/:id/follow", h.UnfollowStory)
			storyGroup.POST("/:id/follow/toggle", h.ToggleStoryFollow)
			storyGroup.POST("/:id/records", h.AppendRecord)
			storyGroup.GET("/:id/records", h.ListRecords)
			storyGroup.POST("/:id/comments", h.CreateComment)
			storyGroup.GET("/:id/comments", h.ListComments)
		}

		comments := api.Group("/comments")
		{
			comments.Use(h.AuthMiddleware())
			comments.DELETE("/:id", h.DeleteComment)
		}

		search := api.Group("/search")
		{
			search.Use(h.AuthMiddleware())
			search.GET("/stories", h.SearchStories)
		}

		notifications := api.Group("/notifications")
		{
			notifications.Use(h.AuthMiddleware())
			notifications.GET("", h.GetNotifications)
			notifications.GET("/counts", h.GetNotificationCounts)
			notifications.POST("/seen", h.MarkNotificationsSeen)
			notifications.POST("/:id/read", h.MarkNotificationRead)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.FatalWithFields("Server forced to shutdown", err)
	}
	logger.Log.Info("server exited")
}
