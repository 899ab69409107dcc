// Package main runs the wedding platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wedloop-app/backend/config"
	"github.com/wedloop-app/backend/internal/auth"
	"github.com/wedloop-app/backend/internal/events"
	"github.com/wedloop-app/backend/internal/guests"
	"github.com/wedloop-app/backend/internal/middleware"
	"github.com/wedloop-app/backend/internal/render"
	"github.com/wedloop-app/backend/internal/rsvp"
	"github.com/wedloop-app/backend/internal/seating"
	"github.com/wedloop-app/backend/internal/token"
	"github.com/wedloop-app/backend/internal/weddings"
	"github.com/wedloop-app/backend/pkg/database"
	"github.com/wedloop-app/backend/pkg/queue"
	"github.com/wedloop-app/backend/pkg/redis"
	"github.com/wedloop-app/backend/pkg/response"
	"github.com/wedloop-app/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	renderPub := render.NewPublisher(jobQueue, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Weddings (config, sub-events, tags)
	weddingRepo := weddings.NewRepository(pool)
	weddingHandler := weddings.NewHandler(weddingRepo, logger)

	// Guests and credentials
	codec := token.NewCodecWithPolicy(cfg.Token.TTL(), cfg.Token.Grace())
	guestRepo := guests.NewRepository(pool)
	inviter := guests.NewQueueInviter(jobQueue, cfg.App.PublicBaseURL)
	directory := guests.NewDirectory(guestRepo, weddingRepo, codec, inviter, logger)
	var exporter *guests.Exporter
	if s3Client != nil {
		exporter = guests.NewExporter(guestRepo, s3Client, logger)
	}
	guestHandler := guests.NewHandler(directory, exporter, logger)

	// RSVP
	engine := rsvp.NewEngine(directory, guestRepo, weddingRepo, renderPub, logger)
	rsvpHandler := rsvp.NewHandler(engine, logger)

	// Event membership
	eventRepo := events.NewRepository(pool)
	eventIndex := events.NewIndex(eventRepo, guestRepo, weddingRepo, logger)
	eventHandler := events.NewHandler(eventIndex, logger)

	// Seating
	seatingRepo := seating.NewRepository(pool)
	allocator := seating.NewAllocator(seatingRepo, guestRepo, renderPub, logger)
	seatingHandler := seating.NewHandler(allocator, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: credential-authenticated RSVP surface and redacted seating view
	router.GET("/rsvp/session", guestHandler.Resolve)
	router.POST("/rsvp", rsvpHandler.Submit)
	router.GET("/public/weddings/:weddingID/seating", seatingHandler.PublicSummary)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/weddings", weddingHandler.Create)
		api.GET("/weddings", weddingHandler.List)
	}

	// Per-wedding admin API (JWT + ownership)
	wedding := router.Group("/weddings/:weddingID")
	wedding.Use(middleware.JWT(jwtService), middleware.WeddingOwner(weddingRepo))
	{
		wedding.GET("", weddingHandler.Get)
		wedding.PATCH("", weddingHandler.Update)
		wedding.DELETE("", weddingHandler.Delete)

		// Sub-events
		wedding.POST("/events", weddingHandler.CreateEvent)
		wedding.GET("/events", weddingHandler.ListEvents)
		wedding.DELETE("/events/:eventID", weddingHandler.DeleteEvent)
		wedding.GET("/events/:eventID/guests", eventHandler.GuestsForEvent)
		wedding.GET("/events/:eventID/rsvp/summary", rsvpHandler.EventSummary)

		// Tags
		wedding.POST("/tags", weddingHandler.CreateTag)
		wedding.GET("/tags", weddingHandler.ListTags)
		wedding.DELETE("/tags/:tagID", weddingHandler.DeleteTag)

		// Guests
		wedding.POST("/guests", guestHandler.Create)
		wedding.GET("/guests", guestHandler.List)
		wedding.GET("/guests/:id", guestHandler.Get)
		wedding.PATCH("/guests/:id", guestHandler.Update)
		wedding.DELETE("/guests/:id", guestHandler.Delete)
		wedding.POST("/guests/:id/token", guestHandler.RegenerateToken)
		wedding.POST("/guest-imports", guestHandler.Import)
		wedding.POST("/guest-exports", guestHandler.Export)
		wedding.PUT("/guests/:id/event-rsvps", rsvpHandler.UpdateEventRsvps)

		// Event membership
		wedding.POST("/event-guests", eventHandler.Assign)
		wedding.DELETE("/event-guests", eventHandler.Unassign)

		// RSVP summaries
		wedding.GET("/rsvp/summary", rsvpHandler.Summary)
		wedding.GET("/rsvp/meals", rsvpHandler.MealSummary)

		// Seating
		wedding.GET("/seating", seatingHandler.Overview)
		wedding.GET("/seating/unassigned", seatingHandler.Unassigned)
		wedding.DELETE("/seating/guests", seatingHandler.UnassignGuests)
		wedding.POST("/tables", seatingHandler.CreateTable)
		wedding.GET("/tables", seatingHandler.ListTables)
		wedding.PATCH("/tables/:id", seatingHandler.UpdateTable)
		wedding.DELETE("/tables/:id", seatingHandler.DeleteTable)
		wedding.PUT("/tables/order", seatingHandler.Reorder)
		wedding.POST("/tables/:id/guests", seatingHandler.AssignGuests)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
