// Package main runs the background job worker (invitation emails,
// render snapshot publishing).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wedloop-app/backend/config"
	"github.com/wedloop-app/backend/internal/guests"
	"github.com/wedloop-app/backend/internal/render"
	"github.com/wedloop-app/backend/internal/rsvp"
	"github.com/wedloop-app/backend/internal/seating"
	"github.com/wedloop-app/backend/internal/token"
	"github.com/wedloop-app/backend/internal/weddings"
	"github.com/wedloop-app/backend/internal/worker"
	"github.com/wedloop-app/backend/pkg/database"
	"github.com/wedloop-app/backend/pkg/queue"
	"github.com/wedloop-app/backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Read-side services for building render snapshots. No render
	// notifier here: the worker must not re-enqueue on reads.
	weddingRepo := weddings.NewRepository(pool)
	guestRepo := guests.NewRepository(pool)
	codec := token.NewCodecWithPolicy(cfg.Token.TTL(), cfg.Token.Grace())
	directory := guests.NewDirectory(guestRepo, weddingRepo, codec, nil, logger)
	engine := rsvp.NewEngine(directory, guestRepo, weddingRepo, nil, logger)
	allocator := seating.NewAllocator(seating.NewRepository(pool), guestRepo, nil, logger)
	sink := render.NewSink(rdb.Client, logger)

	mailer := worker.NewSMTPMailer(cfg.Email, logger)
	processor := worker.NewProcessor(mailer, allocator, engine, sink, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
