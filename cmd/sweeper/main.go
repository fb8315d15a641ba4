package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"farebridge_backend/internal/scheduler"
	"farebridge_backend/internal/shopping/cache"
	"farebridge_backend/platform/config"
	"farebridge_backend/platform/logger"
	"farebridge_backend/platform/redisconn"
)

// The sweeper runs the offer-id index maintenance loop: a dispatcher that
// periodically enqueues sweep tasks and an asynq worker that executes them.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting sweeper", "env", cfg.Env, "interval", cfg.IndexSweepInterval.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redisconn.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()

	offerCache := cache.New(rdb, cfg.OfferCacheTTL, cfg.OfferIndexTTL)

	dispatcher, err := scheduler.NewSweepDispatcher(cfg, log)
	if err != nil {
		log.Error("failed to initialize sweep dispatcher", "error", err)
		panic("failed to initialize sweep dispatcher: " + err.Error())
	}
	defer func() { _ = dispatcher.Close() }()
	go dispatcher.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, offerCache, log)
	if err != nil {
		log.Error("failed to initialize sweeper worker", "error", err)
		panic("failed to initialize sweeper worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("sweeper stopped")
}
