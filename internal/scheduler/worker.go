package scheduler

import (
	"context"
	"fmt"
	"time"

	"farebridge_backend/platform/config"
	"farebridge_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// IndexSweeper removes offer-id index records that no longer point at a live
// offer. Implemented by the shopping offer cache.
type IndexSweeper interface {
	SweepOrphanedIndexes(ctx context.Context) (int, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper IndexSweeper
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweeper IndexSweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		sweeper: sweeper,
		log:     log,
	}

	mux.HandleFunc(TaskOfferIndexSweep, w.handleOfferIndexSweep)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("sweeper worker stopped", "error", err)
	}
}

func (w *Worker) handleOfferIndexSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOfferIndexSweepPayload(task)
	if err != nil {
		return err
	}

	started := time.Now()
	removed, err := w.sweeper.SweepOrphanedIndexes(ctx)
	if err != nil {
		w.log.Error("offer index sweep failed", "error", err)
		return err
	}

	w.log.Info("offer index sweep completed",
		"removed", removed,
		"durationMs", time.Since(started).Milliseconds(),
		"requestedAt", payload.RequestedAt,
	)
	return nil
}
