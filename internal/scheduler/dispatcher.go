package scheduler

import (
	"context"
	"time"

	"farebridge_backend/platform/config"
	"farebridge_backend/platform/logger"
)

// SweepDispatcher periodically enqueues offer index sweep tasks.
type SweepDispatcher struct {
	client   *Client
	interval time.Duration
	log      *logger.Logger
}

func NewSweepDispatcher(cfg config.SchedulerConfig, log *logger.Logger) (*SweepDispatcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.GetIndexSweepInterval()
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &SweepDispatcher{
		client:   client,
		interval: interval,
		log:      log,
	}, nil
}

func (d *SweepDispatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}

func (d *SweepDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := d.client.EnqueueIndexSweep(ctx, d.interval); err != nil {
			d.log.Warn("failed to enqueue index sweep", "error", err)
		}
	}
}
