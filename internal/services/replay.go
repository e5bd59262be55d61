package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/internal/infrastructure/buffer"
	"github.com/fastygo/lifetrack/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ReplayQueue is the part of the pending buffer drained by the replay processor.
type ReplayQueue interface {
	GetBatch(limit int) ([]buffer.Item, error)
	Remove(item buffer.Item) error
	Requeue(item buffer.Item) error
	Cleanup(olderThan time.Time) error
	Size() (int, error)
}

// ReplayConfig controls how frequently pending writes are replayed.
type ReplayConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// ReplayProcessor pushes queued document writes to the remote tier once the
// monitor reports it online.
type ReplayProcessor struct {
	queue   ReplayQueue
	monitor ConnectionHealth
	remote  repository.DocumentRepository
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ReplayConfig
}

func NewReplayProcessor(
	queue ReplayQueue,
	monitor ConnectionHealth,
	remote repository.DocumentRepository,
	logger *zap.Logger,
	cfg ReplayConfig,
) *ReplayProcessor {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rp := &ReplayProcessor{
		queue:   queue,
		monitor: monitor,
		remote:  remote,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = rp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := rp.Drain(ctx); err != nil {
			rp.logger.Error("pending replay failed", zap.Error(err))
		}
	})
	if cfg.Retention > 0 {
		_, _ = rp.cron.AddFunc("@hourly", func() {
			if err := rp.queue.Cleanup(time.Now().Add(-cfg.Retention)); err != nil {
				rp.logger.Warn("pending cleanup failed", zap.Error(err))
			}
		})
	}

	return rp
}

// Start launches the cron scheduler.
func (rp *ReplayProcessor) Start() {
	if rp == nil || rp.cron == nil {
		return
	}
	rp.cron.Start()
	rp.logger.Info("replay processor started", zap.Duration("interval", rp.cfg.Interval))
}

// Stop waits for a running drain to finish or ctx to expire.
func (rp *ReplayProcessor) Stop(ctx context.Context) error {
	if rp == nil || rp.cron == nil {
		return nil
	}
	stopCtx := rp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	rp.logger.Info("replay processor stopped")
	return nil
}

// Drain replays one batch of pending writes synchronously.
func (rp *ReplayProcessor) Drain(ctx context.Context) error {
	if rp == nil || rp.queue == nil || rp.remote == nil {
		return nil
	}
	if rp.monitor != nil && !rp.monitor.IsOnline() {
		rp.logger.Debug("skipping replay (remote offline)")
		return nil
	}

	items, err := rp.queue.GetBatch(rp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := rp.apply(ctx, item); err != nil {
			rp.logger.Error("failed to replay pending write",
				zap.String("item_id", item.ID),
				zap.String("key", item.Key),
				zap.Error(err))

			if err := rp.queue.Remove(item); err != nil {
				rp.logger.Warn("failed to remove pending write", zap.Error(err))
			}
			item.Retries++
			if item.Retries >= rp.cfg.MaxRetries {
				rp.logger.Warn("dropping pending write (max retries reached)",
					zap.String("item_id", item.ID),
					zap.String("key", item.Key))
				continue
			}
			if err := rp.queue.Requeue(item); err != nil {
				rp.logger.Error("failed to requeue pending write", zap.Error(err))
			}
			continue
		}

		if err := rp.queue.Remove(item); err != nil {
			rp.logger.Warn("failed to purge replayed write", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of pending writes.
func (rp *ReplayProcessor) Size() int {
	if rp == nil || rp.queue == nil {
		return 0
	}
	size, err := rp.queue.Size()
	if err != nil {
		return 0
	}
	return size
}

func (rp *ReplayProcessor) apply(ctx context.Context, item buffer.Item) error {
	switch item.Operation {
	case buffer.OperationPut, "":
		return rp.remote.Put(ctx, item.Key, item.Data)
	case buffer.OperationDelete:
		return rp.remote.Delete(ctx, item.Key)
	default:
		return fmt.Errorf("unsupported operation %s", item.Operation)
	}
}
