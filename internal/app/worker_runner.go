package app

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"github.com/feiralivre/fulfillment/internal/logx"
	"github.com/feiralivre/fulfillment/internal/service/assignment"
	"github.com/feiralivre/fulfillment/internal/transport/kafka"
)

// WorkerRunner runs the background worker: the payment event consumer plus
// the stale assignment sweeper.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the worker using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	assignments *assignment.Service,
	interval releaseInterval,
) error {
	defer closeWorker(pool, logger, consumer)

	logger.Info("fulfillment-worker started")

	go releaseStaleLoop(ctx, assignments, time.Duration(interval), logger)

	if consumer == nil {
		// No Kafka configured: only the sweeper runs.
		<-ctx.Done()
		return ctx.Err()
	}
	return consumer.Run(ctx)
}

func releaseStaleLoop(ctx context.Context, assignments *assignment.Service, interval time.Duration, logger logx.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := assignments.ReleaseStale(ctx); err != nil {
				logger.Error("stale assignment release failed", logx.Any("err", err))
			}
		}
	}
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, consumer *kafka.Consumer) {
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Any("err", err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
