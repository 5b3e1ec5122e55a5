package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"

	"github.com/feiralivre/fulfillment/internal/config"
	"github.com/feiralivre/fulfillment/internal/logx"
	paymentsvc "github.com/feiralivre/fulfillment/internal/service/payment"
	"github.com/feiralivre/fulfillment/internal/transport/kafka"
)

// releaseInterval is how often the worker sweeps stale PENDING assignments.
type releaseInterval time.Duration

// MustBuildWorkerContainer builds the DI container for the worker binary.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	b := NewContainerBuilder()
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerGateways(container); err != nil {
		return nil, fmt.Errorf("gateways: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, rec *paymentsvc.Reconciler, logger logx.Logger) (*kafka.Consumer, error) {
			return kafka.NewConsumer(
				cfg.Kafka.Brokers,
				cfg.Kafka.ConsumerGroup,
				cfg.Kafka.PaymentTopic,
				makePaymentKafka(rec),
				logger,
			)
		},
		func(cfg *config.Config) releaseInterval {
			return releaseInterval(cfg.Delivery.ReleaseInterval)
		},
	)
}
