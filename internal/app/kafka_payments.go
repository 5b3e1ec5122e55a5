package app

import (
	"context"
	"errors"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	paymentsvc "github.com/feiralivre/fulfillment/internal/service/payment"
	"github.com/feiralivre/fulfillment/internal/transport/kafka"
)

// makePaymentKafka adapts the reconciler to the consumer. Stale, unknown and
// malformed events are permanent: redelivery cannot fix them, so they are
// committed instead of blocking the partition.
func makePaymentKafka(rec *paymentsvc.Reconciler) kafka.HandleFunc {
	return func(ctx context.Context, ev domain.PaymentEvent) error {
		err := rec.Handle(ctx, ev)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, apperr.ErrStaleEvent):
			rec.Drop(ev, err)
			return kafka.Permanent(err)
		case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrInvalid):
			return kafka.Permanent(err)
		default:
			return err
		}
	}
}
