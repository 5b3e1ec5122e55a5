package notify

import (
	"context"

	"github.com/feiralivre/fulfillment/internal/domain"
)

// Sink receives committed order state changes and fans them out to read-only
// subscribers. Sinks are best-effort: a failing subscriber never rolls back
// or retries the state change that fed it.
type Sink interface {
	OrderStatusChanged(ctx context.Context, o *domain.Order, status domain.OrderStatus, note string)
	PaymentConfirmed(ctx context.Context, o *domain.Order)
}

// Fanout dispatches to every sink in order.
type Fanout []Sink

// OrderStatusChanged forwards to all sinks.
func (f Fanout) OrderStatusChanged(ctx context.Context, o *domain.Order, status domain.OrderStatus, note string) {
	for _, s := range f {
		s.OrderStatusChanged(ctx, o, status, note)
	}
}

// PaymentConfirmed forwards to all sinks.
func (f Fanout) PaymentConfirmed(ctx context.Context, o *domain.Order) {
	for _, s := range f {
		s.PaymentConfirmed(ctx, o)
	}
}

type nopSink struct{}

// Nop returns a no-op Sink.
func Nop() Sink { return nopSink{} }

func (nopSink) OrderStatusChanged(context.Context, *domain.Order, domain.OrderStatus, string) {}
func (nopSink) PaymentConfirmed(context.Context, *domain.Order)                               {}

var _ Sink = nopSink{}
var _ Sink = Fanout{}
