package payment

import (
	"context"

	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/ports/ordertx"
)

// TxRunner opens order transactions for the reconciler.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
}

// Notifier receives payment-driven status changes after they are committed.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, o *domain.Order, status domain.OrderStatus, note string)
	PaymentConfirmed(ctx context.Context, o *domain.Order)
}
