package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/gateway/catalog"
	"github.com/feiralivre/fulfillment/internal/gateway/payment"
	"github.com/feiralivre/fulfillment/internal/ports/ordertx"
)

// orderRepository defines storage operations required by the business layer.
type orderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByCode(ctx context.Context, code string) (*domain.Order, error)
	StatusLog(ctx context.Context, orderID uuid.UUID) ([]domain.StatusEntry, error)
	UpdateNotes(ctx context.Context, orderID uuid.UUID, notes string) (bool, error)
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
}

// Quoter is the authoritative shipping price source at order creation.
type Quoter interface {
	Quote(ctx context.Context, postalCode string, subtotal decimal.Decimal) (domain.Quote, error)
}

// Catalog reads current product data for the item snapshot.
type Catalog interface {
	Product(ctx context.Context, productID string) (*catalog.Product, error)
}

// Payments registers charges with the external gateway.
type Payments interface {
	CreatePayment(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, method string) (*payment.Intent, error)
}

// Notifier receives status changes after they are committed.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, o *domain.Order, status domain.OrderStatus, note string)
}
