package ordertx

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/feiralivre/fulfillment/internal/domain"
)

// Repository is the set of order mutations available inside one transaction.
// Every state-dependent write is conditional on the previously observed state
// so that concurrent actors cannot interleave between read and write.
type Repository interface {
	OrderForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	OrderByCorrelationForUpdate(ctx context.Context, correlationID string) (*domain.Order, error)
	UpdatePaymentState(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus, revision int64) (bool, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error)
	AppendStatusLog(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, note string) error
	AssignmentForUpdate(ctx context.Context, id uuid.UUID) (*domain.DeliveryAssignment, error)
	AdvanceAssignment(ctx context.Context, id uuid.UUID, from, to domain.AssignmentStatus, recipient string, deliveredAt *time.Time) (bool, error)
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
