package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/ports/ordertx"
)

// assignmentRepository defines storage operations required by the coordinator.
type assignmentRepository interface {
	Claim(ctx context.Context, id uuid.UUID, orderID uuid.UUID, driverID int64, override bool) (*domain.ClaimResult, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.DeliveryAssignment, error)
	ActiveByOrder(ctx context.Context, orderID uuid.UUID) (*domain.DeliveryAssignment, error)
	ListActiveByDriver(ctx context.Context, driverID int64) ([]domain.DeliveryAssignment, error)
	Unassign(ctx context.Context, orderID uuid.UUID) (*domain.DeliveryAssignment, error)
	ReleaseStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// orderReader is the read side the coordinator needs to classify claim losses.
type orderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
}

// driverReader validates the claiming driver.
type driverReader interface {
	Get(ctx context.Context, id int64) (*domain.Driver, error)
}

// Notifier receives delivery-driven status changes after they are committed.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, o *domain.Order, status domain.OrderStatus, note string)
}
