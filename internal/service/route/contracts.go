package route

import (
	"context"

	"github.com/google/uuid"

	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/gateway/routeopt"
)

// Sequencer produces a visit order for a driver's active assignments.
type Sequencer interface {
	Sequence(ctx context.Context, driverID int64, origin *domain.Coordinates) ([]domain.DeliveryAssignment, error)
}

// assignmentLister reads a driver's working set.
type assignmentLister interface {
	ListActiveByDriver(ctx context.Context, driverID int64) ([]domain.DeliveryAssignment, error)
}

// orderReader resolves delivery addresses for the optimizer stop list.
type orderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

// Optimizer is the external route optimization collaborator.
type Optimizer interface {
	Optimize(ctx context.Context, stops []routeopt.Stop, origin *domain.Coordinates) ([]string, error)
}
