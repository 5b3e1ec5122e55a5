package route

import (
	"context"

	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/gateway/routeopt"
	"github.com/feiralivre/fulfillment/internal/logx"
)

// ManualSequencer returns assignments in claim order, the default visit
// sequence a driver reorders by hand.
type ManualSequencer struct {
	assignments assignmentLister
}

// NewManualSequencer creates a ManualSequencer.
func NewManualSequencer(assignments assignmentLister) *ManualSequencer {
	return &ManualSequencer{assignments: assignments}
}

// Sequence returns the driver's active assignments in claim order.
func (s *ManualSequencer) Sequence(ctx context.Context, driverID int64, _ *domain.Coordinates) ([]domain.DeliveryAssignment, error) {
	return s.assignments.ListActiveByDriver(ctx, driverID)
}

// OptimizingSequencer decorates a Sequencer with a best-effort call to the
// external optimizer. The optimizer is untrusted: its answer is merged
// defensively, and any failure falls back to the wrapped sequence unchanged.
type OptimizingSequencer struct {
	next      Sequencer
	orders    orderReader
	optimizer Optimizer
	logger    logx.Logger
}

// NewOptimizingSequencer wraps next; returns nil if next is nil.
func NewOptimizingSequencer(next Sequencer, orders orderReader, optimizer Optimizer, logger logx.Logger) *OptimizingSequencer {
	if next == nil {
		return nil
	}
	return &OptimizingSequencer{next: next, orders: orders, optimizer: optimizer, logger: logger}
}

// Sequence asks the optimizer to reorder the wrapped sequence. On any
// failure or partial answer the previous order is preserved.
func (s *OptimizingSequencer) Sequence(ctx context.Context, driverID int64, origin *domain.Coordinates) ([]domain.DeliveryAssignment, error) {
	base, err := s.next.Sequence(ctx, driverID, origin)
	if err != nil {
		return nil, err
	}
	if len(base) < 2 || s.optimizer == nil {
		return base, nil
	}

	stops := make([]routeopt.Stop, 0, len(base))
	for _, a := range base {
		stop := routeopt.Stop{OrderCode: a.OrderCode}
		if o, err := s.orders.GetByID(ctx, a.OrderID); err == nil && o != nil {
			stop.Street = o.Address.Street
			stop.City = o.Address.City
			stop.PostalCode = o.Address.PostalCode
		}
		stops = append(stops, stop)
	}

	codes, err := s.optimizer.Optimize(ctx, stops, origin)
	if err != nil {
		s.logger.Warn("route optimization failed, keeping manual order",
			logx.Int64("driver_id", driverID),
			logx.Any("err", err),
		)
		return base, nil
	}

	return Merge(base, codes), nil
}

// Merge applies a suggested code permutation to the base sequence. Codes the
// base does not contain are ignored, duplicates apply once, and base entries
// the suggestion omitted are appended at the end in their original order.
func Merge(base []domain.DeliveryAssignment, codes []string) []domain.DeliveryAssignment {
	byCode := make(map[string]int, len(base))
	for i, a := range base {
		byCode[a.OrderCode] = i
	}

	out := make([]domain.DeliveryAssignment, 0, len(base))
	used := make(map[string]bool, len(base))
	for _, c := range codes {
		i, ok := byCode[c]
		if !ok || used[c] {
			continue
		}
		out = append(out, base[i])
		used[c] = true
	}
	for _, a := range base {
		if !used[a.OrderCode] {
			out = append(out, a)
		}
	}
	return out
}
