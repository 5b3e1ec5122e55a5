package assignment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/logx"
	"github.com/feiralivre/fulfillment/internal/ports/ordertx"
)

// Service coordinates delivery assignments. Claim races are settled by a
// single conditional write in the repository; this layer validates inputs,
// classifies losses and keeps order status in step with delivery progress.
type Service struct {
	repo             assignmentRepository
	orders           orderReader
	drivers          driverReader
	notifier         Notifier
	logger           logx.Logger
	conflicts        counter
	pendingTTL       time.Duration
	operationTimeout time.Duration
	now              func() time.Time
}

type counter interface {
	Inc()
}

// Config stores assignment coordinator settings.
type Config struct {
	PendingTTL       time.Duration
	OperationTimeout time.Duration
}

// NewService creates and configures an assignment Service.
func NewService(repo assignmentRepository, orders orderReader, drivers driverReader, notifier Notifier, conflicts counter, cfg Config, logger logx.Logger) *Service {
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 3 * time.Second
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 30 * time.Minute
	}
	return &Service{
		repo:             repo,
		orders:           orders,
		drivers:          drivers,
		notifier:         notifier,
		logger:           logger,
		conflicts:        conflicts,
		pendingTTL:       cfg.PendingTTL,
		operationTimeout: cfg.OperationTimeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// resolveOrderRef accepts either a scanned QR payload ("id|code") or a bare
// order id.
func resolveOrderRef(ref string) (uuid.UUID, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return uuid.Nil, "", apperr.ErrInvalid
	}
	if strings.Contains(ref, "|") {
		qr, err := domain.ParseQRPayload(ref)
		if err != nil {
			return uuid.Nil, "", fmt.Errorf("%s: %w", err, apperr.ErrInvalid)
		}
		return qr.OrderID, qr.OrderCode, nil
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("order ref %q: %w", ref, apperr.ErrInvalid)
	}
	return id, "", nil
}

// Claim makes the driver the holder of the order's active assignment. The
// first successful claim wins; a concurrent claim by another driver comes
// back as ErrAlreadyAssigned and is left to a human to resolve. Rescans by
// the holder are idempotent. Override is the admin path and replaces the
// current holder whatever its status.
func (s *Service) Claim(ctx context.Context, orderRef string, driverID int64, override bool) (domain.ClaimResult, error) {
	orderID, code, err := resolveOrderRef(orderRef)
	if err != nil {
		return domain.ClaimResult{}, err
	}
	if driverID <= 0 {
		return domain.ClaimResult{}, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	drv, err := s.drivers.Get(ctx, driverID)
	if err != nil {
		return domain.ClaimResult{}, err
	}
	if drv == nil {
		return domain.ClaimResult{}, fmt.Errorf("driver %d: %w", driverID, apperr.ErrNotFound)
	}
	if drv.Status != domain.DriverActive {
		return domain.ClaimResult{}, fmt.Errorf("driver %d inactive: %w", driverID, apperr.ErrInvalid)
	}

	if code != "" {
		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return domain.ClaimResult{}, err
		}
		if o == nil {
			return domain.ClaimResult{}, fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
		}
		if o.Code != code {
			return domain.ClaimResult{}, fmt.Errorf("qr code mismatch for order %s: %w", orderID, apperr.ErrInvalid)
		}
	}

	res, err := s.repo.Claim(ctx, uuid.New(), orderID, driverID, override)
	if err != nil {
		return domain.ClaimResult{}, err
	}
	if res == nil {
		return domain.ClaimResult{}, s.classifyClaimLoss(ctx, orderID)
	}

	s.logger.Info("order claimed",
		logx.String("event", "order_claimed"),
		logx.String("order_id", res.OrderID.String()),
		logx.Int64("driver_id", res.DriverID),
		logx.Any("reclaimed", res.Reclaimed),
	)
	return *res, nil
}

// classifyClaimLoss distinguishes "order gone" from "another driver holds it".
// The follow-up read is only for the error message; linearizability comes
// from the conditional write itself.
func (s *Service) classifyClaimLoss(ctx context.Context, orderID uuid.UUID) error {
	if s.conflicts != nil {
		s.conflicts.Inc()
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	if o.Status.Terminal() {
		return fmt.Errorf("order %s is %s: %w", orderID, o.Status, apperr.ErrConflict)
	}
	return apperr.ErrAlreadyAssigned
}

// Advance moves an assignment along PENDING → EN_ROUTE → DELIVERED. Reaching
// DELIVERED requires a recipient name, stamps deliveredAt once and advances
// the order itself to ENTREGUE in the same transaction.
func (s *Service) Advance(ctx context.Context, assignmentID uuid.UUID, to domain.AssignmentStatus, recipientName, note string) (*domain.DeliveryAssignment, error) {
	if !to.Valid() {
		return nil, apperr.ErrInvalid
	}
	recipientName = strings.TrimSpace(recipientName)
	if to == domain.AssignmentDelivered && recipientName == "" {
		return nil, fmt.Errorf("recipient name required: %w", apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		out          *domain.DeliveryAssignment
		orderChanged *domain.Order
	)
	err := s.orders.WithTx(ctx, func(tx ordertx.Repository) error {
		a, err := tx.AssignmentForUpdate(ctx, assignmentID)
		if err != nil {
			return err
		}
		if a == nil {
			return apperr.ErrNotFound
		}
		if !a.Status.CanAdvanceTo(to) {
			return fmt.Errorf("advance %s -> %s: %w", a.Status, to, apperr.ErrConflict)
		}

		var deliveredAt *time.Time
		if to == domain.AssignmentDelivered {
			t := s.now()
			deliveredAt = &t
		}

		ok, err := tx.AdvanceAssignment(ctx, a.ID, a.Status, to, recipientName, deliveredAt)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrConflict
		}
		a.Status = to
		if recipientName != "" {
			a.RecipientName = recipientName
		}
		a.DeliveredAt = deliveredAt

		if to == domain.AssignmentDelivered {
			o, err := tx.OrderForUpdate(ctx, a.OrderID)
			if err != nil {
				return err
			}
			if o != nil && o.Status.CanTransitionTo(domain.OrderStatusDelivered) {
				ok, err := tx.UpdateOrderStatus(ctx, o.ID, o.Status, domain.OrderStatusDelivered)
				if err != nil {
					return err
				}
				if !ok {
					return apperr.ErrConflict
				}
				logNote := note
				if logNote == "" {
					logNote = "entregue a " + recipientName
				}
				if err := tx.AppendStatusLog(ctx, o.ID, domain.OrderStatusDelivered, logNote); err != nil {
					return err
				}
				o.Status = domain.OrderStatusDelivered
				orderChanged = o
			}
		}

		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignment advanced",
		logx.String("event", "assignment_advanced"),
		logx.String("assignment_id", assignmentID.String()),
		logx.String("status", string(to)),
	)
	if orderChanged != nil && s.notifier != nil {
		s.notifier.OrderStatusChanged(ctx, orderChanged, domain.OrderStatusDelivered, note)
	}
	return out, nil
}

// Unassign clears the order's active assignment, keeping history. Admin only.
func (s *Service) Unassign(ctx context.Context, orderID uuid.UUID) (domain.UnassignResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	a, err := s.repo.Unassign(ctx, orderID)
	if err != nil {
		return domain.UnassignResult{}, err
	}
	if a == nil {
		return domain.UnassignResult{}, apperr.ErrNotFound
	}
	return domain.UnassignResult{
		OrderID:  orderID,
		DriverID: a.DriverID,
		Status:   "unassigned",
	}, nil
}

// WorkingSet returns the driver's active assignments in claim order.
func (s *Service) WorkingSet(ctx context.Context, driverID int64) ([]domain.DeliveryAssignment, error) {
	if driverID <= 0 {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListActiveByDriver(ctx, driverID)
}

// ReleaseStale cancels PENDING assignments older than the TTL so abandoned
// claims do not hold parcels hostage.
func (s *Service) ReleaseStale(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.repo.ReleaseStalePending(ctx, s.now().Add(-s.pendingTTL))
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("stale assignments released", logx.Int64("count", n))
	}
	return nil
}
