package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/logx"
	"github.com/feiralivre/fulfillment/internal/ports/ordertx"
)

// Reconciler brings internal payment state into agreement with the gateway.
// The gateway redelivers and reorders notifications at will, so every apply
// is guarded by the gateway revision and the payment transition graph:
// replays and regressions are dropped, and side effects fire exactly once
// per logical event.
type Reconciler struct {
	repo             TxRunner
	notifier         Notifier
	logger           logx.Logger
	stale            counter
	operationTimeout time.Duration
}

type counter interface {
	Inc()
}

// NewReconciler creates and configures a payment Reconciler.
func NewReconciler(repo TxRunner, notifier Notifier, stale counter, timeout time.Duration, logger logx.Logger) *Reconciler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Reconciler{
		repo:             repo,
		notifier:         notifier,
		logger:           logger,
		stale:            stale,
		operationTimeout: timeout,
	}
}

// Handle applies one gateway event. It is safe to call any number of times
// with the same event: the second and later applications are no-ops
// returning ErrStaleEvent, which callers log and swallow.
func (r *Reconciler) Handle(ctx context.Context, ev domain.PaymentEvent) error {
	if strings.TrimSpace(ev.CorrelationID) == "" || !ev.Status.Valid() || ev.Revision <= 0 {
		return apperr.ErrInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, r.operationTimeout)
	defer cancel()

	var (
		applied   *domain.Order
		cancelled bool
	)
	err := r.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.OrderByCorrelationForUpdate(ctx, ev.CorrelationID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if ev.Revision <= o.PaymentRevision {
			return fmt.Errorf("revision %d already at %d: %w",
				ev.Revision, o.PaymentRevision, apperr.ErrStaleEvent)
		}
		if !o.PaymentStatus.CanBecome(ev.Status) {
			return fmt.Errorf("%s after %s: %w",
				ev.Status, o.PaymentStatus, apperr.ErrStaleEvent)
		}

		ok, err := tx.UpdatePaymentState(ctx, o.ID, ev.Status, ev.Revision)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrStaleEvent
		}
		o.PaymentStatus = ev.Status
		o.PaymentRevision = ev.Revision

		// Terminal payment failure cancels an order that has not left the
		// warehouse. Later stages keep the order alive for human handling.
		if ev.Status == domain.PaymentStatusFailed &&
			(o.Status == domain.OrderStatusReceived || o.Status == domain.OrderStatusPreparing) {
			ok, err := tx.UpdateOrderStatus(ctx, o.ID, o.Status, domain.OrderStatusCancelled)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.ErrConflict
			}
			if err := tx.AppendStatusLog(ctx, o.ID, domain.OrderStatusCancelled, "pagamento falhou"); err != nil {
				return err
			}
			o.Status = domain.OrderStatusCancelled
			cancelled = true
		}

		applied = o
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("payment reconciled",
		logx.String("event", "payment_reconciled"),
		logx.String("correlation_id", ev.CorrelationID),
		logx.String("payment_status", string(ev.Status)),
		logx.Int64("revision", ev.Revision),
	)

	if r.notifier != nil {
		if ev.Status == domain.PaymentStatusPaid {
			r.notifier.PaymentConfirmed(ctx, applied)
		}
		if cancelled {
			r.notifier.OrderStatusChanged(ctx, applied, domain.OrderStatusCancelled, "pagamento falhou")
		}
	}
	return nil
}

// Drop records a dropped stale event. Callers invoke it when Handle returns
// ErrStaleEvent, since the gateway must not receive an error for a duplicate.
func (r *Reconciler) Drop(ev domain.PaymentEvent, err error) {
	if r.stale != nil {
		r.stale.Inc()
	}
	r.logger.Warn("stale payment event dropped",
		logx.String("correlation_id", ev.CorrelationID),
		logx.String("payment_status", string(ev.Status)),
		logx.Int64("revision", ev.Revision),
		logx.Any("err", err),
	)
}
