package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/ports/ordertx"
)

// OrderRepo represents order repository.
type OrderRepo struct {
	db *pgxpool.Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `id, code, customer_name, customer_email, customer_phone,
	street, number, district, city, state, postal_code,
	status, payment_status, payment_method, correlation_id, payment_revision,
	subtotal, shipping_price, total, distance_km, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o        domain.Order
		distance decimal.NullDecimal
	)
	err := row.Scan(
		&o.ID, &o.Code, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.Address.Street, &o.Address.Number, &o.Address.District,
		&o.Address.City, &o.Address.State, &o.Address.PostalCode,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.CorrelationID, &o.PaymentRevision,
		&o.Subtotal, &o.ShippingPrice, &o.Total, &distance, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if distance.Valid {
		d := distance.Decimal
		o.DistanceKm = &d
	}
	return &o, nil
}

// Create persists a new order with its item snapshot and the initial status
// log entry in one transaction.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var distance decimal.NullDecimal
	if o.DistanceKm != nil {
		distance = decimal.NewNullDecimal(*o.DistanceKm)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO orders (id, code, customer_name, customer_email, customer_phone,
            street, number, district, city, state, postal_code,
            status, payment_status, payment_method, correlation_id, payment_revision,
            subtotal, shipping_price, total, distance_km, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
    `, o.ID, o.Code, o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.Address.Street, o.Address.Number, o.Address.District,
		o.Address.City, o.Address.State, o.Address.PostalCode,
		o.Status, o.PaymentStatus, o.PaymentMethod, o.CorrelationID, o.PaymentRevision,
		o.Subtotal, o.ShippingPrice, o.Total, distance, o.Notes)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		err = tx.QueryRow(ctx, `
            INSERT INTO order_items (order_id, product_id, name, unit_price, quantity)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id
        `, o.ID, it.ProductID, it.Name, it.UnitPrice, it.Quantity).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		it.OrderID = o.ID
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO order_status_log (order_id, status, note)
        VALUES ($1,$2,$3)
    `, o.ID, o.Status, "pedido recebido")
	if err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID - returns an order with its items by internal id.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByCode - returns an order with its items by its customer-facing code.
func (r *OrderRepo) GetByCode(ctx context.Context, code string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE code=$1`, code))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by code %q: %w", code, err)
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) items(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, order_id, product_id, name, unit_price, quantity
        FROM order_items WHERE order_id=$1 ORDER BY id
    `, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// StatusLog returns the order's status log ordered by insertion.
func (r *OrderRepo) StatusLog(ctx context.Context, orderID uuid.UUID) ([]domain.StatusEntry, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, order_id, status, note, created_at
        FROM order_status_log
        WHERE order_id=$1
        ORDER BY created_at, id
    `, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status log: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusEntry
	for rows.Next() {
		var e domain.StatusEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateNotes replaces the free-form notes on an order.
func (r *OrderRepo) UpdateNotes(ctx context.Context, orderID uuid.UUID, notes string) (bool, error) {
	ct, err := r.db.Exec(ctx,
		`UPDATE orders SET notes=$2, updated_at=now() WHERE id=$1`, orderID, notes)
	if err != nil {
		return false, fmt.Errorf("update notes %s: %w", orderID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// WithTx opens a transaction and executes fn within it.
func (r *OrderRepo) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// OrderForUpdate locks and returns an order row by id.
func (r *TxRepo) OrderForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := scanOrder(r.tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock order %s: %w", id, err)
	}
	return o, nil
}

// OrderByCorrelationForUpdate locks and returns an order row by the payment
// correlation id issued at order creation.
func (r *TxRepo) OrderByCorrelationForUpdate(ctx context.Context, correlationID string) (*domain.Order, error) {
	o, err := scanOrder(r.tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE correlation_id=$1 FOR UPDATE`, correlationID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock order by correlation %q: %w", correlationID, err)
	}
	return o, nil
}

// UpdatePaymentState applies a payment status with its gateway revision. The
// revision guard in the WHERE clause makes replays and regressions no-ops.
func (r *TxRepo) UpdatePaymentState(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus, revision int64) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET payment_status=$2, payment_revision=$3, updated_at=now()
        WHERE id=$1 AND payment_revision < $3
    `, orderID, status, revision)
	if err != nil {
		return false, fmt.Errorf("update payment state %s: %w", orderID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// UpdateOrderStatus moves an order from one status to another. The expected
// current status in the WHERE clause is the compare half of the swap.
func (r *TxRepo) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders SET status=$3, updated_at=now()
        WHERE id=$1 AND status=$2
    `, orderID, from, to)
	if err != nil {
		return false, fmt.Errorf("update order status %s: %w", orderID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// AppendStatusLog appends one entry to the order's status log.
func (r *TxRepo) AppendStatusLog(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, note string) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO order_status_log (order_id, status, note) VALUES ($1,$2,$3)
    `, orderID, status, note)
	if err != nil {
		return fmt.Errorf("append status log %s: %w", orderID, err)
	}
	return nil
}

// AssignmentForUpdate locks and returns an assignment row by id.
func (r *TxRepo) AssignmentForUpdate(ctx context.Context, id uuid.UUID) (*domain.DeliveryAssignment, error) {
	a, err := scanAssignment(r.tx.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM delivery_assignments WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock assignment %s: %w", id, err)
	}
	return a, nil
}

// AdvanceAssignment moves an assignment from one status to the next,
// conditionally on its current status.
func (r *TxRepo) AdvanceAssignment(ctx context.Context, id uuid.UUID, from, to domain.AssignmentStatus, recipient string, deliveredAt *time.Time) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        UPDATE delivery_assignments
        SET status=$3,
            recipient_name=CASE WHEN $4 <> '' THEN $4 ELSE recipient_name END,
            delivered_at=COALESCE($5, delivered_at),
            updated_at=now()
        WHERE id=$1 AND status=$2
    `, id, from, to, recipient, deliveredAt)
	if err != nil {
		return false, fmt.Errorf("advance assignment %s: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
