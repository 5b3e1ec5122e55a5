package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feiralivre/fulfillment/internal/domain"
)

// AssignmentRepo represents delivery assignment repository.
type AssignmentRepo struct {
	db *pgxpool.Pool
}

// NewAssignmentRepo creates a new AssignmentRepo.
func NewAssignmentRepo(db *pgxpool.Pool) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

const assignmentColumns = `id, order_id, order_code, driver_id, status,
	recipient_name, delivered_at, created_at, updated_at`

func scanAssignment(row rowScanner) (*domain.DeliveryAssignment, error) {
	var a domain.DeliveryAssignment
	err := row.Scan(&a.ID, &a.OrderID, &a.OrderCode, &a.DriverID, &a.Status,
		&a.RecipientName, &a.DeliveredAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Claim atomically makes the driver the holder of the order's active
// assignment. It is a single conditional insert against the partial unique
// index on active order_id, so concurrent claims serialize at the storage
// layer: the first insert wins, later ones hit the conflict arm.
//
// The conflict arm only updates when the requesting driver already holds the
// assignment (idempotent rescan) or, with override, when an admin replaces
// the current holder. A holder change restarts the leg: the new driver gets a
// fresh PENDING assignment and the previous recipient is cleared. Zero rows
// back means the claim lost.
func (r *AssignmentRepo) Claim(ctx context.Context, id uuid.UUID, orderID uuid.UUID, driverID int64, override bool) (*domain.ClaimResult, error) {
	row := r.db.QueryRow(ctx, `
        INSERT INTO delivery_assignments AS da (id, order_id, order_code, driver_id, status)
        SELECT $1, o.id, o.code, $3, 'PENDING'
        FROM orders o
        WHERE o.id = $2 AND o.status NOT IN ('ENTREGUE', 'CANCELADO')
        ON CONFLICT (order_id) WHERE status IN ('PENDING', 'EN_ROUTE')
        DO UPDATE SET
            driver_id = EXCLUDED.driver_id,
            status = CASE WHEN da.driver_id = EXCLUDED.driver_id THEN da.status ELSE 'PENDING' END,
            recipient_name = CASE WHEN da.driver_id = EXCLUDED.driver_id THEN da.recipient_name ELSE '' END,
            updated_at = now()
        WHERE da.driver_id = EXCLUDED.driver_id OR $4
        RETURNING id, order_id, order_code, driver_id, status, (xmax <> 0) AS reclaimed
    `, id, orderID, driverID, override)

	var res domain.ClaimResult
	err := row.Scan(&res.AssignmentID, &res.OrderID, &res.OrderCode, &res.DriverID, &res.Status, &res.Reclaimed)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim order %s for driver %d: %w", orderID, driverID, err)
	}
	return &res, nil
}

// Get - returns an assignment by its id.
func (r *AssignmentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.DeliveryAssignment, error) {
	a, err := scanAssignment(r.db.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM delivery_assignments WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment %s: %w", id, err)
	}
	return a, nil
}

// ActiveByOrder returns the order's active assignment, if any.
func (r *AssignmentRepo) ActiveByOrder(ctx context.Context, orderID uuid.UUID) (*domain.DeliveryAssignment, error) {
	a, err := scanAssignment(r.db.QueryRow(ctx, `
        SELECT `+assignmentColumns+`
        FROM delivery_assignments
        WHERE order_id=$1 AND status IN ('PENDING','EN_ROUTE')
    `, orderID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("active assignment for order %s: %w", orderID, err)
	}
	return a, nil
}

// ListActiveByDriver returns the driver's non-terminal assignments in claim
// order. That order is the default visit sequence.
func (r *AssignmentRepo) ListActiveByDriver(ctx context.Context, driverID int64) ([]domain.DeliveryAssignment, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+assignmentColumns+`
        FROM delivery_assignments
        WHERE driver_id=$1 AND status IN ('PENDING','EN_ROUTE')
        ORDER BY created_at, id
    `, driverID)
	if err != nil {
		return nil, fmt.Errorf("list assignments for driver %d: %w", driverID, err)
	}
	defer rows.Close()

	var out []domain.DeliveryAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Unassign cancels the order's active assignment without deleting history.
// Returns nil when the order had no active assignment.
func (r *AssignmentRepo) Unassign(ctx context.Context, orderID uuid.UUID) (*domain.DeliveryAssignment, error) {
	a, err := scanAssignment(r.db.QueryRow(ctx, `
        UPDATE delivery_assignments
        SET status='CANCELLED', updated_at=now()
        WHERE order_id=$1 AND status IN ('PENDING','EN_ROUTE')
        RETURNING `+assignmentColumns+`
    `, orderID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unassign order %s: %w", orderID, err)
	}
	return a, nil
}

// ReleaseStalePending cancels PENDING assignments older than the cutoff so
// the parcels become claimable again. EN_ROUTE is never touched here.
func (r *AssignmentRepo) ReleaseStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE delivery_assignments
        SET status='CANCELLED', updated_at=now()
        WHERE status='PENDING' AND created_at < $1
    `, cutoff)
	if err != nil {
		return 0, fmt.Errorf("release stale assignments: %w", err)
	}
	return ct.RowsAffected(), nil
}
