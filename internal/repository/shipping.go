package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
)

// ShippingRepo represents shipping configuration repository.
type ShippingRepo struct{ db *pgxpool.Pool }

// NewShippingRepo creates a new ShippingRepo.
func NewShippingRepo(db *pgxpool.Pool) *ShippingRepo { return &ShippingRepo{db: db} }

// ActiveRates returns active rates ordered by min_distance. Lookup takes the
// first containing interval, so the lowest min_distance wins if intervals
// ever overlap.
func (r *ShippingRepo) ActiveRates(ctx context.Context) ([]domain.ShippingRate, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, min_distance, max_distance, price, active
        FROM shipping_rates
        WHERE active
        ORDER BY min_distance, id
    `)
	if err != nil {
		return nil, fmt.Errorf("list active rates: %w", err)
	}
	defer rows.Close()

	var out []domain.ShippingRate
	for rows.Next() {
		var sr domain.ShippingRate
		if err := rows.Scan(&sr.ID, &sr.MinDistance, &sr.MaxDistance, &sr.Price, &sr.Active); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// ListRates returns all rates ordered by min_distance.
func (r *ShippingRepo) ListRates(ctx context.Context) ([]domain.ShippingRate, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, min_distance, max_distance, price, active
        FROM shipping_rates
        ORDER BY min_distance, id
    `)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer rows.Close()

	var out []domain.ShippingRate
	for rows.Next() {
		var sr domain.ShippingRate
		if err := rows.Scan(&sr.ID, &sr.MinDistance, &sr.MaxDistance, &sr.Price, &sr.Active); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// CreateRate inserts a rate after validating, inside the same transaction,
// that its interval does not overlap any active rate. Overlap is rejected at
// write time so reads never have to guess.
func (r *ShippingRepo) CreateRate(ctx context.Context, sr *domain.ShippingRate) (int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if sr.Active {
		var overlapping int
		err = tx.QueryRow(ctx, `
            SELECT count(*) FROM shipping_rates
            WHERE active AND min_distance < $2 AND $1 < max_distance
        `, sr.MinDistance, sr.MaxDistance).Scan(&overlapping)
		if err != nil {
			return 0, fmt.Errorf("check rate overlap: %w", err)
		}
		if overlapping > 0 {
			return 0, apperr.ErrConflict
		}
	}

	var id int64
	err = tx.QueryRow(ctx, `
        INSERT INTO shipping_rates (min_distance, max_distance, price, active)
        VALUES ($1,$2,$3,$4) RETURNING id
    `, sr.MinDistance, sr.MaxDistance, sr.Price, sr.Active).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create rate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return id, nil
}

// SetRateActive toggles a rate and returns true if a row was affected.
func (r *ShippingRepo) SetRateActive(ctx context.Context, id int64, active bool) (bool, error) {
	ct, err := r.db.Exec(ctx,
		`UPDATE shipping_rates SET active=$2 WHERE id=$1`, id, active)
	if err != nil {
		return false, fmt.Errorf("set rate active %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// FindFreeCity returns the active free-shipping rule for a city/state pair,
// or nil when none applies.
func (r *ShippingRepo) FindFreeCity(ctx context.Context, city, state string) (*domain.FreeShippingCity, error) {
	var fc domain.FreeShippingCity
	err := r.db.QueryRow(ctx, `
        SELECT id, city, state, min_order_amount, active
        FROM free_shipping_cities
        WHERE active AND lower(city)=lower($1) AND upper(state)=upper($2)
    `, city, state).Scan(&fc.ID, &fc.City, &fc.State, &fc.MinOrderAmount, &fc.Active)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find free city %s/%s: %w", city, state, err)
	}
	return &fc, nil
}

// ListFreeCities returns all free-shipping rules.
func (r *ShippingRepo) ListFreeCities(ctx context.Context) ([]domain.FreeShippingCity, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, city, state, min_order_amount, active
        FROM free_shipping_cities ORDER BY state, city
    `)
	if err != nil {
		return nil, fmt.Errorf("list free cities: %w", err)
	}
	defer rows.Close()

	var out []domain.FreeShippingCity
	for rows.Next() {
		var fc domain.FreeShippingCity
		if err := rows.Scan(&fc.ID, &fc.City, &fc.State, &fc.MinOrderAmount, &fc.Active); err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

// CreateFreeCity inserts a free-shipping rule.
func (r *ShippingRepo) CreateFreeCity(ctx context.Context, fc *domain.FreeShippingCity) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO free_shipping_cities (city, state, min_order_amount, active)
        VALUES ($1, upper($2), $3, $4) RETURNING id
    `, fc.City, fc.State, fc.MinOrderAmount, fc.Active).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, fmt.Errorf("create free city: %w", err)
	}
	return id, nil
}

// SetFreeCityActive toggles a free-shipping rule.
func (r *ShippingRepo) SetFreeCityActive(ctx context.Context, id int64, active bool) (bool, error) {
	ct, err := r.db.Exec(ctx,
		`UPDATE free_shipping_cities SET active=$2 WHERE id=$1`, id, active)
	if err != nil {
		return false, fmt.Errorf("set free city active %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// Config reads the singleton shipping configuration row. It is read fresh on
// every quote so admin edits take effect immediately.
func (r *ShippingRepo) Config(ctx context.Context) (domain.ShippingConfig, error) {
	var cfg domain.ShippingConfig
	err := r.db.QueryRow(ctx,
		`SELECT max_distance_km, min_order_amount FROM shipping_config WHERE id=1`,
	).Scan(&cfg.MaxDistanceKm, &cfg.MinOrderAmount)
	if err != nil {
		return domain.ShippingConfig{}, fmt.Errorf("read shipping config: %w", err)
	}
	return cfg, nil
}

// UpdateConfig replaces the singleton shipping configuration.
func (r *ShippingRepo) UpdateConfig(ctx context.Context, maxDistanceKm, minOrderAmount decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
        UPDATE shipping_config SET max_distance_km=$1, min_order_amount=$2, updated_at=now()
        WHERE id=1
    `, maxDistanceKm, minOrderAmount)
	if err != nil {
		return fmt.Errorf("update shipping config: %w", err)
	}
	return nil
}
