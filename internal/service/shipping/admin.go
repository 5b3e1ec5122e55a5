package shipping

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
)

// AdminStore is the write side of the shipping configuration.
type AdminStore interface {
	ListRates(ctx context.Context) ([]domain.ShippingRate, error)
	CreateRate(ctx context.Context, sr *domain.ShippingRate) (int64, error)
	SetRateActive(ctx context.Context, id int64, active bool) (bool, error)
	ListFreeCities(ctx context.Context) ([]domain.FreeShippingCity, error)
	CreateFreeCity(ctx context.Context, fc *domain.FreeShippingCity) (int64, error)
	SetFreeCityActive(ctx context.Context, id int64, active bool) (bool, error)
	Config(ctx context.Context) (domain.ShippingConfig, error)
	UpdateConfig(ctx context.Context, maxDistanceKm, minOrderAmount decimal.Decimal) error
}

// Admin manages the shipping tables quotes are computed from.
type Admin struct {
	store            AdminStore
	operationTimeout time.Duration
}

// NewAdmin creates and configures a shipping Admin.
func NewAdmin(store AdminStore, timeout time.Duration) *Admin {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Admin{store: store, operationTimeout: timeout}
}

func (a *Admin) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.operationTimeout)
}

// ListRates returns every rate, active or not.
func (a *Admin) ListRates(ctx context.Context) ([]domain.ShippingRate, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.store.ListRates(ctx)
}

// CreateRate validates and persists a new distance rate. Overlap with an
// existing active rate is rejected at the storage layer.
func (a *Admin) CreateRate(ctx context.Context, sr *domain.ShippingRate) (int64, error) {
	if sr == nil {
		return 0, apperr.ErrInvalid
	}
	if sr.MinDistance.IsNegative() || !sr.MaxDistance.GreaterThan(sr.MinDistance) {
		return 0, apperr.ErrInvalid
	}
	if sr.Price.IsNegative() {
		return 0, apperr.ErrInvalid
	}
	sr.Active = true

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.store.CreateRate(ctx, sr)
}

// SetRateActive toggles a rate without deleting its history.
func (a *Admin) SetRateActive(ctx context.Context, id int64, active bool) error {
	if id <= 0 {
		return apperr.ErrInvalid
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	ok, err := a.store.SetRateActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

// ListFreeCities returns every free shipping city.
func (a *Admin) ListFreeCities(ctx context.Context) ([]domain.FreeShippingCity, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.store.ListFreeCities(ctx)
}

// CreateFreeCity validates and persists a free shipping city.
func (a *Admin) CreateFreeCity(ctx context.Context, fc *domain.FreeShippingCity) (int64, error) {
	if fc == nil {
		return 0, apperr.ErrInvalid
	}
	fc.City = strings.TrimSpace(fc.City)
	fc.State = strings.ToUpper(strings.TrimSpace(fc.State))
	if fc.City == "" || len(fc.State) != 2 {
		return 0, apperr.ErrInvalid
	}
	if fc.MinOrderAmount.IsNegative() {
		return 0, apperr.ErrInvalid
	}
	fc.Active = true

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.store.CreateFreeCity(ctx, fc)
}

// SetFreeCityActive toggles a free shipping city.
func (a *Admin) SetFreeCityActive(ctx context.Context, id int64, active bool) error {
	if id <= 0 {
		return apperr.ErrInvalid
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	ok, err := a.store.SetFreeCityActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

// Config returns the current global shipping settings.
func (a *Admin) Config(ctx context.Context) (domain.ShippingConfig, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.store.Config(ctx)
}

// UpdateConfig replaces the global shipping settings.
func (a *Admin) UpdateConfig(ctx context.Context, maxDistanceKm, minOrderAmount decimal.Decimal) error {
	if !maxDistanceKm.IsPositive() || minOrderAmount.IsNegative() {
		return apperr.ErrInvalid
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.store.UpdateConfig(ctx, maxDistanceKm, minOrderAmount)
}
