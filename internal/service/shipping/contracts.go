//go:generate mockgen -source=contracts.go -destination=shipping_mocks_test.go -package=shipping

package shipping

import (
	"context"

	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/gateway/geocode"
)

// Geocoder resolves a postal code to coordinates and city/state.
type Geocoder interface {
	Resolve(ctx context.Context, postalCode string) (*geocode.Location, error)
}

// Store reads shipping configuration. Config is re-read on every quote so
// admin edits are never served stale.
type Store interface {
	ActiveRates(ctx context.Context) ([]domain.ShippingRate, error)
	FindFreeCity(ctx context.Context, city, state string) (*domain.FreeShippingCity, error)
	Config(ctx context.Context) (domain.ShippingConfig, error)
}
