package domain

import (
	"github.com/shopspring/decimal"
)

// ShippingRate prices a half-open distance interval [MinDistance, MaxDistance)
// in kilometers.
type ShippingRate struct {
	ID          int64
	MinDistance decimal.Decimal
	MaxDistance decimal.Decimal
	Price       decimal.Decimal
	Active      bool
}

// Contains reports whether the distance falls in the rate interval.
func (r ShippingRate) Contains(distanceKm decimal.Decimal) bool {
	return distanceKm.GreaterThanOrEqual(r.MinDistance) && distanceKm.LessThan(r.MaxDistance)
}

// Overlaps reports whether two rate intervals intersect.
func (r ShippingRate) Overlaps(other ShippingRate) bool {
	return r.MinDistance.LessThan(other.MaxDistance) && other.MinDistance.LessThan(r.MaxDistance)
}

// FreeShippingCity waives the distance price for a city/state pair when the
// subtotal meets the minimum.
type FreeShippingCity struct {
	ID             int64
	City           string
	State          string
	MinOrderAmount decimal.Decimal
	Active         bool
}

// ShippingConfig is the admin-mutable shipping configuration, read fresh at
// the start of every quote.
type ShippingConfig struct {
	MaxDistanceKm  decimal.Decimal
	MinOrderAmount decimal.Decimal
}

// Quote is the result of a shipping computation.
type Quote struct {
	Price        decimal.Decimal
	DistanceKm   *decimal.Decimal
	FreeShipping bool
	Message      string
}

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64
	Lng float64
}
