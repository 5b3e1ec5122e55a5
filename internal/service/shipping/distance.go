package shipping

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/feiralivre/fulfillment/internal/domain"
)

const earthRadiusKm = 6371.0

// Haversine computes the great-circle distance between two points in km,
// rounded to three decimals.
func Haversine(a, b domain.Coordinates) decimal.Decimal {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return decimal.NewFromFloat(earthRadiusKm * c).Round(3)
}
