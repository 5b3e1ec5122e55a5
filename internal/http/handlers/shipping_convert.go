package handlers

import (
	"github.com/feiralivre/fulfillment/internal/domain"
)

func quoteToResponse(q domain.Quote) quoteResponse {
	res := quoteResponse{
		Price:        q.Price.StringFixed(2),
		FreeShipping: q.FreeShipping,
		Message:      q.Message,
	}
	if q.DistanceKm != nil {
		s := q.DistanceKm.StringFixed(3)
		res.DistanceKm = &s
	}
	return res
}

func rateToResponse(r domain.ShippingRate) shippingRateDTO {
	return shippingRateDTO{
		ID:          r.ID,
		MinDistance: r.MinDistance.StringFixed(3),
		MaxDistance: r.MaxDistance.StringFixed(3),
		Price:       r.Price.StringFixed(2),
		Active:      r.Active,
	}
}

func ratesToResponse(list []domain.ShippingRate) []shippingRateDTO {
	out := make([]shippingRateDTO, 0, len(list))
	for _, r := range list {
		out = append(out, rateToResponse(r))
	}
	return out
}

func freeCityToResponse(fc domain.FreeShippingCity) freeCityDTO {
	return freeCityDTO{
		ID:             fc.ID,
		City:           fc.City,
		State:          fc.State,
		MinOrderAmount: fc.MinOrderAmount.StringFixed(2),
		Active:         fc.Active,
	}
}

func freeCitiesToResponse(list []domain.FreeShippingCity) []freeCityDTO {
	out := make([]freeCityDTO, 0, len(list))
	for _, fc := range list {
		out = append(out, freeCityToResponse(fc))
	}
	return out
}
