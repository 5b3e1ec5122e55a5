package handlers

type quoteRequest struct {
	PostalCode string `json:"postal_code"`
	Subtotal   string `json:"subtotal"`
}

type quoteResponse struct {
	Price        string  `json:"price"`
	DistanceKm   *string `json:"distance_km,omitempty"`
	FreeShipping bool    `json:"free_shipping"`
	Message      string  `json:"message,omitempty"`
}

type shippingRateDTO struct {
	ID          int64  `json:"id"`
	MinDistance string `json:"min_distance"`
	MaxDistance string `json:"max_distance"`
	Price       string `json:"price"`
	Active      bool   `json:"active"`
}

type createRateRequest struct {
	MinDistance string `json:"min_distance"`
	MaxDistance string `json:"max_distance"`
	Price       string `json:"price"`
}

type freeCityDTO struct {
	ID             int64  `json:"id"`
	City           string `json:"city"`
	State          string `json:"state"`
	MinOrderAmount string `json:"min_order_amount"`
	Active         bool   `json:"active"`
}

type createFreeCityRequest struct {
	City           string `json:"city"`
	State          string `json:"state"`
	MinOrderAmount string `json:"min_order_amount"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

type shippingConfigDTO struct {
	MaxDistanceKm  string `json:"max_distance_km"`
	MinOrderAmount string `json:"min_order_amount"`
}
