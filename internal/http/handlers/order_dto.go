package handlers

import (
	"time"
)

type customerDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type addressDTO struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

type cartItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Customer      customerDTO   `json:"customer"`
	Address       addressDTO    `json:"address"`
	Items         []cartItemDTO `json:"items"`
	PaymentMethod string        `json:"payment_method"`
	Notes         string        `json:"notes,omitempty"`
}

type createOrderResponse struct {
	OrderID            string `json:"order_id"`
	OrderCode          string `json:"order_code"`
	Status             string `json:"status"`
	Subtotal           string `json:"subtotal"`
	ShippingPrice      string `json:"shipping_price"`
	Total              string `json:"total"`
	PaymentRedirectURL string `json:"payment_redirect_url,omitempty"`
}

type orderItemDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type statusEntryDTO struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type orderDTO struct {
	ID            string           `json:"id"`
	Code          string           `json:"code"`
	Customer      customerDTO      `json:"customer"`
	Address       addressDTO       `json:"address"`
	Status        string           `json:"status"`
	PaymentStatus string           `json:"payment_status"`
	PaymentMethod string           `json:"payment_method"`
	Subtotal      string           `json:"subtotal"`
	ShippingPrice string           `json:"shipping_price"`
	Total         string           `json:"total"`
	DistanceKm    *string          `json:"distance_km,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	Items         []orderItemDTO   `json:"items"`
	StatusLog     []statusEntryDTO `json:"status_log,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type transitionOrderRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}
