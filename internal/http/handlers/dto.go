package handlers

import "github.com/feiralivre/fulfillment/internal/domain"

type driverDTO struct {
	ID     int64               `json:"id"`
	Name   string              `json:"name"`
	Phone  string              `json:"phone"`
	Status domain.DriverStatus `json:"status"`
}

type createDriverRequest struct {
	Name   string              `json:"name"`
	Phone  string              `json:"phone"`
	Status domain.DriverStatus `json:"status"`
}

type updateDriverRequest struct {
	ID     int64                `json:"id"`
	Name   *string              `json:"name,omitempty"`
	Phone  *string              `json:"phone,omitempty"`
	Status *domain.DriverStatus `json:"status,omitempty"`
}
