package handlers

import "time"

type claimDeliveryRequest struct {
	OrderRef string `json:"order_ref"`
	DriverID int64  `json:"driver_id"`
	Override bool   `json:"override,omitempty"`
}

type claimDeliveryResponse struct {
	AssignmentID string `json:"assignment_id"`
	OrderID      string `json:"order_id"`
	OrderCode    string `json:"order_code"`
	DriverID     int64  `json:"driver_id"`
	Status       string `json:"status"`
	Reclaimed    bool   `json:"reclaimed"`
}

type advanceDeliveryRequest struct {
	Status        string `json:"status"`
	RecipientName string `json:"recipient_name,omitempty"`
	Note          string `json:"note,omitempty"`
}

type unassignDeliveryRequest struct {
	OrderID string `json:"order_id"`
}

type unassignDeliveryResponse struct {
	OrderID  string `json:"order_id"`
	DriverID int64  `json:"driver_id"`
	Status   string `json:"status"`
}

type assignmentDTO struct {
	ID            string     `json:"id"`
	OrderID       string     `json:"order_id"`
	OrderCode     string     `json:"order_code"`
	DriverID      int64      `json:"driver_id"`
	Status        string     `json:"status"`
	RecipientName string     `json:"recipient_name,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type organizeRouteRequest struct {
	DriverID int64    `json:"driver_id"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}
