package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus represents the status of a delivery assignment.
type AssignmentStatus string

// List of possible assignment statuses
const (
	AssignmentPending   AssignmentStatus = "PENDING"
	AssignmentEnRoute   AssignmentStatus = "EN_ROUTE"
	AssignmentDelivered AssignmentStatus = "DELIVERED"
	AssignmentCancelled AssignmentStatus = "CANCELLED"
)

var allowedAssignmentStatuses = [...]AssignmentStatus{
	AssignmentPending, AssignmentEnRoute, AssignmentDelivered, AssignmentCancelled,
}

// Valid checks if the AssignmentStatus is valid
func (s AssignmentStatus) Valid() bool {
	for _, v := range allowedAssignmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Active reports whether the assignment still binds the order to a driver.
func (s AssignmentStatus) Active() bool {
	return s == AssignmentPending || s == AssignmentEnRoute
}

// CanAdvanceTo reports whether an assignment may move from s to next.
// Backward moves are rejected, not clamped.
func (s AssignmentStatus) CanAdvanceTo(next AssignmentStatus) bool {
	switch s {
	case AssignmentPending:
		return next == AssignmentEnRoute || next == AssignmentDelivered
	case AssignmentEnRoute:
		return next == AssignmentDelivered
	default:
		return false
	}
}

// DeliveryAssignment binds one order to one driver. An order has at most one
// assignment with an active status at any moment.
type DeliveryAssignment struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	OrderCode     string
	DriverID      int64
	Status        AssignmentStatus
	RecipientName string
	DeliveredAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ClaimResult is what a successful claim returns to the scanning driver.
type ClaimResult struct {
	AssignmentID uuid.UUID
	OrderID      uuid.UUID
	OrderCode    string
	DriverID     int64
	Status       AssignmentStatus
	Reclaimed    bool
}

// UnassignResult is what clearing an active assignment returns.
type UnassignResult struct {
	OrderID  uuid.UUID
	DriverID int64
	Status   string
}
