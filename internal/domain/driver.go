package domain

import "regexp"

// DriverStatus represents the availability of a delivery driver.
type DriverStatus string

// List of possible driver statuses
const (
	DriverActive   DriverStatus = "active"
	DriverInactive DriverStatus = "inactive"
)

var allowedDriverStatuses = [...]DriverStatus{DriverActive, DriverInactive}

// Valid checks if the DriverStatus is valid
func (s DriverStatus) Valid() bool {
	for _, v := range allowedDriverStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Driver represents a delivery driver.
type Driver struct {
	ID     int64
	Name   string
	Phone  string
	Status DriverStatus
}

// PartialDriverUpdate carries optional fields to update a driver.
// A nil field means “do not change” that attribute.
type PartialDriverUpdate struct {
	ID     int64
	Name   *string
	Phone  *string
	Status *DriverStatus
}

// rePhone is a regex to validate phone numbers
var rePhone = regexp.MustCompile(`^\+[0-9]{11,13}$`)

// ValidatePhone validates the phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
