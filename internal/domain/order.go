package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the order aggregate owned by the fulfillment coordinator.
type Order struct {
	ID            uuid.UUID
	Code          string
	Customer      Customer
	Address       Address
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod string
	// CorrelationID is issued by the payment gateway at order creation and
	// is the only key webhook events are matched on.
	CorrelationID   string
	PaymentRevision int64
	Subtotal        decimal.Decimal
	ShippingPrice   decimal.Decimal
	Total           decimal.Decimal
	DistanceKm      *decimal.Decimal
	Notes           string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is a product snapshot captured at order time. UnitPrice is never
// re-read from the live catalog.
type OrderItem struct {
	ID        int64
	OrderID   uuid.UUID
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Customer identifies the buyer for tracking verification.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Address is the delivery destination.
type Address struct {
	Street     string
	Number     string
	District   string
	City       string
	State      string
	PostalCode string
}

// StatusEntry is one entry of an order's append-only status log.
type StatusEntry struct {
	ID        int64
	OrderID   uuid.UUID
	Status    OrderStatus
	Note      string
	CreatedAt time.Time
}

// ItemsSubtotal sums unit price times quantity over the items.
func ItemsSubtotal(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// ConsistentTotals reports whether total == subtotal + shipping and the
// subtotal matches the item snapshot.
func (o *Order) ConsistentTotals() bool {
	if !o.Total.Equal(o.Subtotal.Add(o.ShippingPrice)) {
		return false
	}
	if len(o.Items) == 0 {
		return true
	}
	return o.Subtotal.Equal(ItemsSubtotal(o.Items))
}
