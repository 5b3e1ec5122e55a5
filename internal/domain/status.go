package domain

type (
	// OrderStatus represents the fulfillment status of an order.
	OrderStatus string
	// PaymentStatus represents the payment status of an order.
	PaymentStatus string
)

// List of possible order statuses
const (
	OrderStatusReceived       OrderStatus = "RECEBIDO"
	OrderStatusPreparing      OrderStatus = "SEPARANDO"
	OrderStatusOutForDelivery OrderStatus = "SAIU_PARA_ENTREGA"
	OrderStatusDelivered      OrderStatus = "ENTREGUE"
	OrderStatusCancelled      OrderStatus = "CANCELADO"
)

// List of possible payment statuses
const (
	PaymentStatusPending  PaymentStatus = "PENDENTE"
	PaymentStatusPaid     PaymentStatus = "PAGO"
	PaymentStatusFailed   PaymentStatus = "FALHOU"
	PaymentStatusRefunded PaymentStatus = "ESTORNADO"
)

var allowedOrderStatuses = [...]OrderStatus{
	OrderStatusReceived, OrderStatusPreparing, OrderStatusOutForDelivery,
	OrderStatusDelivered, OrderStatusCancelled,
}

var allowedPaymentStatuses = [...]PaymentStatus{
	PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded,
}

// orderRank is the forward order of the fulfillment pipeline. CANCELADO sits
// outside the pipeline and is handled explicitly.
var orderRank = map[OrderStatus]int{
	OrderStatusReceived:       0,
	OrderStatusPreparing:      1,
	OrderStatusOutForDelivery: 2,
	OrderStatusDelivered:      3,
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the status ends the order lifecycle.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether an order may move from s to next. The
// pipeline only moves forward; CANCELADO is reachable from any non-terminal
// state and is the only non-forward move allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s == next {
		return false
	}
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return orderRank[next] > orderRank[s]
}

// Valid checks if the PaymentStatus is valid
func (s PaymentStatus) Valid() bool {
	for _, v := range allowedPaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanBecome reports whether a payment may move from s to next. PENDENTE
// resolves to PAGO, FALHOU or ESTORNADO; a refund is only recordable after a
// capture, so ESTORNADO follows PAGO. Everything else a gateway event
// carries, FALHOU after PAGO included, is a replay or a regression and must
// be dropped, whatever its arrival time.
func (s PaymentStatus) CanBecome(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusPaid || next == PaymentStatusFailed || next == PaymentStatusRefunded
	case PaymentStatusPaid:
		return next == PaymentStatusRefunded
	default:
		return false
	}
}
