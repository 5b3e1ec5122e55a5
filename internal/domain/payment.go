package domain

import "time"

// PaymentEvent is a gateway notification about one payment. The gateway may
// redeliver the same event and deliver events out of order; Revision is its
// monotonic per-payment counter.
type PaymentEvent struct {
	CorrelationID string
	Status        PaymentStatus
	Revision      int64
	OccurredAt    time.Time
}
