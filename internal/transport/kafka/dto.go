package kafka

import (
	"strings"
	"time"

	"github.com/feiralivre/fulfillment/internal/domain"
)

// EventDTO is the wire form of a payment gateway event.
type EventDTO struct {
	CorrelationID string    `json:"correlation_id"`
	Status        string    `json:"status"`
	Revision      int64     `json:"revision"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ToDomain converts EventDTO to a domain.PaymentEvent.
func ToDomain(dto EventDTO) domain.PaymentEvent {
	return domain.PaymentEvent{
		CorrelationID: strings.TrimSpace(dto.CorrelationID),
		Status:        domain.PaymentStatus(strings.TrimSpace(dto.Status)),
		Revision:      dto.Revision,
		OccurredAt:    dto.OccurredAt,
	}
}
