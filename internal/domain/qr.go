package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// QRPayload is the pair printed on a pick slip: "{orderId}|{orderCode}".
type QRPayload struct {
	OrderID   uuid.UUID
	OrderCode string
}

// FormatQRPayload renders the pipe-delimited pick slip payload.
func FormatQRPayload(orderID uuid.UUID, code string) string {
	return fmt.Sprintf("%s|%s", orderID, code)
}

// ParseQRPayload parses a scanned payload. Both halves are required.
func ParseQRPayload(raw string) (QRPayload, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "|", 2)
	if len(parts) != 2 {
		return QRPayload{}, fmt.Errorf("qr payload %q: missing separator", raw)
	}
	id, err := uuid.Parse(strings.TrimSpace(parts[0]))
	if err != nil {
		return QRPayload{}, fmt.Errorf("qr payload order id: %w", err)
	}
	code := strings.TrimSpace(parts[1])
	if code == "" {
		return QRPayload{}, fmt.Errorf("qr payload %q: empty order code", raw)
	}
	return QRPayload{OrderID: id, OrderCode: code}, nil
}
