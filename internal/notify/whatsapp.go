package notify

import (
	"fmt"
	"net/url"
	"strings"
)

// TrackingLink builds the customer-facing tracking URL for an order code.
func TrackingLink(baseURL, orderCode string) string {
	return strings.TrimRight(baseURL, "/") + "/acompanhar/" + url.PathEscape(orderCode)
}

// WhatsAppLink builds a wa.me link that opens a chat with the customer
// pre-filled with the tracking message. Phone must be digits only with
// country code; everything else is stripped.
func WhatsAppLink(phone, orderCode, trackingURL string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	msg := fmt.Sprintf("Olá! Seu pedido %s está a caminho. Acompanhe em %s", orderCode, trackingURL)
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(msg)
}
