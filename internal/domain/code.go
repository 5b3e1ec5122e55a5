package domain

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet excludes 0/O and 1/I to keep codes readable over the phone.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// OrderCodeLength is the length of customer-facing order codes.
const OrderCodeLength = 8

// NewOrderCode generates a short human-facing order code. Uniqueness is
// enforced by the store, not here.
func NewOrderCode() (string, error) {
	buf := make([]byte, OrderCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("order code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
