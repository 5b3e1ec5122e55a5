package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/logx"
)

// signatureHeader carries the hex HMAC-SHA256 of the raw request body.
const signatureHeader = "X-Signature"

// WebhookHandler receives payment gateway callbacks.
type WebhookHandler struct {
	usecase paymentUsecase
	secret  []byte
	logger  logx.Logger
}

// NewWebhookHandler wires a paymentUsecase into the gateway callback endpoint.
func NewWebhookHandler(logger logx.Logger, uc paymentUsecase, secret string) *WebhookHandler {
	return &WebhookHandler{usecase: uc, secret: []byte(secret), logger: logger}
}

type paymentEventDTO struct {
	CorrelationID string    `json:"correlation_id"`
	Status        string    `json:"status"`
	Revision      int64     `json:"revision"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Handle handles POST /payments/webhook. Replayed and out-of-order events are
// acknowledged with 200 so the gateway stops redelivering them; the drop is
// logged and counted instead.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, bodyLimit))
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid body")
		return
	}
	if !h.verifySignature(body, r.Header.Get(signatureHeader)) {
		writeError(h.logger, w, r, http.StatusUnauthorized, "invalid signature")
		return
	}

	var dto paymentEventDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid json")
		return
	}
	ev := domain.PaymentEvent{
		CorrelationID: dto.CorrelationID,
		Status:        domain.PaymentStatus(dto.Status),
		Revision:      dto.Revision,
		OccurredAt:    dto.OccurredAt,
	}

	err = h.usecase.Handle(r.Context(), ev)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "applied"})
	case errors.Is(err, apperr.ErrStaleEvent):
		h.usecase.Drop(ev, err)
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ignored"})
	case errors.Is(err, apperr.ErrNotFound):
		// Unknown correlation ids are acknowledged too: redelivery will
		// never make the order appear.
		h.logger.Warn("payment event for unknown order",
			logx.String("correlation_id", ev.CorrelationID),
		)
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ignored"})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid event")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

func (h *WebhookHandler) verifySignature(body []byte, sig string) bool {
	if len(h.secret) == 0 {
		return true
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
