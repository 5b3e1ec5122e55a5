package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/logx"
)

type stubPaymentUsecase struct {
	handleFn func(ctx context.Context, ev domain.PaymentEvent) error

	mu      sync.Mutex
	dropped []domain.PaymentEvent
}

func (s *stubPaymentUsecase) Handle(ctx context.Context, ev domain.PaymentEvent) error {
	if s.handleFn == nil {
		panic("Handle not expected in this test")
	}
	return s.handleFn(ctx, ev)
}

func (s *stubPaymentUsecase) Drop(ev domain.PaymentEvent, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped = append(s.dropped, ev)
}

func (s *stubPaymentUsecase) DroppedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dropped)
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookRequest(body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}
	return req
}

func TestWebhookHandler_Applied(t *testing.T) {
	t.Parallel()

	body := `{"correlation_id":"corr-1","status":"PAGO","revision":3}`
	uc := &stubPaymentUsecase{
		handleFn: func(_ context.Context, ev domain.PaymentEvent) error {
			require.Equal(t, "corr-1", ev.CorrelationID)
			require.Equal(t, domain.PaymentStatusPaid, ev.Status)
			require.Equal(t, int64(3), ev.Revision)
			return nil
		},
	}

	h := NewWebhookHandler(logx.Nop(), uc, "segredo")
	rr := httptest.NewRecorder()
	h.Handle(rr, webhookRequest(body, sign("segredo", body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"applied"}`, rr.Body.String())
}

func TestWebhookHandler_InvalidSignature(t *testing.T) {
	t.Parallel()

	body := `{"correlation_id":"corr-1","status":"PAGO","revision":3}`
	uc := &stubPaymentUsecase{
		handleFn: func(context.Context, domain.PaymentEvent) error {
			t.Fatal("usecase must not be called with a bad signature")
			return nil
		},
	}

	h := NewWebhookHandler(logx.Nop(), uc, "segredo")

	t.Run("wrong secret", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Handle(rr, webhookRequest(body, sign("outro", body)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Handle(rr, webhookRequest(body, ""))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("not hex", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Handle(rr, webhookRequest(body, "zzzz"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestWebhookHandler_EmptySecretSkipsVerification(t *testing.T) {
	t.Parallel()

	body := `{"correlation_id":"corr-1","status":"PAGO","revision":1}`
	uc := &stubPaymentUsecase{
		handleFn: func(context.Context, domain.PaymentEvent) error { return nil },
	}

	h := NewWebhookHandler(logx.Nop(), uc, "")
	rr := httptest.NewRecorder()
	h.Handle(rr, webhookRequest(body, ""))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebhookHandler_StaleEventAcknowledged(t *testing.T) {
	t.Parallel()

	body := `{"correlation_id":"corr-1","status":"PENDENTE","revision":1}`
	uc := &stubPaymentUsecase{
		handleFn: func(context.Context, domain.PaymentEvent) error {
			return apperr.ErrStaleEvent
		},
	}

	h := NewWebhookHandler(logx.Nop(), uc, "segredo")
	rr := httptest.NewRecorder()
	h.Handle(rr, webhookRequest(body, sign("segredo", body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ignored"}`, rr.Body.String())
	assert.Equal(t, 1, uc.DroppedCount())
}

func TestWebhookHandler_UnknownCorrelationAcknowledged(t *testing.T) {
	t.Parallel()

	body := `{"correlation_id":"ghost","status":"PAGO","revision":1}`
	uc := &stubPaymentUsecase{
		handleFn: func(context.Context, domain.PaymentEvent) error {
			return apperr.ErrNotFound
		},
	}

	h := NewWebhookHandler(logx.Nop(), uc, "segredo")
	rr := httptest.NewRecorder()
	h.Handle(rr, webhookRequest(body, sign("segredo", body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ignored"}`, rr.Body.String())
	assert.Equal(t, 0, uc.DroppedCount())
}

func TestWebhookHandler_InvalidEvent(t *testing.T) {
	t.Parallel()

	body := `{"correlation_id":"corr-1","status":"NOVO","revision":0}`
	uc := &stubPaymentUsecase{
		handleFn: func(context.Context, domain.PaymentEvent) error {
			return apperr.ErrInvalid
		},
	}

	h := NewWebhookHandler(logx.Nop(), uc, "segredo")
	rr := httptest.NewRecorder()
	h.Handle(rr, webhookRequest(body, sign("segredo", body)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWebhookHandler_BadJSON(t *testing.T) {
	t.Parallel()

	body := "not-json"
	h := NewWebhookHandler(logx.Nop(), &stubPaymentUsecase{}, "segredo")
	rr := httptest.NewRecorder()
	h.Handle(rr, webhookRequest(body, sign("segredo", body)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
