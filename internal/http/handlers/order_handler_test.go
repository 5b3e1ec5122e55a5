package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/logx"
	"github.com/feiralivre/fulfillment/internal/service/order"
)

type stubOrderUsecase struct {
	createFn     func(ctx context.Context, req order.CreateRequest) (*order.CreateResult, error)
	trackFn      func(ctx context.Context, code, email, phone string) (*order.TrackResult, error)
	transitionFn func(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, note string) error
	getFn        func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	setNotesFn   func(ctx context.Context, id uuid.UUID, notes string) error
}

func (s *stubOrderUsecase) Create(ctx context.Context, req order.CreateRequest) (*order.CreateResult, error) {
	if s.createFn == nil {
		panic("Create not expected in this test")
	}
	return s.createFn(ctx, req)
}

func (s *stubOrderUsecase) Track(ctx context.Context, code, email, phone string) (*order.TrackResult, error) {
	if s.trackFn == nil {
		panic("Track not expected in this test")
	}
	return s.trackFn(ctx, code, email, phone)
}

func (s *stubOrderUsecase) Transition(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, note string) error {
	if s.transitionFn == nil {
		panic("Transition not expected in this test")
	}
	return s.transitionFn(ctx, orderID, to, note)
}

func (s *stubOrderUsecase) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if s.getFn == nil {
		panic("Get not expected in this test")
	}
	return s.getFn(ctx, id)
}

func (s *stubOrderUsecase) SetNotes(ctx context.Context, id uuid.UUID, notes string) error {
	if s.setNotesFn == nil {
		panic("SetNotes not expected in this test")
	}
	return s.setNotesFn(ctx, id, notes)
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

const createOrderBody = `{
    "customer": {"name":"João Pereira","email":"joao@example.com","phone":"+5511987654321"},
    "address": {"street":"Rua das Acácias","number":"120","district":"Centro","city":"São Paulo","state":"SP","postal_code":"01310-100"},
    "items": [{"product_id":"banana","quantity":2}],
    "payment_method": "pix"
}`

func TestOrderHandler_Create_OK(t *testing.T) {
	t.Parallel()

	orderID := uuid.MustParse("2e0c4f6a-9b5d-4c3e-bf7a-8d9e0f1a2b3c")

	uc := &stubOrderUsecase{
		createFn: func(_ context.Context, req order.CreateRequest) (*order.CreateResult, error) {
			require.Equal(t, "João Pereira", req.Customer.Name)
			require.Equal(t, "01310-100", req.Address.PostalCode)
			require.Len(t, req.Items, 1)
			require.Equal(t, "pix", req.PaymentMethod)
			o := &domain.Order{
				ID:            orderID,
				Code:          "A2B3C4D5",
				Status:        domain.OrderStatusReceived,
				Subtotal:      mustDecimal("39.30"),
				ShippingPrice: mustDecimal("8.00"),
				Total:         mustDecimal("47.30"),
			}
			return &order.CreateResult{Order: o, RedirectURL: "https://pay.example/corr-1"}, nil
		},
	}

	h := NewOrderHandler(logx.Nop(), uc)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(createOrderBody))
	req.Header.Set("Content-Type", "application/json")

	h.Create(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{
        "order_id": "2e0c4f6a-9b5d-4c3e-bf7a-8d9e0f1a2b3c",
        "order_code": "A2B3C4D5",
        "status": "RECEBIDO",
        "subtotal": "39.30",
        "shipping_price": "8.00",
        "total": "47.30",
        "payment_redirect_url": "https://pay.example/corr-1"
    }`, rr.Body.String())
}

func TestOrderHandler_Create_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid input", apperr.ErrInvalid, http.StatusBadRequest},
		{"out of stock", apperr.ErrConflict, http.StatusConflict},
		{"outside delivery area", apperr.ErrOutOfRange, http.StatusUnprocessableEntity},
		{"below minimum", apperr.ErrBelowMinimum, http.StatusUnprocessableEntity},
		{"no rate configured", apperr.ErrNoRateConfigured, http.StatusUnprocessableEntity},
		{"geocoder timeout", apperr.ErrUpstreamTimeout, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &stubOrderUsecase{
				createFn: func(context.Context, order.CreateRequest) (*order.CreateResult, error) {
					return nil, tc.err
				},
			}
			h := NewOrderHandler(logx.Nop(), uc)
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(createOrderBody))
			req.Header.Set("Content-Type", "application/json")

			h.Create(rr, req)
			assert.Equal(t, tc.wantCode, rr.Code)
		})
	}
}

func TestOrderHandler_Track_OK(t *testing.T) {
	t.Parallel()

	o := &domain.Order{
		ID:       uuid.New(),
		Code:     "A2B3C4D5",
		Customer: domain.Customer{Name: "João Pereira", Email: "joao@example.com"},
		Status:   domain.OrderStatusPreparing,
	}

	uc := &stubOrderUsecase{
		trackFn: func(_ context.Context, code, email, phone string) (*order.TrackResult, error) {
			require.Equal(t, "A2B3C4D5", code)
			require.Equal(t, "joao@example.com", email)
			require.Empty(t, phone)
			return &order.TrackResult{
				Order: o,
				Log: []domain.StatusEntry{
					{OrderID: o.ID, Status: domain.OrderStatusReceived, Note: "pedido recebido"},
				},
			}, nil
		},
	}

	router := chi.NewRouter()
	h := NewOrderHandler(logx.Nop(), uc)
	router.Get("/orders/{code}", h.Track)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/A2B3C4D5?email=joao@example.com", nil)
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"A2B3C4D5"`)
	assert.Contains(t, rr.Body.String(), `"status":"SEPARANDO"`)
	assert.Contains(t, rr.Body.String(), `"note":"pedido recebido"`)
}

func TestOrderHandler_Track_MissingContact(t *testing.T) {
	t.Parallel()

	uc := &stubOrderUsecase{
		trackFn: func(context.Context, string, string, string) (*order.TrackResult, error) {
			return nil, apperr.ErrInvalid
		},
	}

	router := chi.NewRouter()
	router.Get("/orders/{code}", NewOrderHandler(logx.Nop(), uc).Track)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/A2B3C4D5", nil)
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"email or phone is required"}`, rr.Body.String())
}

func TestOrderHandler_Track_NotFound(t *testing.T) {
	t.Parallel()

	uc := &stubOrderUsecase{
		trackFn: func(context.Context, string, string, string) (*order.TrackResult, error) {
			return nil, apperr.ErrNotFound
		},
	}

	router := chi.NewRouter()
	router.Get("/orders/{code}", NewOrderHandler(logx.Nop(), uc).Track)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/NOCODE99?email=x@example.com", nil)
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOrderHandler_Transition(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	uc := &stubOrderUsecase{
		transitionFn: func(_ context.Context, id uuid.UUID, to domain.OrderStatus, note string) error {
			require.Equal(t, orderID, id)
			require.Equal(t, domain.OrderStatusPreparing, to)
			require.Equal(t, "separação iniciada", note)
			return nil
		},
	}

	router := chi.NewRouter()
	router.Patch("/orders/{id}/status", NewOrderHandler(logx.Nop(), uc).Transition)

	rr := httptest.NewRecorder()
	body := `{"status":"SEPARANDO","note":"separação iniciada"}`
	req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String()+"/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"SEPARANDO"}`, rr.Body.String())
}

func TestOrderHandler_Transition_Conflict(t *testing.T) {
	t.Parallel()

	uc := &stubOrderUsecase{
		transitionFn: func(context.Context, uuid.UUID, domain.OrderStatus, string) error {
			return apperr.ErrConflict
		},
	}

	router := chi.NewRouter()
	router.Patch("/orders/{id}/status", NewOrderHandler(logx.Nop(), uc).Transition)

	rr := httptest.NewRecorder()
	body := `{"status":"SEPARANDO"}`
	req := httptest.NewRequest(http.MethodPatch, "/orders/"+uuid.NewString()+"/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"transition not allowed"}`, rr.Body.String())
}

func TestOrderHandler_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	uc := &stubOrderUsecase{
		getFn: func(context.Context, uuid.UUID) (*domain.Order, error) {
			return nil, nil
		},
	}

	router := chi.NewRouter()
	router.Get("/admin/orders/{id}", NewOrderHandler(logx.Nop(), uc).GetByID)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders/"+uuid.NewString(), nil)
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
