package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/logx"
)

// ShippingHandler serves HTTP endpoints for quotes and shipping administration.
type ShippingHandler struct {
	quotes quoteUsecase
	admin  shippingAdminUsecase
	logger logx.Logger
}

// NewShippingHandler wires the shipping usecases into HTTP handlers.
func NewShippingHandler(logger logx.Logger, quotes quoteUsecase, admin shippingAdminUsecase) *ShippingHandler {
	return &ShippingHandler{quotes: quotes, admin: admin, logger: logger}
}

// Quote handles POST /shipping/quote.
func (h *ShippingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	subtotal, err := decimal.NewFromString(req.Subtotal)
	if err != nil || subtotal.IsNegative() {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid subtotal")
		return
	}

	q, err := h.quotes.Quote(r.Context(), req.PostalCode, subtotal)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, quoteToResponse(q))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid postal code")
	case errors.Is(err, apperr.ErrOutOfRange):
		writeError(h.logger, w, r, http.StatusUnprocessableEntity, "address outside delivery area")
	case errors.Is(err, apperr.ErrBelowMinimum):
		writeError(h.logger, w, r, http.StatusUnprocessableEntity, "order below minimum amount")
	case errors.Is(err, apperr.ErrNoRateConfigured):
		writeError(h.logger, w, r, http.StatusUnprocessableEntity, "no shipping rate for address")
	case errors.Is(err, apperr.ErrUpstreamTimeout):
		writeError(h.logger, w, r, http.StatusGatewayTimeout, "upstream timeout")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// ListRates handles GET /admin/shipping/rates.
func (h *ShippingHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.ListRates(r.Context())
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ratesToResponse(list))
}

// CreateRate handles POST /admin/shipping/rates.
func (h *ShippingHandler) CreateRate(w http.ResponseWriter, r *http.Request) {
	var req createRateRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	rate, err := parseRate(req)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid rate")
		return
	}

	id, err := h.admin.CreateRate(r.Context(), rate)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"id": id})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid rate")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "rate overlaps an existing range")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// SetRateActive handles PATCH /admin/shipping/rates/{id}.
func (h *ShippingHandler) SetRateActive(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req setActiveRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	err = h.admin.SetRateActive(r.Context(), id, req.Active)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "rate not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// ListFreeCities handles GET /admin/shipping/free-cities.
func (h *ShippingHandler) ListFreeCities(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.ListFreeCities(r.Context())
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, freeCitiesToResponse(list))
}

// CreateFreeCity handles POST /admin/shipping/free-cities.
func (h *ShippingHandler) CreateFreeCity(w http.ResponseWriter, r *http.Request) {
	var req createFreeCityRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	minAmount, err := decimal.NewFromString(req.MinOrderAmount)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid min order amount")
		return
	}

	id, err := h.admin.CreateFreeCity(r.Context(), &domain.FreeShippingCity{
		City:           req.City,
		State:          req.State,
		MinOrderAmount: minAmount,
	})
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"id": id})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid city")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "city already registered")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// SetFreeCityActive handles PATCH /admin/shipping/free-cities/{id}.
func (h *ShippingHandler) SetFreeCityActive(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req setActiveRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	err = h.admin.SetFreeCityActive(r.Context(), id, req.Active)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "city not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// GetConfig handles GET /admin/shipping/config.
func (h *ShippingHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.admin.Config(r.Context())
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, shippingConfigDTO{
		MaxDistanceKm:  cfg.MaxDistanceKm.StringFixed(3),
		MinOrderAmount: cfg.MinOrderAmount.StringFixed(2),
	})
}

// UpdateConfig handles PUT /admin/shipping/config.
func (h *ShippingHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req shippingConfigDTO
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	maxDistance, err1 := decimal.NewFromString(req.MaxDistanceKm)
	minAmount, err2 := decimal.NewFromString(req.MinOrderAmount)
	if err1 != nil || err2 != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid config")
		return
	}

	err := h.admin.UpdateConfig(r.Context(), maxDistance, minAmount)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid config")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

func parseRate(req createRateRequest) (*domain.ShippingRate, error) {
	minD, err := decimal.NewFromString(req.MinDistance)
	if err != nil {
		return nil, err
	}
	maxD, err := decimal.NewFromString(req.MaxDistance)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, err
	}
	return &domain.ShippingRate{MinDistance: minD, MaxDistance: maxD, Price: price}, nil
}
