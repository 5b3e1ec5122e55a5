package handlers

import (
	"errors"
	"net/http"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/logx"
)

// DeliveryHandler handles HTTP requests for delivery assignments.
type DeliveryHandler struct {
	usecase deliveryUsecase
	routes  routeUsecase
	logger  logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase, routes routeUsecase) *DeliveryHandler {
	return &DeliveryHandler{usecase: uc, routes: routes, logger: logger}
}

// Claim handles POST /deliveries/claim.
func (h *DeliveryHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req claimDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.usecase.Claim(r.Context(), req.OrderRef, req.DriverID, req.Override)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, claimResultToResponse(res))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order or driver not found")
	case errors.Is(err, apperr.ErrAlreadyAssigned):
		writeError(h.logger, w, r, http.StatusConflict, "order already assigned to another driver")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "order is not claimable")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Advance handles PATCH /deliveries/{id}.
func (h *DeliveryHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, err := uuidFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req advanceDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	a, err := h.usecase.Advance(r.Context(), id, domain.AssignmentStatus(req.Status), req.RecipientName, req.Note)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(*a))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "assignment not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "transition not allowed")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Unassign handles POST /deliveries/unassign.
func (h *DeliveryHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	var req unassignDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	orderID, err := uuidFromString(req.OrderID)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	res, err := h.usecase.Unassign(r.Context(), orderID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, unassignResultToResponse(res))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "no active assignment")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// WorkingSet handles GET /deliveries/driver/{id}.
func (h *DeliveryHandler) WorkingSet(w http.ResponseWriter, r *http.Request) {
	driverID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	list, err := h.usecase.WorkingSet(r.Context(), driverID)
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentsToResponse(list))
}

// OrganizeRoute handles POST /deliveries/route/organize.
func (h *DeliveryHandler) OrganizeRoute(w http.ResponseWriter, r *http.Request) {
	var req organizeRouteRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.DriverID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid driver id")
		return
	}

	var origin *domain.Coordinates
	if req.Lat != nil && req.Lng != nil {
		origin = &domain.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	}

	list, err := h.routes.Sequence(r.Context(), req.DriverID, origin)
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentsToResponse(list))
}
