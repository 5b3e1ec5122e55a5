package handlers

import (
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/service/order"
)

func (r createOrderRequest) toModel() order.CreateRequest {
	items := make([]order.CartItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, order.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return order.CreateRequest{
		Customer: domain.Customer{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		Address: domain.Address{
			Street:     r.Address.Street,
			Number:     r.Address.Number,
			District:   r.Address.District,
			City:       r.Address.City,
			State:      r.Address.State,
			PostalCode: r.Address.PostalCode,
		},
		Items:         items,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}
}

func createResultToResponse(res *order.CreateResult) createOrderResponse {
	o := res.Order
	return createOrderResponse{
		OrderID:            o.ID.String(),
		OrderCode:          o.Code,
		Status:             string(o.Status),
		Subtotal:           o.Subtotal.StringFixed(2),
		ShippingPrice:      o.ShippingPrice.StringFixed(2),
		Total:              o.Total.StringFixed(2),
		PaymentRedirectURL: res.RedirectURL,
	}
}

func orderToResponse(o *domain.Order, log []domain.StatusEntry) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDTO{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Quantity:  it.Quantity,
		})
	}
	entries := make([]statusEntryDTO, 0, len(log))
	for _, e := range log {
		entries = append(entries, statusEntryDTO{
			Status:    string(e.Status),
			Note:      e.Note,
			CreatedAt: e.CreatedAt,
		})
	}

	dto := orderDTO{
		ID:   o.ID.String(),
		Code: o.Code,
		Customer: customerDTO{
			Name:  o.Customer.Name,
			Email: o.Customer.Email,
			Phone: o.Customer.Phone,
		},
		Address: addressDTO{
			Street:     o.Address.Street,
			Number:     o.Address.Number,
			District:   o.Address.District,
			City:       o.Address.City,
			State:      o.Address.State,
			PostalCode: o.Address.PostalCode,
		},
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: o.PaymentMethod,
		Subtotal:      o.Subtotal.StringFixed(2),
		ShippingPrice: o.ShippingPrice.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Notes:         o.Notes,
		Items:         items,
		StatusLog:     entries,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.DistanceKm != nil {
		s := o.DistanceKm.StringFixed(3)
		dto.DistanceKm = &s
	}
	return dto
}
