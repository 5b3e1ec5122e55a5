package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/service/assignment"
	"github.com/feiralivre/fulfillment/internal/service/driver"
	"github.com/feiralivre/fulfillment/internal/service/order"
	"github.com/feiralivre/fulfillment/internal/service/payment"
	"github.com/feiralivre/fulfillment/internal/service/route"
	"github.com/feiralivre/fulfillment/internal/service/shipping"
)

type orderUsecase interface {
	Create(ctx context.Context, req order.CreateRequest) (*order.CreateResult, error)
	Track(ctx context.Context, code, email, phone string) (*order.TrackResult, error)
	Transition(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, note string) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	SetNotes(ctx context.Context, id uuid.UUID, notes string) error
}

// NewOrderUsecase wires an order Service into an orderUsecase.
func NewOrderUsecase(svc *order.Service) orderUsecase {
	return svc
}

type quoteUsecase interface {
	Quote(ctx context.Context, postalCode string, subtotal decimal.Decimal) (domain.Quote, error)
}

// NewQuoteUsecase wires a shipping Service into a quoteUsecase.
func NewQuoteUsecase(svc *shipping.Service) quoteUsecase {
	return svc
}

type shippingAdminUsecase interface {
	ListRates(ctx context.Context) ([]domain.ShippingRate, error)
	CreateRate(ctx context.Context, sr *domain.ShippingRate) (int64, error)
	SetRateActive(ctx context.Context, id int64, active bool) error
	ListFreeCities(ctx context.Context) ([]domain.FreeShippingCity, error)
	CreateFreeCity(ctx context.Context, fc *domain.FreeShippingCity) (int64, error)
	SetFreeCityActive(ctx context.Context, id int64, active bool) error
	Config(ctx context.Context) (domain.ShippingConfig, error)
	UpdateConfig(ctx context.Context, maxDistanceKm, minOrderAmount decimal.Decimal) error
}

// NewShippingAdminUsecase wires a shipping Admin into a shippingAdminUsecase.
func NewShippingAdminUsecase(adm *shipping.Admin) shippingAdminUsecase {
	return adm
}

type deliveryUsecase interface {
	Claim(ctx context.Context, orderRef string, driverID int64, override bool) (domain.ClaimResult, error)
	Advance(ctx context.Context, assignmentID uuid.UUID, to domain.AssignmentStatus, recipientName, note string) (*domain.DeliveryAssignment, error)
	Unassign(ctx context.Context, orderID uuid.UUID) (domain.UnassignResult, error)
	WorkingSet(ctx context.Context, driverID int64) ([]domain.DeliveryAssignment, error)
}

// NewDeliveryUsecase wires an assignment Service into a deliveryUsecase.
func NewDeliveryUsecase(svc *assignment.Service) deliveryUsecase {
	return svc
}

type routeUsecase interface {
	Sequence(ctx context.Context, driverID int64, origin *domain.Coordinates) ([]domain.DeliveryAssignment, error)
}

// NewRouteUsecase wires a route Sequencer into a routeUsecase.
func NewRouteUsecase(seq route.Sequencer) routeUsecase {
	return seq
}

type driverUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Driver, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Driver, error)
	Create(ctx context.Context, d *domain.Driver) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) (bool, error)
}

// NewDriverUsecase wires a driver Service into a driverUsecase.
func NewDriverUsecase(svc *driver.Service) driverUsecase {
	return svc
}

type paymentUsecase interface {
	Handle(ctx context.Context, ev domain.PaymentEvent) error
	Drop(ev domain.PaymentEvent, err error)
}

// NewPaymentUsecase wires a payment Reconciler into a paymentUsecase.
func NewPaymentUsecase(rec *payment.Reconciler) paymentUsecase {
	return rec
}
