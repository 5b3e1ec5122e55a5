package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/logx"
	"github.com/feiralivre/fulfillment/internal/ports/ordertx"
)

// codeAttempts bounds regeneration when a generated order code collides.
const codeAttempts = 3

// Service coordinates the order lifecycle from checkout to archive.
type Service struct {
	repo             orderRepository
	quoter           Quoter
	catalog          Catalog
	payments         Payments
	notifier         Notifier
	logger           logx.Logger
	operationTimeout time.Duration
	now              func() time.Time
}

// NewService creates and configures an order Service.
func NewService(repo orderRepository, quoter Quoter, cat Catalog, pay Payments, notifier Notifier, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		repo:             repo,
		quoter:           quoter,
		catalog:          cat,
		payments:         pay,
		notifier:         notifier,
		logger:           logger,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// CartItem is one line of the checkout cart.
type CartItem struct {
	ProductID string
	Quantity  int
}

// CreateRequest carries everything checkout submits.
type CreateRequest struct {
	Customer      domain.Customer
	Address       domain.Address
	Items         []CartItem
	PaymentMethod string
	Notes         string
}

// CreateResult is what checkout gets back.
type CreateResult struct {
	Order       *domain.Order
	RedirectURL string
}

// Create places an order: snapshot the cart from the catalog, price shipping
// authoritatively, register the charge, then persist. Any upstream failure
// fails closed: no order row, no charge left dangling on our side.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, err := s.snapshotItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	subtotal := domain.ItemsSubtotal(items)

	quote, err := s.quoter.Quote(ctx, req.Address.PostalCode, subtotal)
	if err != nil {
		return nil, fmt.Errorf("authoritative quote: %w", err)
	}

	total := subtotal.Add(quote.Price)
	orderID := uuid.New()

	intent, err := s.payments.CreatePayment(ctx, orderID, total, req.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	o := &domain.Order{
		ID:            orderID,
		Customer:      req.Customer,
		Address:       req.Address,
		Status:        domain.OrderStatusReceived,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: req.PaymentMethod,
		CorrelationID: intent.CorrelationID,
		Subtotal:      subtotal,
		ShippingPrice: quote.Price,
		Total:         total,
		DistanceKm:    quote.DistanceKm,
		Notes:         strings.TrimSpace(req.Notes),
		Items:         items,
	}

	if err := s.persistWithFreshCode(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		logx.String("event", "order_created"),
		logx.String("order_id", o.ID.String()),
		logx.String("order_code", o.Code),
		logx.String("total", o.Total.String()),
	)
	if s.notifier != nil {
		s.notifier.OrderStatusChanged(ctx, o, o.Status, "pedido recebido")
	}

	return &CreateResult{Order: o, RedirectURL: intent.RedirectURL}, nil
}

// persistWithFreshCode retries creation on order-code collisions only.
func (s *Service) persistWithFreshCode(ctx context.Context, o *domain.Order) error {
	var err error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		o.Code, err = domain.NewOrderCode()
		if err != nil {
			return err
		}
		err = s.repo.Create(ctx, o)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("order code collision after %d attempts: %w", codeAttempts, err)
}

func (s *Service) snapshotItems(ctx context.Context, cart []CartItem) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(cart))
	for _, ci := range cart {
		p, err := s.catalog.Product(ctx, ci.ProductID)
		if err != nil {
			return nil, fmt.Errorf("catalog product %s: %w", ci.ProductID, err)
		}
		if p == nil {
			return nil, fmt.Errorf("product %s: %w", ci.ProductID, apperr.ErrInvalid)
		}
		if p.Stock < ci.Quantity {
			return nil, fmt.Errorf("product %s out of stock: %w", ci.ProductID, apperr.ErrConflict)
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  ci.Quantity,
		})
	}
	return items, nil
}

func validateCreate(req *CreateRequest) error {
	if len(req.Items) == 0 {
		return apperr.ErrInvalid
	}
	for _, it := range req.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity < 1 {
			return apperr.ErrInvalid
		}
	}
	if strings.TrimSpace(req.Customer.Name) == "" {
		return apperr.ErrInvalid
	}
	if strings.TrimSpace(req.Customer.Email) == "" && strings.TrimSpace(req.Customer.Phone) == "" {
		return apperr.ErrInvalid
	}
	if strings.TrimSpace(req.Address.PostalCode) == "" {
		return apperr.ErrInvalid
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return apperr.ErrInvalid
	}
	return nil
}

// TrackResult is the customer-facing tracking view.
type TrackResult struct {
	Order *domain.Order
	Log   []domain.StatusEntry
}

// Track returns full order detail for a code, but only when the caller proves
// ownership with a matching email or phone. A wrong contact behaves exactly
// like an unknown code so codes cannot be mined for data.
func (s *Service) Track(ctx context.Context, code, email, phone string) (*TrackResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.ErrInvalid
	}
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if o == nil || !contactMatches(o, email, phone) {
		return nil, apperr.ErrNotFound
	}

	log, err := s.repo.StatusLog(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &TrackResult{Order: o, Log: log}, nil
}

func contactMatches(o *domain.Order, email, phone string) bool {
	if email != "" && strings.EqualFold(o.Customer.Email, email) {
		return true
	}
	if phone != "" && digitsOnly(o.Customer.Phone) == digitsOnly(phone) && digitsOnly(phone) != "" {
		return true
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Transition moves an order to a new status under the state machine rules and
// appends the audit log entry in the same transaction.
func (s *Service) Transition(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, note string) error {
	if !to.Valid() {
		return apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated *domain.Order
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if !o.Status.CanTransitionTo(to) {
			return fmt.Errorf("transition %s -> %s: %w", o.Status, to, apperr.ErrConflict)
		}
		ok, err := tx.UpdateOrderStatus(ctx, o.ID, o.Status, to)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrConflict
		}
		if err := tx.AppendStatusLog(ctx, o.ID, to, note); err != nil {
			return err
		}
		o.Status = to
		updated = o
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order status changed",
		logx.String("event", "order_status_changed"),
		logx.String("order_id", orderID.String()),
		logx.String("status", string(to)),
	)
	if s.notifier != nil {
		s.notifier.OrderStatusChanged(ctx, updated, to, note)
	}
	return nil
}

// Get returns an order by internal id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.GetByID(ctx, id)
}

// SetNotes replaces an order's free-form notes.
func (s *Service) SetNotes(ctx context.Context, id uuid.UUID, notes string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.repo.UpdateNotes(ctx, id, strings.TrimSpace(notes))
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}
