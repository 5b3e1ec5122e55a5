package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/gateway/catalog"
	"github.com/feiralivre/fulfillment/internal/gateway/payment"
	"github.com/feiralivre/fulfillment/internal/ports/ordertx"
	"github.com/feiralivre/fulfillment/internal/service/order"
	testlog "github.com/feiralivre/fulfillment/internal/testutil"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// memOrders is an in-memory order repository. Create can be told to report a
// code collision a number of times before accepting.
type memOrders struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*domain.Order
	statusLog  []domain.StatusEntry
	collisions int
	created    int
}

func newMemOrders(orders ...*domain.Order) *memOrders {
	r := &memOrders{byID: make(map[uuid.UUID]*domain.Order)}
	for _, o := range orders {
		r.byID[o.ID] = o
	}
	return r
}

func (r *memOrders) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
	if r.collisions > 0 {
		r.collisions--
		return apperr.ErrConflict
	}
	cp := *o
	r.byID[o.ID] = &cp
	return nil
}

func (r *memOrders) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.byID[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (r *memOrders) GetByCode(_ context.Context, code string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.byID {
		if o.Code == code {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOrders) StatusLog(_ context.Context, orderID uuid.UUID) ([]domain.StatusEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StatusEntry
	for _, e := range r.statusLog {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memOrders) UpdateNotes(_ context.Context, orderID uuid.UUID, notes string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok {
		return false, nil
	}
	o.Notes = notes
	return true, nil
}

func (r *memOrders) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r)
}

func (r *memOrders) OrderForUpdate(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	if o, ok := r.byID[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (r *memOrders) OrderByCorrelationForUpdate(_ context.Context, correlationID string) (*domain.Order, error) {
	for _, o := range r.byID {
		if o.CorrelationID == correlationID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOrders) UpdatePaymentState(_ context.Context, orderID uuid.UUID, status domain.PaymentStatus, revision int64) (bool, error) {
	o, ok := r.byID[orderID]
	if !ok || o.PaymentRevision >= revision {
		return false, nil
	}
	o.PaymentStatus = status
	o.PaymentRevision = revision
	return true, nil
}

func (r *memOrders) UpdateOrderStatus(_ context.Context, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	o, ok := r.byID[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r *memOrders) AppendStatusLog(_ context.Context, orderID uuid.UUID, status domain.OrderStatus, note string) error {
	r.statusLog = append(r.statusLog, domain.StatusEntry{OrderID: orderID, Status: status, Note: note})
	return nil
}

func (r *memOrders) AssignmentForUpdate(_ context.Context, _ uuid.UUID) (*domain.DeliveryAssignment, error) {
	return nil, nil
}

func (r *memOrders) AdvanceAssignment(_ context.Context, _ uuid.UUID, _, _ domain.AssignmentStatus, _ string, _ *time.Time) (bool, error) {
	return false, nil
}

type stubQuoter struct {
	quote domain.Quote
	err   error

	mu       sync.Mutex
	subtotal decimal.Decimal
}

func (q *stubQuoter) Quote(_ context.Context, _ string, subtotal decimal.Decimal) (domain.Quote, error) {
	q.mu.Lock()
	q.subtotal = subtotal
	q.mu.Unlock()
	if q.err != nil {
		return domain.Quote{}, q.err
	}
	return q.quote, nil
}

type stubCatalog struct {
	products map[string]*catalog.Product
	err      error
}

func (c *stubCatalog) Product(_ context.Context, productID string) (*catalog.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.products[productID], nil
}

type stubPayments struct {
	intent *payment.Intent
	err    error
	calls  int
}

func (p *stubPayments) CreatePayment(_ context.Context, _ uuid.UUID, _ decimal.Decimal, _ string) (*payment.Intent, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.intent, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []domain.OrderStatus
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, _ *domain.Order, status domain.OrderStatus, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, status)
}

func groceryCatalog() *stubCatalog {
	return &stubCatalog{products: map[string]*catalog.Product{
		"banana": {ID: "banana", Name: "Banana Prata kg", Price: dec("5.90"), Stock: 40},
		"arroz":  {ID: "arroz", Name: "Arroz 5kg", Price: dec("27.50"), Stock: 3},
	}}
}

func createReq() order.CreateRequest {
	return order.CreateRequest{
		Customer: domain.Customer{Name: "João Pereira", Email: "joao@example.com", Phone: "+5511987654321"},
		Address: domain.Address{
			Street: "Rua das Acácias", Number: "120", District: "Centro",
			City: "São Paulo", State: "SP", PostalCode: "01310-100",
		},
		Items:         []order.CartItem{{ProductID: "banana", Quantity: 2}, {ProductID: "arroz", Quantity: 1}},
		PaymentMethod: "pix",
	}
}

func TestCreate_SnapshotsAndPersists(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	km := dec("4.2")
	quoter := &stubQuoter{quote: domain.Quote{Price: dec("8.00"), DistanceKm: &km}}
	payments := &stubPayments{intent: &payment.Intent{CorrelationID: "corr-1", RedirectURL: "https://pay.example/corr-1"}}
	notifier := &recordingNotifier{}
	rec := testlog.New()
	svc := order.NewService(repo, quoter, groceryCatalog(), payments, notifier, time.Second, rec.Logger())

	res, err := svc.Create(context.Background(), createReq())
	require.NoError(t, err)
	o := res.Order

	// 2x5.90 + 27.50 = 39.30, plus 8.00 shipping
	require.True(t, o.Subtotal.Equal(dec("39.30")), o.Subtotal.String())
	require.True(t, o.Total.Equal(dec("47.30")), o.Total.String())
	require.True(t, quoter.subtotal.Equal(dec("39.30")))
	require.Equal(t, domain.OrderStatusReceived, o.Status)
	require.Equal(t, domain.PaymentStatusPending, o.PaymentStatus)
	require.Equal(t, "corr-1", o.CorrelationID)
	require.Len(t, o.Code, 8)
	require.Equal(t, "https://pay.example/corr-1", res.RedirectURL)

	require.Len(t, o.Items, 2)
	require.Equal(t, "Banana Prata kg", o.Items[0].Name)
	require.True(t, o.Items[0].UnitPrice.Equal(dec("5.90")))

	stored, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, []domain.OrderStatus{domain.OrderStatusReceived}, notifier.changes)
	require.Equal(t, 1, rec.CountMsg("order created"))
}

func TestCreate_OutOfStock(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	svc := order.NewService(repo, &stubQuoter{}, groceryCatalog(), &stubPayments{}, nil, time.Second, testlog.New().Logger())

	req := createReq()
	req.Items = []order.CartItem{{ProductID: "arroz", Quantity: 5}}
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.Zero(t, repo.created)
}

func TestCreate_UnknownProduct(t *testing.T) {
	t.Parallel()

	svc := order.NewService(newMemOrders(), &stubQuoter{}, groceryCatalog(), &stubPayments{}, nil, time.Second, testlog.New().Logger())

	req := createReq()
	req.Items = append(req.Items, order.CartItem{ProductID: "caviar", Quantity: 1})
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestCreate_QuoteFailureFailsClosed(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	quoter := &stubQuoter{err: apperr.ErrOutOfRange}
	payments := &stubPayments{intent: &payment.Intent{CorrelationID: "corr-1"}}
	svc := order.NewService(repo, quoter, groceryCatalog(), payments, nil, time.Second, testlog.New().Logger())

	_, err := svc.Create(context.Background(), createReq())
	require.ErrorIs(t, err, apperr.ErrOutOfRange)
	require.Zero(t, payments.calls)
	require.Zero(t, repo.created)
}

func TestCreate_PaymentFailureFailsClosed(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	quoter := &stubQuoter{quote: domain.Quote{Price: dec("8.00")}}
	payments := &stubPayments{err: errors.New("gateway down")}
	svc := order.NewService(repo, quoter, groceryCatalog(), payments, nil, time.Second, testlog.New().Logger())

	_, err := svc.Create(context.Background(), createReq())
	require.Error(t, err)
	require.Zero(t, repo.created)
}

func TestCreate_RetriesCodeCollision(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	repo.collisions = 2
	quoter := &stubQuoter{quote: domain.Quote{Price: dec("8.00")}}
	payments := &stubPayments{intent: &payment.Intent{CorrelationID: "corr-1"}}
	svc := order.NewService(repo, quoter, groceryCatalog(), payments, nil, time.Second, testlog.New().Logger())

	res, err := svc.Create(context.Background(), createReq())
	require.NoError(t, err)
	require.Equal(t, 3, repo.created)
	require.Len(t, res.Order.Code, 8)
}

func TestCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	repo.collisions = 10
	quoter := &stubQuoter{quote: domain.Quote{Price: dec("8.00")}}
	payments := &stubPayments{intent: &payment.Intent{CorrelationID: "corr-1"}}
	svc := order.NewService(repo, quoter, groceryCatalog(), payments, nil, time.Second, testlog.New().Logger())

	_, err := svc.Create(context.Background(), createReq())
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.Equal(t, 3, repo.created)
}

func TestCreate_RejectsBadInput(t *testing.T) {
	t.Parallel()

	svc := order.NewService(newMemOrders(), &stubQuoter{}, groceryCatalog(), &stubPayments{}, nil, time.Second, testlog.New().Logger())

	cases := []struct {
		name   string
		mutate func(*order.CreateRequest)
	}{
		{"no items", func(r *order.CreateRequest) { r.Items = nil }},
		{"zero quantity", func(r *order.CreateRequest) { r.Items[0].Quantity = 0 }},
		{"blank product", func(r *order.CreateRequest) { r.Items[0].ProductID = "  " }},
		{"no name", func(r *order.CreateRequest) { r.Customer.Name = "" }},
		{"no contact", func(r *order.CreateRequest) { r.Customer.Email = ""; r.Customer.Phone = "" }},
		{"no postal code", func(r *order.CreateRequest) { r.Address.PostalCode = "" }},
		{"no payment method", func(r *order.CreateRequest) { r.PaymentMethod = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := createReq()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			require.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
}

func trackedOrder() *domain.Order {
	return &domain.Order{
		ID:   uuid.New(),
		Code: "A2B3C4D5",
		Customer: domain.Customer{
			Name:  "João Pereira",
			Email: "Joao@Example.com",
			Phone: "+55 (11) 98765-4321",
		},
		Status: domain.OrderStatusPreparing,
	}
}

func TestTrack_MatchesContact(t *testing.T) {
	t.Parallel()

	o := trackedOrder()
	repo := newMemOrders(o)
	repo.statusLog = []domain.StatusEntry{
		{OrderID: o.ID, Status: domain.OrderStatusReceived, Note: "pedido recebido"},
		{OrderID: o.ID, Status: domain.OrderStatusPreparing},
	}
	svc := order.NewService(repo, &stubQuoter{}, groceryCatalog(), &stubPayments{}, nil, time.Second, testlog.New().Logger())

	t.Run("email case-insensitive", func(t *testing.T) {
		res, err := svc.Track(context.Background(), "A2B3C4D5", "joao@example.COM", "")
		require.NoError(t, err)
		require.Equal(t, o.ID, res.Order.ID)
		require.Len(t, res.Log, 2)
	})

	t.Run("phone ignores formatting", func(t *testing.T) {
		res, err := svc.Track(context.Background(), "A2B3C4D5", "", "5511987654321")
		require.NoError(t, err)
		require.Equal(t, o.ID, res.Order.ID)
	})
}

func TestTrack_WrongContactLooksLikeUnknownCode(t *testing.T) {
	t.Parallel()

	o := trackedOrder()
	repo := newMemOrders(o)
	svc := order.NewService(repo, &stubQuoter{}, groceryCatalog(), &stubPayments{}, nil, time.Second, testlog.New().Logger())

	_, err := svc.Track(context.Background(), "A2B3C4D5", "intruso@example.com", "")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Track(context.Background(), "NOCODE99", "joao@example.com", "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTrack_RequiresContact(t *testing.T) {
	t.Parallel()

	svc := order.NewService(newMemOrders(), &stubQuoter{}, groceryCatalog(), &stubPayments{}, nil, time.Second, testlog.New().Logger())

	_, err := svc.Track(context.Background(), "A2B3C4D5", "", "")
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.Track(context.Background(), "", "joao@example.com", "")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestTransition(t *testing.T) {
	t.Parallel()

	o := trackedOrder()
	repo := newMemOrders(o)
	notifier := &recordingNotifier{}
	svc := order.NewService(repo, &stubQuoter{}, groceryCatalog(), &stubPayments{}, notifier, time.Second, testlog.New().Logger())

	err := svc.Transition(context.Background(), o.ID, domain.OrderStatusOutForDelivery, "saiu com entregador")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusOutForDelivery, repo.byID[o.ID].Status)
	require.Len(t, repo.statusLog, 1)
	require.Equal(t, "saiu com entregador", repo.statusLog[0].Note)
	require.Equal(t, []domain.OrderStatus{domain.OrderStatusOutForDelivery}, notifier.changes)
}

func TestTransition_BackwardIsConflict(t *testing.T) {
	t.Parallel()

	o := trackedOrder()
	o.Status = domain.OrderStatusOutForDelivery
	repo := newMemOrders(o)
	svc := order.NewService(repo, &stubQuoter{}, groceryCatalog(), &stubPayments{}, nil, time.Second, testlog.New().Logger())

	err := svc.Transition(context.Background(), o.ID, domain.OrderStatusPreparing, "")
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.Empty(t, repo.statusLog)
}

func TestTransition_UnknownOrder(t *testing.T) {
	t.Parallel()

	svc := order.NewService(newMemOrders(), &stubQuoter{}, groceryCatalog(), &stubPayments{}, nil, time.Second, testlog.New().Logger())

	err := svc.Transition(context.Background(), uuid.New(), domain.OrderStatusPreparing, "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTransition_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc := order.NewService(newMemOrders(), &stubQuoter{}, groceryCatalog(), &stubPayments{}, nil, time.Second, testlog.New().Logger())

	err := svc.Transition(context.Background(), uuid.New(), domain.OrderStatus("EXTRAVIADO"), "")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestSetNotes(t *testing.T) {
	t.Parallel()

	o := trackedOrder()
	repo := newMemOrders(o)
	svc := order.NewService(repo, &stubQuoter{}, groceryCatalog(), &stubPayments{}, nil, time.Second, testlog.New().Logger())

	require.NoError(t, svc.SetNotes(context.Background(), o.ID, "  deixar na portaria  "))
	require.Equal(t, "deixar na portaria", repo.byID[o.ID].Notes)

	err := svc.SetNotes(context.Background(), uuid.New(), "x")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
