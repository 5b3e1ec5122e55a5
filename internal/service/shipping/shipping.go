package shipping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
)

// Service computes shipping quotes. Quote is side-effect-free so it can run
// repeatedly during address entry and once more, authoritatively, at order
// creation; the client-supplied price is never trusted.
type Service struct {
	store            Store
	geo              Geocoder
	origin           domain.Coordinates
	operationTimeout time.Duration
}

// NewService creates and configures a shipping Service.
func NewService(store Store, geo Geocoder, origin domain.Coordinates, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{store: store, geo: geo, origin: origin, operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Quote prices delivery for a destination postal code and cart subtotal.
//
// Checkout blocks on this call, so every upstream failure fails closed with a
// caller-visible error and no order is created.
func (s *Service) Quote(ctx context.Context, postalCode string, subtotal decimal.Decimal) (domain.Quote, error) {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode == "" {
		return domain.Quote{}, apperr.ErrInvalid
	}
	if subtotal.IsNegative() {
		return domain.Quote{}, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	loc, err := s.geo.Resolve(ctx, postalCode)
	if err != nil {
		return domain.Quote{}, classifyUpstream(fmt.Errorf("resolve postal code: %w", err))
	}
	if loc == nil {
		return domain.Quote{}, fmt.Errorf("postal code %q: %w", postalCode, apperr.ErrInvalid)
	}

	cfg, err := s.store.Config(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	if free, err := s.store.FindFreeCity(ctx, loc.City, loc.State); err != nil {
		return domain.Quote{}, err
	} else if free != nil && subtotal.GreaterThanOrEqual(free.MinOrderAmount) {
		return domain.Quote{
			Price:        decimal.Zero,
			FreeShipping: true,
			Message:      fmt.Sprintf("frete grátis para %s/%s", free.City, free.State),
		}, nil
	}

	distance := Haversine(s.origin, domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng})

	if distance.GreaterThan(cfg.MaxDistanceKm) {
		return domain.Quote{}, fmt.Errorf("distance %skm beyond %skm: %w",
			distance, cfg.MaxDistanceKm, apperr.ErrOutOfRange)
	}

	rate, err := s.matchRate(ctx, distance)
	if err != nil {
		return domain.Quote{}, err
	}

	if subtotal.LessThan(cfg.MinOrderAmount) {
		return domain.Quote{}, fmt.Errorf("subtotal %s under minimum %s: %w",
			subtotal, cfg.MinOrderAmount, apperr.ErrBelowMinimum)
	}

	return domain.Quote{
		Price:      rate.Price,
		DistanceKm: &distance,
	}, nil
}

// matchRate returns the first active rate containing the distance. Rates come
// ordered by min_distance, so an overlap resolves to the lowest interval.
func (s *Service) matchRate(ctx context.Context, distance decimal.Decimal) (domain.ShippingRate, error) {
	rates, err := s.store.ActiveRates(ctx)
	if err != nil {
		return domain.ShippingRate{}, err
	}
	for _, r := range rates {
		if r.Contains(distance) {
			return r, nil
		}
	}
	return domain.ShippingRate{}, fmt.Errorf("distance %skm: %w", distance, apperr.ErrNoRateConfigured)
}

// classifyUpstream maps transport-level failures to ErrUpstreamTimeout.
func classifyUpstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", apperr.ErrUpstreamTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", apperr.ErrUpstreamTimeout, err)
	}
	return err
}
