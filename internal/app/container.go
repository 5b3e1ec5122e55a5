package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/feiralivre/fulfillment/internal/config"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/gateway/catalog"
	"github.com/feiralivre/fulfillment/internal/gateway/geocode"
	"github.com/feiralivre/fulfillment/internal/gateway/payment"
	"github.com/feiralivre/fulfillment/internal/gateway/routeopt"
	"github.com/feiralivre/fulfillment/internal/http/handlers"
	"github.com/feiralivre/fulfillment/internal/http/middleware/ratelimit"
	"github.com/feiralivre/fulfillment/internal/http/router"
	"github.com/feiralivre/fulfillment/internal/logx"
	"github.com/feiralivre/fulfillment/internal/metrics"
	"github.com/feiralivre/fulfillment/internal/notify"
	"github.com/feiralivre/fulfillment/internal/repository"
	"github.com/feiralivre/fulfillment/internal/service/assignment"
	"github.com/feiralivre/fulfillment/internal/service/driver"
	"github.com/feiralivre/fulfillment/internal/service/order"
	paymentsvc "github.com/feiralivre/fulfillment/internal/service/payment"
	"github.com/feiralivre/fulfillment/internal/service/route"
	"github.com/feiralivre/fulfillment/internal/service/shipping"
)

const serviceTimeout = 3 * time.Second

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerGateways(container); err != nil {
		return nil, fmt.Errorf("gateways: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

type metricsOut struct {
	dig.Out

	RateLimitExceeded prometheus.Counter `name:"rate_limit_exceeded_total"`
	GatewayRetries    prometheus.Counter `name:"gateway_retries_total"`
	ClaimConflicts    prometheus.Counter `name:"claim_conflicts_total"`
	StaleEvents       prometheus.Counter `name:"payment_events_stale_total"`
}

func newMetrics() metricsOut {
	out := metricsOut{
		RateLimitExceeded: metrics.NewRateLimitExceededTotal(),
		GatewayRetries:    metrics.NewGatewayRetriesTotal(),
		ClaimConflicts:    metrics.NewClaimConflictsTotal(),
		StaleEvents:       metrics.NewPaymentEventsStaleTotal(),
	}
	prometheus.MustRegister(out.RateLimitExceeded, out.GatewayRetries, out.ClaimConflicts, out.StaleEvents)
	return out
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		func() *log.Logger { return log.Default() },
		config.Load,
		NewLogger,
		newMetrics,
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

type geocoderIn struct {
	dig.In

	Cfg     *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"gateway_retries_total"`
}

func newGeocoder(in geocoderIn) *geocode.RetryingGateway {
	gw := in.Cfg.Gateways
	base := geocode.NewHTTPGateway(gw.GeocoderURL, gw.GeocoderTimeout)
	return geocode.NewRetryingGateway(base, in.Logger, in.Retries, geocode.RetryConfig{
		MaxAttempts: gw.Retry.MaxAttempts,
		BaseDelay:   gw.Retry.BaseDelay,
		MaxDelay:    gw.Retry.MaxDelay,
	})
}

func registerGateways(container *dig.Container) error {
	return provideAll(container,
		newGeocoder,
		func(cfg *config.Config) *payment.HTTPGateway {
			gw := cfg.Gateways
			return payment.NewHTTPGateway(gw.PaymentURL, gw.PaymentAPIKey, gw.PaymentTimeout)
		},
		func(cfg *config.Config) *routeopt.HTTPGateway {
			gw := cfg.Gateways
			return routeopt.NewHTTPGateway(gw.OptimizerURL, gw.OptimizerTimeout)
		},
		func(cfg *config.Config) *catalog.HTTPGateway {
			gw := cfg.Gateways
			return catalog.NewHTTPGateway(gw.CatalogURL, gw.CatalogTimeout)
		},
		func(cfg *config.Config, logger logx.Logger) (notify.Sink, error) {
			sink, err := notify.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.StatusTopic, cfg.PublicURL, logger)
			if err != nil {
				return nil, err
			}
			if sink == nil {
				return notify.Nop(), nil
			}
			return sink, nil
		},
	)
}

type assignmentIn struct {
	dig.In

	Repo      *repository.AssignmentRepo
	Orders    *repository.OrderRepo
	Drivers   *repository.DriverRepo
	Sink      notify.Sink
	Cfg       *config.Config
	Logger    logx.Logger
	Conflicts prometheus.Counter `name:"claim_conflicts_total"`
}

func newAssignmentService(in assignmentIn) *assignment.Service {
	return assignment.NewService(in.Repo, in.Orders, in.Drivers, in.Sink, in.Conflicts, assignment.Config{
		PendingTTL:       in.Cfg.Delivery.PendingTTL,
		OperationTimeout: serviceTimeout,
	}, in.Logger)
}

type reconcilerIn struct {
	dig.In

	Repo   *repository.OrderRepo
	Sink   notify.Sink
	Logger logx.Logger
	Stale  prometheus.Counter `name:"payment_events_stale_total"`
}

func newReconciler(in reconcilerIn) *paymentsvc.Reconciler {
	return paymentsvc.NewReconciler(in.Repo, in.Sink, in.Stale, serviceTimeout, in.Logger)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewOrderRepo,
		repository.NewAssignmentRepo,
		repository.NewDriverRepo,
		repository.NewShippingRepo,
		func(repo *repository.ShippingRepo, geo *geocode.RetryingGateway, cfg *config.Config) *shipping.Service {
			origin := domain.Coordinates{Lat: cfg.Warehouse.Lat, Lng: cfg.Warehouse.Lng}
			return shipping.NewService(repo, geo, origin, serviceTimeout)
		},
		func(repo *repository.ShippingRepo) *shipping.Admin {
			return shipping.NewAdmin(repo, serviceTimeout)
		},
		func(repo *repository.DriverRepo) *driver.Service {
			return driver.NewService(repo, serviceTimeout)
		},
		func(
			repo *repository.OrderRepo,
			quoter *shipping.Service,
			cat *catalog.HTTPGateway,
			pay *payment.HTTPGateway,
			sink notify.Sink,
			logger logx.Logger,
		) *order.Service {
			return order.NewService(repo, quoter, cat, pay, sink, 5*time.Second, logger)
		},
		newAssignmentService,
		newReconciler,
		func(repo *repository.AssignmentRepo, orders *repository.OrderRepo, opt *routeopt.HTTPGateway, logger logx.Logger) route.Sequencer {
			return route.NewOptimizingSequencer(route.NewManualSequencer(repo), orders, opt, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		handlers.NewOrderUsecase,
		handlers.NewOrderHandler,
		handlers.NewQuoteUsecase,
		handlers.NewShippingAdminUsecase,
		handlers.NewShippingHandler,
		handlers.NewDeliveryUsecase,
		handlers.NewRouteUsecase,
		handlers.NewDeliveryHandler,
		handlers.NewDriverUsecase,
		handlers.NewDriverHandler,
		func(logger logx.Logger, rec *paymentsvc.Reconciler, cfg *config.Config) *handlers.WebhookHandler {
			return handlers.NewWebhookHandler(logger, handlers.NewPaymentUsecase(rec), cfg.Gateways.WebhookSecret)
		},
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		func(
			base *handlers.Handlers,
			orderH *handlers.OrderHandler,
			shippingH *handlers.ShippingHandler,
			deliveryH *handlers.DeliveryHandler,
			driverH *handlers.DriverHandler,
			webhookH *handlers.WebhookHandler,
			rl *ratelimit.Middleware,
		) http.Handler {
			return router.New(router.Deps{
				Base:      base,
				Orders:    orderH,
				Shipping:  shippingH,
				Delivery:  deliveryH,
				Drivers:   driverH,
				Webhook:   webhookH,
				RateLimit: rl,
			})
		},
		serverProvider,
	)
}
