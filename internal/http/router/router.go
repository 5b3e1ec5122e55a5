package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feiralivre/fulfillment/internal/http/handlers"
	"github.com/feiralivre/fulfillment/internal/http/middleware"
	"github.com/feiralivre/fulfillment/internal/http/middleware/ratelimit"
)

// Deps collects everything the router mounts.
type Deps struct {
	Base      *handlers.Handlers
	Orders    *handlers.OrderHandler
	Shipping  *handlers.ShippingHandler
	Delivery  *handlers.DeliveryHandler
	Drivers   *handlers.DriverHandler
	Webhook   *handlers.WebhookHandler
	RateLimit *ratelimit.Middleware
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))
	r.Use(middleware.Observability(d.Base.Logger))

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(http.HandlerFunc(d.Base.NotFound))

	r.Post("/orders", d.Orders.Create)
	r.Get("/orders/{code}", d.Orders.Track)
	r.Patch("/orders/{id}/status", d.Orders.Transition)
	r.Put("/orders/{id}/notes", d.Orders.SetNotes)
	r.Post("/shipping/quote", d.Shipping.Quote)

	r.Route("/deliveries", func(r chi.Router) {
		r.With(d.RateLimit.Handler()).Post("/claim", d.Delivery.Claim)
		r.Patch("/{id}", d.Delivery.Advance)
		r.Post("/unassign", d.Delivery.Unassign)
		r.Get("/driver/{id}", d.Delivery.WorkingSet)
		r.Post("/route/organize", d.Delivery.OrganizeRoute)
	})

	r.With(d.RateLimit.Handler()).Post("/payments/webhook", d.Webhook.Handle)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/orders/{id}", d.Orders.GetByID)

		r.Get("/drivers", d.Drivers.List)
		r.Get("/drivers/{id}", d.Drivers.GetByID)
		r.Post("/drivers", d.Drivers.Create)
		r.Put("/drivers", d.Drivers.Update)

		r.Route("/shipping", func(r chi.Router) {
			r.Get("/rates", d.Shipping.ListRates)
			r.Post("/rates", d.Shipping.CreateRate)
			r.Patch("/rates/{id}", d.Shipping.SetRateActive)
			r.Get("/free-cities", d.Shipping.ListFreeCities)
			r.Post("/free-cities", d.Shipping.CreateFreeCity)
			r.Patch("/free-cities/{id}", d.Shipping.SetFreeCityActive)
			r.Get("/config", d.Shipping.GetConfig)
			r.Put("/config", d.Shipping.UpdateConfig)
		})
	})

	return r
}
