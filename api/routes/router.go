package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmarable/wavecrate-backend/api/controllers"
	webhookcontrollers "github.com/dmarable/wavecrate-backend/api/controllers/webhooks"
	"github.com/dmarable/wavecrate-backend/api/middleware"
	"github.com/dmarable/wavecrate-backend/internal/catalog"
	"github.com/dmarable/wavecrate-backend/internal/checkout"
	"github.com/dmarable/wavecrate-backend/internal/licenses"
	"github.com/dmarable/wavecrate-backend/internal/purchases"
	stripewebhook "github.com/dmarable/wavecrate-backend/internal/webhooks/stripe"
	"github.com/dmarable/wavecrate-backend/pkg/config"
	"github.com/dmarable/wavecrate-backend/pkg/db"
	"github.com/dmarable/wavecrate-backend/pkg/logger"
	"github.com/dmarable/wavecrate-backend/pkg/metrics"
	"github.com/dmarable/wavecrate-backend/pkg/redis"
	stripeclient "github.com/dmarable/wavecrate-backend/pkg/stripe"
)

type Params struct {
	Config *config.Config
	Logger *logger.Logger

	DB    *db.Client
	Redis *redis.Client

	Catalog     catalog.Service
	Licenses    licenses.Service
	Checkout    checkout.Service
	Purchases   *purchases.Repository
	Webhooks    *stripewebhook.Service
	Guard       *stripewebhook.IdempotencyGuard
	DeadLetters *stripewebhook.DeadLetterRepository

	Stripe  *stripeclient.Client
	Metrics *metrics.PaymentMetrics
}

// New assembles the HTTP surface: public catalog and checkout routes, the
// provider webhook, admin replay endpoints, and operational probes.
func New(params Params) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID(params.Logger))
	r.Use(middleware.Logging(params.Logger))
	r.Use(middleware.Recoverer(params.Logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health/live", controllers.Live())
	r.Get("/health/ready", controllers.Ready(params.DB, params.Redis, params.Logger))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/samples", func(r chi.Router) {
			r.Get("/", controllers.ListSamples(params.Catalog, params.Logger))
			r.Get("/{id}", controllers.GetSample(params.Catalog, params.Logger))
			r.Post("/{id}/like", controllers.LikeSample(params.Catalog, params.Logger))
			r.Post("/{id}/download", controllers.DownloadSample(params.Catalog, params.Logger))
		})

		r.Get("/licenses", controllers.ListLicenses(params.Licenses, params.Logger))
		r.Get("/purchases", controllers.ListPurchases(params.Purchases, params.Logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(
				params.Redis,
				params.Logger,
				"checkout_intent",
				params.Config.Checkout.IntentRateLimit,
				params.Config.Checkout.IntentRateWindow,
			))
			r.Post("/checkout/intent", controllers.CreatePaymentIntent(params.Checkout, params.Logger))
		})
	})

	r.Post("/api/v1/webhooks/stripe", webhookcontrollers.Stripe(webhookcontrollers.StripeParams{
		Service:       params.Webhooks,
		Guard:         params.Guard,
		SigningSecret: params.Stripe.SigningSecret(),
		Metrics:       params.Metrics,
		Logger:        params.Logger,
	}))

	r.Route("/api/admin/v1/webhooks/dead-letters", func(r chi.Router) {
		r.Get("/", webhookcontrollers.ListDeadLetters(params.DeadLetters, params.Logger))
		r.Post("/{id}/replay", webhookcontrollers.ReplayDeadLetter(params.Webhooks, params.Logger))
	})

	return r
}
