package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luisocampo/nichesmith-backend/api/controllers"
	aicontrollers "github.com/luisocampo/nichesmith-backend/api/controllers/ai"
	billingcontrollers "github.com/luisocampo/nichesmith-backend/api/controllers/billing"
	webhookcontrollers "github.com/luisocampo/nichesmith-backend/api/controllers/webhooks"
	"github.com/luisocampo/nichesmith-backend/api/middleware"
	"github.com/luisocampo/nichesmith-backend/internal/plans"
	"github.com/luisocampo/nichesmith-backend/pkg/config"
	"github.com/luisocampo/nichesmith-backend/pkg/db"
	"github.com/luisocampo/nichesmith-backend/pkg/identity"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
	"github.com/luisocampo/nichesmith-backend/pkg/redis"
	pkgstripe "github.com/luisocampo/nichesmith-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	dbP db.Pinger,
	redisClient *redis.Client,
	verifier identity.Verifier,
	stripeClient *pkgstripe.Client,
	webhookService webhookcontrollers.StripeWebhookService,
	checkoutService billingcontrollers.CheckoutService,
	profileReader billingcontrollers.ProfileReader,
	planRepo plans.Repository,
	aiService aicontrollers.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(webhookService, stripeClient, logg))
	})

	r.Route("/api/v1/billing", func(r chi.Router) {
		r.Get("/plans", billingcontrollers.ListPlans(planRepo, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(verifier, logg))
			r.Post("/checkout-session", billingcontrollers.CreateCheckoutSession(checkoutService, logg))
			r.Get("/profile", billingcontrollers.GetProfile(profileReader, logg))
		})
	})

	r.Route("/api/v1/ai", func(r chi.Router) {
		r.Use(middleware.Auth(verifier, logg))
		r.Use(middleware.AIRateLimit(cfg.AIRateLimit, redisClient, logg))
		r.Post("/generate-image", aicontrollers.GenerateImage(aiService, logg))
		r.Post("/suggest-names", aicontrollers.SuggestNames(aiService, logg))
		r.Post("/suggest-keywords", aicontrollers.SuggestKeywords(aiService, logg))
		r.Post("/generate-article", aicontrollers.GenerateArticle(aiService, logg))
	})

	return r
}
