package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pratik-mahalle/sitevoice/internal/api/handlers"
	"github.com/pratik-mahalle/sitevoice/internal/api/middleware"
	"github.com/pratik-mahalle/sitevoice/internal/auth"
	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/metrics"
)

// VoiceRoutes are the handlers behind the voice route table
type VoiceRoutes struct {
	Extract http.HandlerFunc
	Health  http.HandlerFunc
}

// RegisterVoiceRoutes registers the voice route table on r. It adds exactly
// POST /voice/extract and GET /voice/health.
func RegisterVoiceRoutes(r chi.Router, h VoiceRoutes) {
	r.Post("/voice/extract", h.Extract)
	r.Get("/voice/health", h.Health)
}

type Handlers struct {
	Health   *handlers.HealthHandler
	Entry    *handlers.EntryHandler
	Voice    *handlers.VoiceHandler
	Profile  *handlers.ProfileHandler
	Billing  *handlers.BillingHandler
	Identity *handlers.IdentityHandler
}

func New(cfg *config.Config, log *logger.Logger, verifier auth.Verifier, limiter *middleware.RateLimiter, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders(cfg.Server.Environment == "production"))
	r.Use(middleware.CORS(middleware.AllowedOrigins(cfg.Server)))
	r.Use(metrics.Middleware)

	// The limiter runs after session resolution so signed-in callers are
	// keyed by user and everyone else by IP.
	limit := middleware.RateLimit(limiter)
	requireSession := middleware.AuthMiddleware(verifier)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
		r.Handle("/metrics", metrics.Handler())

		r.With(middleware.OptionalAuthMiddleware(verifier), limit).Get("/", h.Entry.Redirect)
	})

	r.Route("/api", func(r chi.Router) {
		RegisterVoiceRoutes(r, VoiceRoutes{
			Extract: requireSession(limit(http.HandlerFunc(h.Voice.Extract))).ServeHTTP,
			Health:  limit(http.HandlerFunc(h.Voice.Health)).ServeHTTP,
		})

		// Signed by the sender, not by a user session
		r.With(limit).Post("/webhooks/stripe", h.Billing.Webhook)
		r.With(limit).Post("/webhooks/clerk", h.Identity.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Use(limit)

			r.Get("/me", h.Profile.Me)
			r.Patch("/me", h.Profile.Update)

			r.Route("/billing", func(r chi.Router) {
				r.Get("/plans", h.Billing.ListPlans)
				r.Post("/checkout", h.Billing.CreateCheckoutSession)
				r.Post("/portal", h.Billing.CreatePortalSession)
			})
		})
	})

	return r
}
