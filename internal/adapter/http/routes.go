package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	cfotel "github.com/Strob0t/workflow-notify/internal/adapter/otel"
	"github.com/Strob0t/workflow-notify/internal/middleware"
)

// NewRouter builds the receiver's router with its middleware stack.
func NewRouter(h *Handlers, webhookSecret, serviceName string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(AccessLog)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cfotel.HTTPMiddleware(serviceName))

	MountRoutes(r, h, webhookSecret)
	return r
}

// MountRoutes registers the receiver routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers, webhookSecret string) {
	r.Get("/health", h.Health)

	r.Route("/webhooks", func(r chi.Router) {
		r.With(middleware.WebhookHMAC(webhookSecret, middleware.HeaderGitHubSignature)).
			Post("/github", h.HandleGitHubWebhook)
	})
}
