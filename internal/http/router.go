package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig bundles the handlers and middleware mounted by the router.
type RouterConfig struct {
	Events     *EventHandler
	Venues     *VenueHandler
	Resources  *ResourceHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the coordinator's HTTP surface.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	if cfg.Events != nil {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", cfg.Events.List)
			r.Post("/", cfg.Events.Submit)
			r.Get("/pending-approvals", cfg.Events.PendingApprovals)
			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", cfg.Events.Get)
				r.Post("/approve", cfg.Events.Approve)
				r.Post("/reject", cfg.Events.Reject)
				r.Post("/request-modification", cfg.Events.RequestModification)
				r.Post("/override-approve", cfg.Events.OverrideApprove)
				r.Post("/start", cfg.Events.Start)
				r.Post("/complete", cfg.Events.Complete)
			})
		})
	}

	if cfg.Venues != nil {
		r.Route("/venues", func(r chi.Router) {
			r.Get("/", cfg.Venues.List)
			r.Post("/", cfg.Venues.Create)
			r.Route("/{venueID}", func(r chi.Router) {
				r.Get("/", cfg.Venues.Get)
				r.Put("/", cfg.Venues.Update)
				r.Get("/conflict", cfg.Venues.Conflicts)
			})
		})
	}

	if cfg.Resources != nil {
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", cfg.Resources.List)
			r.Post("/", cfg.Resources.Create)
			r.Route("/{resourceID}", func(r chi.Router) {
				r.Get("/", cfg.Resources.Get)
				r.Put("/", cfg.Resources.Update)
				r.Get("/usage", cfg.Resources.Usage)
				r.Get("/capacity", cfg.Resources.Capacity)
			})
		})
	}

	return r
}
