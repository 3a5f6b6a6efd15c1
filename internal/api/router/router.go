package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/delsurprop/backoffice/internal/agents"
	"github.com/delsurprop/backoffice/internal/clients"
	httpmiddleware "github.com/delsurprop/backoffice/internal/http/middleware"
	"github.com/delsurprop/backoffice/internal/leads"
	"github.com/delsurprop/backoffice/internal/locations"
	"github.com/delsurprop/backoffice/internal/owners"
	"github.com/delsurprop/backoffice/internal/properties"
	"github.com/delsurprop/backoffice/internal/scheduling"
	"github.com/delsurprop/backoffice/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	SchedulingHandler  *scheduling.Handler
	PropertiesHandler  *properties.Handler
	OwnersHandler      *owners.Handler
	ClientsHandler     *clients.Handler
	AgentsHandler      *agents.Handler
	LocationsHandler   *locations.Handler
	LeadsHandler       *leads.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Rate limiting for the public lead form. LeadRateLimiter takes
	// precedence when both are set (multi-instance deployments).
	LeadRateLimiter func(http.Handler) http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.LeadsHandler != nil {
			public.Group(func(lead chi.Router) {
				if cfg.LeadRateLimiter != nil {
					lead.Use(cfg.LeadRateLimiter)
				}
				lead.Post("/api/leads", cfg.LeadsHandler.CreateWebLead)
			})
		}
	})

	// Back-office API
	r.Route("/api", func(api chi.Router) {
		if cfg.SchedulingHandler != nil {
			api.Route("/appointments", cfg.SchedulingHandler.Mount)
		}
		if cfg.PropertiesHandler != nil {
			api.Route("/properties", cfg.PropertiesHandler.Mount)
		}
		if cfg.OwnersHandler != nil {
			api.Route("/owners", cfg.OwnersHandler.Mount)
		}
		if cfg.ClientsHandler != nil {
			api.Route("/clients", cfg.ClientsHandler.Mount)
		}
		if cfg.AgentsHandler != nil {
			api.Route("/agents", cfg.AgentsHandler.Mount)
		}
		if cfg.LocationsHandler != nil {
			api.Route("/locations", cfg.LocationsHandler.Mount)
		}
		if cfg.LeadsHandler != nil {
			api.Get("/leads", cfg.LeadsHandler.ListLeads)
		}
	})

	return r
}
