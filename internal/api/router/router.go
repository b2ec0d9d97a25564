package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/salonsuite/platform/internal/catalog"
	"github.com/salonsuite/platform/internal/chat"
	"github.com/salonsuite/platform/internal/directory"
	httpmiddleware "github.com/salonsuite/platform/internal/http/middleware"
	"github.com/salonsuite/platform/internal/roster"
	"github.com/salonsuite/platform/internal/wizard"
	"github.com/salonsuite/platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	WizardHandler    *wizard.Handler
	DirectoryHandler *directory.Handler
	CatalogHandler   *catalog.Handler
	RosterHandler    *roster.Handler
	ChatHandler      *chat.Handler
	MetricsHandler   http.Handler

	// StaffAuthSecret enables JWT auth on staff-facing routes when set.
	StaffAuthSecret    string
	CORSAllowedOrigins []string

	// Requests per second per client IP; zero disables rate limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
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
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Staff-facing API
	r.Group(func(staff chi.Router) {
		if cfg.StaffAuthSecret != "" {
			staff.Use(httpmiddleware.StaffJWT(cfg.StaffAuthSecret))
		}
		if cfg.WizardHandler != nil {
			staff.Mount("/wizard", cfg.WizardHandler.Routes())
		}
		if cfg.DirectoryHandler != nil {
			staff.Mount("/clients", cfg.DirectoryHandler.Routes())
		}
		if cfg.CatalogHandler != nil {
			staff.Mount("/services", cfg.CatalogHandler.Routes())
		}
		if cfg.RosterHandler != nil {
			staff.Mount("/roster", cfg.RosterHandler.Routes())
		}
		if cfg.ChatHandler != nil {
			staff.Mount("/chat", cfg.ChatHandler.Routes())
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
