package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aziwar/dr-islam-website-sub002/internal/http/handlers"
	httpmiddleware "github.com/aziwar/dr-islam-website-sub002/internal/http/middleware"
	"github.com/aziwar/dr-islam-website-sub002/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	ContactHandler *handlers.ContactHandler
	AllowedOrigins []string
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.AllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// The contact handler owns method dispatch (OPTIONS/POST/405) so every
	// branch of the HTTP contract shares one code path.
	r.Handle("/api/contact", cfg.ContactHandler)

	return r
}
