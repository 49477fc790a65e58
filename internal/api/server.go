package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	chatapi "github.com/markaz/report-assistant/internal/api/chat"
	"github.com/markaz/report-assistant/internal/api/docs"
	"github.com/markaz/report-assistant/internal/api/middleware"
	"go.uber.org/zap"
)

// RouterConfig carries the gateway settings the router needs.
type RouterConfig struct {
	AccessPassword string
	EnforceAuth    bool
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(chatHandler *chatapi.Handler, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(90 * time.Second)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Session routes sit behind the access gate
	r.Group(func(r chi.Router) {
		r.Use(middleware.AccessPassword(cfg.AccessPassword, cfg.EnforceAuth))
		chatapi.RegisterRoutes(r, chatHandler)
	})

	return r
}
