// package server contains middleware & handlers for the catalogue backend
package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/luoyiti/web-video-player/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the catalogue backend.
// Implementations handle a group of related endpoints.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the method and path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// New builds the backend router: middleware, video API, health check and
// the static file or 404 fallback.
func New(cfg shared.ServerConfig, videos VideoStore, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(
		Recover(logger),
		RequestID(),
		Logging(logger),
		CORS(),
		RateLimit(cfg.RateLimit, cfg.Burst),
	)

	r.Handler(NewVideoHandler(videos, logger))
	r.Handle(http.MethodGet, "/api/health", HealthHandler())
	r.Fallback(StaticHandler(cfg.StaticRoot))

	return r
}
