// Package api provides the HTTP API server and handlers for the Pane
// directory browsing service.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/paneapp/pane-server/internal/service"
	"github.com/paneapp/pane-server/internal/view"
)

// Version is the API version reported in the OpenAPI document.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	browser *service.BrowserService
	stream  *view.Handler
	router  *chi.Mux
	api     huma.API
	logger  *slog.Logger
	limiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(browser *service.BrowserService, stream *view.Handler, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	humaConfig := huma.DefaultConfig("Pane API", Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	RegisterErrorHandler()

	s := &Server{
		browser: browser,
		stream:  stream,
		router:  router,
		api:     humachi.New(router, humaConfig),
		logger:  logger,
		limiter: NewRateLimiter(300, time.Minute, 100),
	}

	s.setupMiddleware()
	s.registerHealthRoutes()
	s.registerBrowseRoutes()
	s.registerSearchRoutes()
	s.registerSettingsRoutes()
	s.setupStreamRoute()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
}

// setupStreamRoute mounts the SSE endpoint outside huma; streaming
// responses don't fit the envelope.
func (s *Server) setupStreamRoute() {
	if s.stream != nil {
		s.router.Get("/api/v1/view/stream", s.stream.ServeHTTP)
	}
}
