// Package server implements the lfsgate HTTP server: the LFS batch route,
// the homepage redirect and the system endpoints (health, docs, metrics).
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/lfsgate/lfsgate/internal/config"
	lfserr "github.com/lfsgate/lfsgate/internal/errors"
	"github.com/lfsgate/lfsgate/internal/handlers"
	"github.com/lfsgate/lfsgate/internal/httputil"
	"github.com/lfsgate/lfsgate/internal/presign"
	"github.com/lfsgate/lfsgate/internal/route"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Server is the lfsgate HTTP server.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	router     chi.Router
	api        huma.API
	signer     presign.Signer
	batch      *handlers.BatchHandler
	handler    http.Handler
	httpServer *http.Server
}

// HealthBody is the JSON body returned by the health check endpoint.
type HealthBody struct {
	Status string `json:"status" example:"ok" doc:"Health status"`
}

// HealthOutput is the Huma output struct for the health check endpoint.
type HealthOutput struct {
	Body HealthBody
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithLogger sets the logger handed to every handler.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSigner sets the URL signer. The default is an S3Presigner built
// from an empty aws.Config.
func WithSigner(signer presign.Signer) ServerOption {
	return func(s *Server) {
		s.signer = signer
	}
}

// New creates a new Server with the given configuration and wires up all
// routes on the Chi router with Huma API.
func New(cfg *config.Config, opts ...ServerOption) (*Server, error) {
	maxBody, err := cfg.Server.MaxBodyBytes()
	if err != nil {
		return nil, err
	}

	router := chi.NewMux()

	humaConfig := huma.DefaultConfig("lfsgate Git LFS gateway", Version)
	humaConfig.DocsPath = "/docs"
	humaConfig.OpenAPIPath = "/openapi"
	api := humachi.New(router, humaConfig)

	s := &Server{
		cfg:    cfg,
		router: router,
		api:    api,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.signer == nil {
		s.signer = presign.NewS3Presigner(aws.Config{}, cfg.Signing.Scheme)
	}

	s.batch = handlers.NewBatchHandler(s.signer, cfg.Signing.Concurrency, maxBody, s.logger)

	s.registerRoutes()
	s.handler = s.buildHandler()
	s.httpServer = &http.Server{
		Handler:  s.handler,
		ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	return s, nil
}

// buildHandler wraps the router in the middleware chain:
// metricsMiddleware -> commonHeaders -> requestLogger -> recoverer -> router.
func (s *Server) buildHandler() http.Handler {
	var handler http.Handler = s.router
	handler = recoverer(s.logger)(handler)
	handler = requestLogger(s.logger)(handler)
	handler = commonHeaders(handler)
	if s.cfg.Observability.Metrics {
		handler = metricsMiddleware(handler)
	}
	return handler
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server, waiting for in-flight
// requests to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// registerRoutes configures all routes on the Chi router.
// Huma routes (/health, /docs, /openapi.json) and /metrics are registered first.
// The catch-all /* is registered last. Chi matches more specific routes first.
func (s *Server) registerRoutes() {
	if s.cfg.Observability.HealthCheck {
		huma.Register(s.api, huma.Operation{
			OperationID: "get-health",
			Method:      http.MethodGet,
			Path:        "/health",
			Summary:     "Health check",
			Description: "Returns the health status of the gateway.",
			Tags:        []string{"System"},
		}, func(ctx context.Context, input *struct{}) (*HealthOutput, error) {
			return &HealthOutput{Body: HealthBody{Status: "ok"}}, nil
		})

		// Huma only does one method per registration.
		s.router.Head("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		})
	}

	if s.cfg.Observability.Metrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.HandleFunc("/*", s.dispatch)
}

// dispatch routes every request the system endpoints did not claim.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	kind := route.Classify(r.Method, r.URL.Path)
	switch kind {
	case route.Redirect:
		s.logger.Info("Redirecting to homepage", "kind", kind, "location", s.cfg.Server.HomepageURL)
		http.Redirect(w, r, s.cfg.Server.HomepageURL, http.StatusFound)
	case route.Batch:
		s.batch.ServeHTTP(w, r)
	default:
		s.logger.Warn(fmt.Sprintf("Invalid request: %s %s", r.Method, r.URL.Path),
			"kind", kind,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get(httputil.RequestIDHeader),
		)
		httputil.WriteError(w, lfserr.ErrNotFound)
	}
}
