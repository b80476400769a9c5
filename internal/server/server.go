package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/upslink/internal/telemetry"
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server exposing the carrier registry over JSON.
type Server struct {
	port     int
	registry *shipper.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	router   chi.Router
}

// Config holds server configuration.
type Config struct {
	Port int

	// Metrics is the registry the server registers and exposes its
	// metrics on. The prometheus default registry is used when nil.
	Metrics *prometheus.Registry

	// RequestTimeout bounds each request; 60s when zero.
	RequestTimeout time.Duration
}

// New creates a new server instance.
func New(cfg Config, registry *shipper.Registry, logger *otelzap.Logger) *Server {
	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if cfg.Metrics != nil {
		reg, gatherer = cfg.Metrics, cfg.Metrics
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	s := &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  telemetry.NewMetrics(reg),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Get("/carriers", s.handleCarriers)
		r.Post("/quotes", s.handleQuotes)
		r.Post("/shipments/{carrier}", s.handleCreateShipment)
		r.Get("/labels/{carrier}/{orderID}", s.handleGetLabel)
		r.Get("/track/{carrier}/{trackingNumber}", s.handleTrack)
	})
	r.NotFound(s.handleNotFound)

	s.router = r
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// observe records HTTP metrics and an access log line per request, keyed
// by route pattern to keep label cardinality bounded.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := routePattern(r)
		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RecordHTTP(r.Method, route, fmt.Sprint(status), elapsed.Seconds())

		s.logger.Ctx(r.Context()).Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
