// Package api FreeD codec REST API
//
// The API decodes and encodes FreeD camera-tracking frames, computes
// checksums, and optionally keeps a log of captured frames. Every route under
// /api/v1 requires the X-API-Key header; /metrics is left open for scraping.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the HTTP routes for s. gatherer backs the /metrics endpoint.
func NewRouter(s *Server, gatherer prometheus.Gatherer) http.Handler {
	metrics := s.metrics
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))
		r.Get("/schemas", metrics.InstrumentHandler("GET", "/api/v1/schemas", s.handleSchemas))

		// Codec operations
		r.Post("/decode", metrics.InstrumentHandler("POST", "/api/v1/decode", s.handleDecode))
		r.Post("/encode/{kind}", metrics.InstrumentHandler("POST", "/api/v1/encode/{kind}", s.handleEncode))
		r.Post("/checksum", metrics.InstrumentHandler("POST", "/api/v1/checksum", s.handleChecksum))

		// Frame captures
		if s.store != nil {
			r.Post("/captures", metrics.InstrumentHandler("POST", "/api/v1/captures", s.handleCreateCapture))
			r.Get("/captures", metrics.InstrumentHandler("GET", "/api/v1/captures", s.handleListCaptures))
			r.Get("/captures/{id}", metrics.InstrumentHandler("GET", "/api/v1/captures/{id}", s.handleGetCapture))
			r.Delete("/captures/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/captures/{id}", s.handleDeleteCapture))
		}
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully. store may be nil to disable the capture endpoints.
func StartServer(ctx context.Context, config ServerConfig, store CaptureStore, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := NewMetrics(reg)

	server := NewServer(store, config, metrics, log)

	addr := net.JoinHostPort(config.Bind, strconv.Itoa(config.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Bool("strict", config.Strict).Bool("captures", store != nil).Msg("starting FreeD API server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down FreeD API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
