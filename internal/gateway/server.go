// Package gateway contains the HTTP server for the job API.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/amine-mosbah/genesis-multimodal-ai/internal/gateway/handlers"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/gateway/middleware"
)

// Options tunes server behavior.
type Options struct {
	// MetricsHandler serves GET /metrics when non-nil.
	MetricsHandler http.Handler

	// RateLimitRPS/Burst limit job creation per client IP.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the HTTP server for the gateway API.
type Server struct {
	httpServer *http.Server
}

// New creates a new gateway server.
func New(addr string, h *handlers.Handlers, opts Options) *Server {
	limited := middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst)

	mux := http.NewServeMux()

	mux.Handle("POST /jobs", limited(http.HandlerFunc(h.CreateJob)))
	mux.HandleFunc("GET /jobs/{id}", h.GetJob)
	mux.HandleFunc("GET /jobs", h.ListJobs)
	mux.HandleFunc("GET /pipelines", h.ListPipelines)

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)

	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      middleware.RequestID(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
