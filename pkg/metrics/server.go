package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves Prometheus metrics over HTTP. Scrape handling only formats
// what the gatherer already holds; it never triggers a contract read.
type Server struct {
	httpServer *http.Server
}

// NewServer creates the metrics HTTP server. Metrics are exposed at /metrics
// on the given address (e.g. ":39339"); /health answers with a plain ok for
// liveness probes.
func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck // best-effort health response
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start begins serving in a background goroutine. The returned channel
// receives the failure if the server cannot bind or dies unexpectedly, which
// the caller treats as fatal.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown stops the server gracefully, waiting for in-flight scrapes to
// finish or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
