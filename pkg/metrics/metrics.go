// Package metrics exposes the scraper's Prometheus metrics.
// All metrics are defined in their respective packages (client, pagination,
// extract, store, scraper) to maintain modularity and avoid circular
// dependencies.
//
// This package provides the /metrics endpoint and a reference for all
// available metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Handler returns the /metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Server serves /metrics in the background for the lifetime of a scrape.
type Server struct {
	srv *http.Server
}

// Start listens on addr and serves /metrics until Shutdown.
func Start(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	s := &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()
	return s
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - horizon_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - horizon_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - horizon_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Pagination Metrics (pkg/pagination):
//   - horizon_pages_fetched_total (Counter): Result pages fetched and parsed
//
// Extraction Metrics (pkg/extract):
//   - horizon_records_extracted_total{variant} (Counter): Records emitted by row layout (A, B)
//   - horizon_records_dropped_total (Counter): Records dropped for a missing reference or address
//
// Store Metrics (pkg/store):
//   - horizon_store_upserts_total{driver, result} (Counter): Upserts by sink and outcome
//
// Run Metrics (pkg/scraper):
//   - horizon_scrape_runs_total{tenant, result} (Counter): Tenant scrapes by outcome
//   - horizon_scrape_duration_seconds{tenant} (Histogram): Tenant scrape duration
//
// Example Prometheus Queries:
//
//   # Failed tenant scrapes
//   sum by (tenant) (increase(horizon_scrape_runs_total{result="error"}[1d]))
//
//   # Drop ratio
//   rate(horizon_records_dropped_total[1h]) /
//   (rate(horizon_records_dropped_total[1h]) + sum(rate(horizon_records_extracted_total[1h])))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(horizon_request_duration_seconds_bucket[5m]))
