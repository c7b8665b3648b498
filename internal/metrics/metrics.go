/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package metrics provides Prometheus-compatible metrics for sqlshape.

METRIC CATEGORIES:
==================
- Analyses: total, by statement kind, failed
- Resolution: unresolved table and column references
- Latency: average analysis time
- Cache: hits, misses

PROMETHEUS ENDPOINT:
====================
Metrics are exposed at /metrics in Prometheus text format when a metrics
address is configured.

EXAMPLE METRICS:
================

	sqlshape_analyses_total 12345
	sqlshape_analyses_by_kind_total{kind="SELECT"} 10021
	sqlshape_unresolved_references_total 17
	sqlshape_cache_hits_total 9876
*/
package metrics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"sqlshape/internal/logging"
)

// Metrics holds all sqlshape metrics.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal  atomic.Uint64 // Successful analyses
	AnalysesSelect atomic.Uint64
	AnalysesInsert atomic.Uint64
	AnalysesUpdate atomic.Uint64
	AnalysesDelete atomic.Uint64
	AnalysesFailed atomic.Uint64 // Unsupported or malformed statements

	// Unresolved references reported as diagnostics
	Unresolved atomic.Uint64

	// Analysis latency metrics (in microseconds)
	LatencySum   atomic.Uint64
	LatencyCount atomic.Uint64

	// Cache metrics
	CacheHits   atomic.Uint64
	CacheMisses atomic.Uint64
}

// Global metrics instance
var globalMetrics = &Metrics{}

// Get returns the global metrics instance.
func Get() *Metrics {
	return globalMetrics
}

// New returns a fresh, unshared metrics instance.
func New() *Metrics {
	return &Metrics{}
}

// RecordAnalysis records a completed analysis.
func (m *Metrics) RecordAnalysis(kind string, latency time.Duration, unresolved int) {
	m.AnalysesTotal.Add(1)
	m.LatencySum.Add(uint64(latency.Microseconds()))
	m.LatencyCount.Add(1)
	m.Unresolved.Add(uint64(unresolved))

	switch kind {
	case "SELECT":
		m.AnalysesSelect.Add(1)
	case "INSERT":
		m.AnalysesInsert.Add(1)
	case "UPDATE":
		m.AnalysesUpdate.Add(1)
	case "DELETE":
		m.AnalysesDelete.Add(1)
	}
}

// RecordFailure records a statement that could not be analyzed.
func (m *Metrics) RecordFailure() {
	m.AnalysesFailed.Add(1)
}

// RecordCache records a cache lookup.
func (m *Metrics) RecordCache(hit bool) {
	if hit {
		m.CacheHits.Add(1)
	} else {
		m.CacheMisses.Add(1)
	}
}

// AverageLatency returns the average analysis latency in microseconds.
func (m *Metrics) AverageLatency() float64 {
	count := m.LatencyCount.Load()
	if count == 0 {
		return 0
	}
	return float64(m.LatencySum.Load()) / float64(count)
}

// WritePrometheus writes all metrics in Prometheus text format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	fmt.Fprintf(w, "# HELP sqlshape_analyses_total Statements analyzed\n")
	fmt.Fprintf(w, "# TYPE sqlshape_analyses_total counter\n")
	fmt.Fprintf(w, "sqlshape_analyses_total %d\n", m.AnalysesTotal.Load())

	fmt.Fprintf(w, "# HELP sqlshape_analyses_by_kind_total Statements analyzed by kind\n")
	fmt.Fprintf(w, "# TYPE sqlshape_analyses_by_kind_total counter\n")
	fmt.Fprintf(w, "sqlshape_analyses_by_kind_total{kind=\"SELECT\"} %d\n", m.AnalysesSelect.Load())
	fmt.Fprintf(w, "sqlshape_analyses_by_kind_total{kind=\"INSERT\"} %d\n", m.AnalysesInsert.Load())
	fmt.Fprintf(w, "sqlshape_analyses_by_kind_total{kind=\"UPDATE\"} %d\n", m.AnalysesUpdate.Load())
	fmt.Fprintf(w, "sqlshape_analyses_by_kind_total{kind=\"DELETE\"} %d\n", m.AnalysesDelete.Load())

	fmt.Fprintf(w, "# HELP sqlshape_analyses_failed_total Statements rejected as unsupported or malformed\n")
	fmt.Fprintf(w, "# TYPE sqlshape_analyses_failed_total counter\n")
	fmt.Fprintf(w, "sqlshape_analyses_failed_total %d\n", m.AnalysesFailed.Load())

	fmt.Fprintf(w, "# HELP sqlshape_unresolved_references_total Table and column references missing from the schema\n")
	fmt.Fprintf(w, "# TYPE sqlshape_unresolved_references_total counter\n")
	fmt.Fprintf(w, "sqlshape_unresolved_references_total %d\n", m.Unresolved.Load())

	fmt.Fprintf(w, "# HELP sqlshape_analysis_latency_avg_microseconds Average analysis latency\n")
	fmt.Fprintf(w, "# TYPE sqlshape_analysis_latency_avg_microseconds gauge\n")
	fmt.Fprintf(w, "sqlshape_analysis_latency_avg_microseconds %.2f\n", m.AverageLatency())

	fmt.Fprintf(w, "# HELP sqlshape_cache_hits_total Analysis cache hits\n")
	fmt.Fprintf(w, "# TYPE sqlshape_cache_hits_total counter\n")
	fmt.Fprintf(w, "sqlshape_cache_hits_total %d\n", m.CacheHits.Load())

	fmt.Fprintf(w, "# HELP sqlshape_cache_misses_total Analysis cache misses\n")
	fmt.Fprintf(w, "# TYPE sqlshape_cache_misses_total counter\n")
	fmt.Fprintf(w, "sqlshape_cache_misses_total %d\n", m.CacheMisses.Load())
}

// Server provides an HTTP server for Prometheus metrics.
type Server struct {
	addr    string
	metrics *Metrics
	server  *http.Server
	logger  *logging.Logger
	routes  map[string]http.Handler
}

// NewServer creates a new metrics server for m. An empty addr disables
// the server.
func NewServer(addr string, m *Metrics) *Server {
	return &Server{
		addr:    addr,
		metrics: m,
		logger:  logging.NewLogger("metrics"),
	}
}

// Handle mounts an extra handler next to /metrics. It must be called
// before Start.
func (s *Server) Handle(pattern string, h http.Handler) {
	if s.routes == nil {
		s.routes = make(map[string]http.Handler)
	}
	s.routes[pattern] = h
}

// Handler returns the HTTP handler serving /metrics and any mounted routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	for pattern, h := range s.routes {
		mux.Handle(pattern, h)
	}
	return mux
}

// Start starts the metrics HTTP server. The listener is bound before
// Start returns so that address errors are reported to the caller.
func (s *Server) Start() error {
	if s.addr == "" {
		s.logger.Debug("Metrics server disabled")
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("Starting metrics server", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Metrics server error", "error", err)
		}
	}()

	return nil
}

// Stop stops the metrics HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Stopping metrics server")
	return s.server.Shutdown(ctx)
}

// handleMetrics handles the /metrics endpoint in Prometheus format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	s.metrics.WritePrometheus(w)
}
