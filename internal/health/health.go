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
Package health provides health check endpoints for sqlshape.

ENDPOINTS:
==========

	GET /health       - Overall health check
	GET /health/live  - Liveness check (is the process running?)
	GET /health/ready - Readiness check (can statements be analyzed?)

The endpoints are mounted on the metrics HTTP server, so they are served
only when a metrics address is configured.

STATUS VALUES:
==============
  - healthy: All checks pass
  - degraded: Analyses still run but results may be poorer
  - unhealthy: Statements cannot be analyzed
*/
package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"sqlshape/internal/cache"
	"sqlshape/internal/logging"
)

// Status represents the health status.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult represents the result of a health check.
type CheckResult struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    Status        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Version   string        `json:"version,omitempty"`
	Checks    []CheckResult `json:"checks,omitempty"`
}

// Check is a function that performs a health check.
type Check func() CheckResult

// Checker manages health checks.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	version string
	logger  *logging.Logger
}

// NewChecker creates a new health checker.
func NewChecker(version string) *Checker {
	return &Checker{
		checks:  make(map[string]Check),
		version: version,
		logger:  logging.NewLogger("health"),
	}
}

// RegisterCheck registers a health check, replacing one of the same name.
func (c *Checker) RegisterCheck(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// RunChecks runs all registered health checks in name order.
func (c *Checker) RunChecks() HealthResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	response := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   c.version,
		Checks:    make([]CheckResult, 0, len(names)),
	}

	for _, name := range names {
		start := time.Now()
		result := c.checks[name]()
		result.Name = name
		result.Latency = time.Since(start).Milliseconds()
		response.Checks = append(response.Checks, result)

		switch {
		case result.Status == StatusUnhealthy:
			response.Status = StatusUnhealthy
		case result.Status == StatusDegraded && response.Status == StatusHealthy:
			response.Status = StatusDegraded
		}
	}

	if response.Status != StatusHealthy {
		c.logger.Debug("Health check not healthy", "status", response.Status)
	}
	return response
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	return c.RunChecks().Status == StatusHealthy
}

// Mux is anything handlers can be mounted on, such as the metrics server.
type Mux interface {
	Handle(pattern string, h http.Handler)
}

// Mount registers the health endpoints on m.
func (c *Checker) Mount(m Mux) {
	m.Handle("/health", http.HandlerFunc(c.handleHealth))
	m.Handle("/health/live", http.HandlerFunc(c.handleLiveness))
	m.Handle("/health/ready", http.HandlerFunc(c.handleReadiness))
}

// handleHealth handles the /health endpoint.
func (c *Checker) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := c.RunChecks()

	w.Header().Set("Content-Type", "application/json")
	if response.Status != StatusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}

// handleLiveness handles the /health/live endpoint.
func (c *Checker) handleLiveness(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   c.version,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleReadiness handles the /health/ready endpoint. Degraded checks do
// not make the process unready.
func (c *Checker) handleReadiness(w http.ResponseWriter, r *http.Request) {
	response := c.RunChecks()

	w.Header().Set("Content-Type", "application/json")
	if response.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}

// Common health checks

// SchemaCheck reports on the loaded schema. With no tables every
// reference resolves to UNKNOWN, so an empty schema is degraded.
func SchemaCheck(tables func() int) Check {
	return func() CheckResult {
		n := tables()
		if n == 0 {
			return CheckResult{
				Status:  StatusDegraded,
				Message: "no tables loaded",
			}
		}
		return CheckResult{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%d tables loaded", n),
		}
	}
}

// CacheCheck reports analysis cache occupancy. A nil stats function means
// caching is disabled, which is healthy.
func CacheCheck(stats func() cache.Stats) Check {
	return func() CheckResult {
		if stats == nil {
			return CheckResult{Status: StatusHealthy, Message: "cache disabled"}
		}
		s := stats()
		return CheckResult{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%d/%d entries, %.1f%% hit rate", s.Entries, s.MaxEntries, s.HitRate*100),
		}
	}
}
