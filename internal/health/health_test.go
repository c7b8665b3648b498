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

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sqlshape/internal/cache"
)

type testMux struct {
	mux *http.ServeMux
}

func (m testMux) Handle(pattern string, h http.Handler) {
	m.mux.Handle(pattern, h)
}

func serve(t *testing.T, c *Checker, path string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	m := testMux{mux: http.NewServeMux()}
	c.Mount(m)

	rec := httptest.NewRecorder()
	m.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return rec, resp
}

func TestRunChecksAggregatesStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		expected Status
	}{
		{"none", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker("test")
			for i, s := range tt.statuses {
				status := s
				c.RegisterCheck(string(rune('a'+i)), func() CheckResult {
					return CheckResult{Status: status}
				})
			}
			resp := c.RunChecks()
			if resp.Status != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, resp.Status)
			}
			if len(resp.Checks) != len(tt.statuses) {
				t.Errorf("Expected %d checks, got %d", len(tt.statuses), len(resp.Checks))
			}
		})
	}
}

func TestRunChecksOrderedByName(t *testing.T) {
	c := NewChecker("test")
	for _, name := range []string{"schema", "cache", "metrics"} {
		c.RegisterCheck(name, func() CheckResult { return CheckResult{Status: StatusHealthy} })
	}

	resp := c.RunChecks()
	var names []string
	for _, r := range resp.Checks {
		names = append(names, r.Name)
	}
	if got := strings.Join(names, ","); got != "cache,metrics,schema" {
		t.Errorf("Expected cache,metrics,schema, got %s", got)
	}
}

func TestSchemaCheck(t *testing.T) {
	if r := SchemaCheck(func() int { return 0 })(); r.Status != StatusDegraded {
		t.Errorf("Expected degraded for empty schema, got %s", r.Status)
	}
	r := SchemaCheck(func() int { return 3 })()
	if r.Status != StatusHealthy {
		t.Errorf("Expected healthy, got %s", r.Status)
	}
	if r.Message != "3 tables loaded" {
		t.Errorf("Expected '3 tables loaded', got %q", r.Message)
	}
}

func TestCacheCheck(t *testing.T) {
	if r := CacheCheck(nil)(); r.Message != "cache disabled" {
		t.Errorf("Expected 'cache disabled', got %q", r.Message)
	}
	r := CacheCheck(func() cache.Stats {
		return cache.Stats{Entries: 5, MaxEntries: 10, HitRate: 0.5}
	})()
	if r.Message != "5/10 entries, 50.0% hit rate" {
		t.Errorf("Unexpected message %q", r.Message)
	}
}

func TestHealthEndpoints(t *testing.T) {
	c := NewChecker("1.0")
	c.RegisterCheck("schema", SchemaCheck(func() int { return 0 }))

	rec, resp := serve(t, c, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 for degraded /health, got %d", rec.Code)
	}
	if resp.Status != StatusDegraded {
		t.Errorf("Expected degraded, got %s", resp.Status)
	}

	rec, _ = serve(t, c, "/health/ready")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for degraded /health/ready, got %d", rec.Code)
	}

	rec, resp = serve(t, c, "/health/live")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for /health/live, got %d", rec.Code)
	}
	if resp.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", resp.Version)
	}
	if len(resp.Checks) != 0 {
		t.Errorf("Expected liveness to run no checks, got %d", len(resp.Checks))
	}
}

func TestReadinessUnhealthy(t *testing.T) {
	c := NewChecker("1.0")
	c.RegisterCheck("broken", func() CheckResult { return CheckResult{Status: StatusUnhealthy} })

	rec, _ := serve(t, c, "/health/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}
