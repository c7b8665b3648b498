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

package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecordAnalysis(t *testing.T) {
	m := New()

	m.RecordAnalysis("SELECT", 2*time.Millisecond, 0)
	m.RecordAnalysis("SELECT", 4*time.Millisecond, 2)
	m.RecordAnalysis("DELETE", 0, 0)
	m.RecordFailure()

	if got := m.AnalysesTotal.Load(); got != 3 {
		t.Errorf("Expected 3 analyses, got %d", got)
	}
	if got := m.AnalysesSelect.Load(); got != 2 {
		t.Errorf("Expected 2 SELECT analyses, got %d", got)
	}
	if got := m.AnalysesDelete.Load(); got != 1 {
		t.Errorf("Expected 1 DELETE analysis, got %d", got)
	}
	if got := m.AnalysesFailed.Load(); got != 1 {
		t.Errorf("Expected 1 failure, got %d", got)
	}
	if got := m.Unresolved.Load(); got != 2 {
		t.Errorf("Expected 2 unresolved references, got %d", got)
	}
	if got := m.AverageLatency(); got != 2000 {
		t.Errorf("Expected average latency 2000us, got %f", got)
	}
}

func TestAverageLatencyEmpty(t *testing.T) {
	if got := New().AverageLatency(); got != 0 {
		t.Errorf("Expected 0, got %f", got)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := New()
	m.RecordAnalysis("INSERT", time.Millisecond, 1)
	m.RecordCache(true)
	m.RecordCache(false)
	m.RecordCache(false)

	var buf bytes.Buffer
	m.WritePrometheus(&buf)
	out := buf.String()

	for _, want := range []string{
		"sqlshape_analyses_total 1\n",
		"sqlshape_analyses_by_kind_total{kind=\"INSERT\"} 1\n",
		"sqlshape_unresolved_references_total 1\n",
		"sqlshape_cache_hits_total 1\n",
		"sqlshape_cache_misses_total 2\n",
		"# TYPE sqlshape_analyses_total counter\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestServerHandler(t *testing.T) {
	m := New()
	m.RecordAnalysis("UPDATE", 0, 0)
	s := NewServer("", m)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain content type, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "sqlshape_analyses_by_kind_total{kind=\"UPDATE\"} 1") {
		t.Errorf("Expected UPDATE counter in body, got %s", rec.Body.String())
	}
}

func TestServerDisabled(t *testing.T) {
	s := NewServer("", New())
	if err := s.Start(); err != nil {
		t.Fatalf("Expected no error for disabled server, got %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Expected no error stopping disabled server, got %v", err)
	}
}

func TestServerHandle(t *testing.T) {
	s := NewServer("", New())
	s.Handle("/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}
