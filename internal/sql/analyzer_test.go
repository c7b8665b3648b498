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

package sql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"sqlshape/internal/cache"
	ferrors "sqlshape/internal/errors"
	"sqlshape/internal/logging"
	"sqlshape/internal/metrics"
)

func newTestAnalyzer(t *testing.T, strict bool) (*Analyzer, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	var logs bytes.Buffer
	logging.SetGlobalOutput(&logs)
	t.Cleanup(func() { logging.SetGlobalOutput(logging.DefaultConfig().Output) })

	a := NewAnalyzer(testSchema(t), Options{
		Strict:  strict,
		Cache:   NewAnalysisCache(cache.DefaultConfig()),
		Metrics: m,
	})
	return a, m
}

func TestAnalyzerCaches(t *testing.T) {
	a, m := newTestAnalyzer(t, false)
	stmt := "SELECT id, name FROM users WHERE id = ?"

	first, err := a.Analyze(stmt)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := a.Analyze(stmt)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if first == second {
		t.Error("Expected each caller to get its own copy")
	}
	if first.Returns.String() != second.Returns.String() {
		t.Errorf("Expected equal shapes, got %s and %s", first.Returns, second.Returns)
	}

	stats := a.Cache().Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d and %d", stats.Hits, stats.Misses)
	}
	if m.CacheHits.Load() != 1 || m.CacheMisses.Load() != 1 {
		t.Errorf("Expected cache metrics 1/1, got %d/%d", m.CacheHits.Load(), m.CacheMisses.Load())
	}
	if m.AnalysesTotal.Load() != 1 || m.AnalysesSelect.Load() != 1 {
		t.Errorf("Expected one recorded SELECT analysis, got %d", m.AnalysesTotal.Load())
	}

	// Mutating a returned analysis must not leak into the cache.
	first.Returns.Fields[0].Type = TypeUnknown
	third, _ := a.Analyze(stmt)
	if third.Returns.Fields[0].Type != TypeINT {
		t.Errorf("Expected cached INT, got %s", third.Returns.Fields[0].Type)
	}
}

func TestAnalyzerWithoutCache(t *testing.T) {
	a := NewAnalyzer(testSchema(t), Options{Metrics: metrics.New()})
	if a.Cache() != nil {
		t.Error("Expected no cache")
	}
	if _, err := a.Analyze("SELECT id FROM users"); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if n := a.Invalidate("users"); n != 0 {
		t.Errorf("Expected 0 invalidated, got %d", n)
	}
}

func TestAnalyzerFailures(t *testing.T) {
	a, m := newTestAnalyzer(t, false)

	_, err := a.Analyze("DROP TABLE users")
	if !errors.Is(err, ferrors.ErrUnsupported) {
		t.Errorf("Expected unsupported statement, got %v", err)
	}
	if m.AnalysesFailed.Load() != 1 {
		t.Errorf("Expected 1 failure, got %d", m.AnalysesFailed.Load())
	}
	if a.Cache().Stats().Entries != 0 {
		t.Error("Expected failures not to be cached")
	}
}

func TestAnalyzerStrict(t *testing.T) {
	lenient, _ := newTestAnalyzer(t, false)
	res, err := lenient.Analyze("SELECT ghost FROM users")
	if err != nil {
		t.Fatalf("Expected lenient analysis to succeed, got %v", err)
	}
	if len(res.Diagnostics) != 1 {
		t.Errorf("Expected 1 diagnostic, got %d", len(res.Diagnostics))
	}

	strict, _ := newTestAnalyzer(t, true)
	for i := 0; i < 2; i++ { // second round is served from the cache
		res, err = strict.Analyze("SELECT ghost FROM users")
		if res != nil {
			t.Errorf("Round %d: expected nil analysis, got %v", i, res)
		}
		if ferrors.CodeOf(err) != ferrors.ErrCodeUnresolvedColumn {
			t.Errorf("Round %d: expected unresolved column, got %v", i, err)
		}
	}

	if _, err := strict.Analyze("SELECT id FROM users"); err != nil {
		t.Errorf("Expected clean statement to pass strict mode, got %v", err)
	}
}

func TestAnalyzerInvalidate(t *testing.T) {
	a, _ := newTestAnalyzer(t, false)
	for _, stmt := range []string{
		"SELECT id FROM users",
		"SELECT title FROM posts",
		"SELECT * FROM users JOIN posts ON users.id = posts.userId",
	} {
		if _, err := a.Analyze(stmt); err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
	}

	if n := a.Invalidate("users"); n != 2 {
		t.Errorf("Expected 2 invalidated, got %d", n)
	}
	if n := a.Invalidate("posts"); n != 1 {
		t.Errorf("Expected 1 invalidated, got %d", n)
	}
}

func TestAnalyzerContext(t *testing.T) {
	a, _ := newTestAnalyzer(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.AnalyzeContext(ctx, "SELECT id FROM users"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if _, err := a.AnalyzeBatch(ctx, []string{"SELECT id FROM users"}, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled from batch, got %v", err)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	a, _ := newTestAnalyzer(t, false)
	statements := []string{
		"SELECT id FROM users WHERE name = ?",
		"DROP TABLE users",
		"INSERT INTO users (id, name) VALUES (?, ?)",
		"SELECT ghost FROM users",
	}

	results, err := a.AnalyzeBatch(context.Background(), statements, 3)
	if err != nil {
		t.Fatalf("AnalyzeBatch failed: %v", err)
	}
	if len(results) != len(statements) {
		t.Fatalf("Expected %d results, got %d", len(statements), len(results))
	}

	for i, r := range results {
		if r.Index != i || r.Statement != statements[i] {
			t.Errorf("Result %d: expected statement %q, got %d %q", i, statements[i], r.Index, r.Statement)
		}
	}
	if results[0].Err != nil || results[0].Analysis.Params[0] != TypeTEXT {
		t.Errorf("Expected first statement to analyze, got %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("Expected DROP TABLE to fail")
	}
	if results[2].Err != nil || !results[2].Analysis.Returns.Status {
		t.Errorf("Expected INSERT to return STATUS, got %+v", results[2])
	}
	if results[3].Err != nil || len(results[3].Analysis.Diagnostics) != 1 {
		t.Errorf("Expected one diagnostic, got %+v", results[3])
	}
}

func TestAnalyzeBatchZeroWorkers(t *testing.T) {
	a, _ := newTestAnalyzer(t, false)
	results, err := a.AnalyzeBatch(context.Background(), []string{"SELECT id FROM users"}, 0)
	if err != nil {
		t.Fatalf("AnalyzeBatch failed: %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("Expected success, got %v", results[0].Err)
	}
}

func TestAnalyzerConcurrent(t *testing.T) {
	a, _ := newTestAnalyzer(t, false)

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			stmt := fmt.Sprintf("SELECT id, name FROM users WHERE id = ? LIMIT %d", n%5)
			res, err := a.Analyze(stmt)
			if err != nil {
				errs <- err
				return
			}
			if res.Returns.String() != "{id: INT, name: TEXT}" {
				errs <- fmt.Errorf("unexpected shape %s", res.Returns)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if entries := a.Cache().Stats().Entries; entries != 5 {
		t.Errorf("Expected 5 cached statements, got %d", entries)
	}
}

func TestReferencedTables(t *testing.T) {
	tests := []struct {
		stmt     string
		expected []string
	}{
		{"SELECT * FROM users u JOIN posts p ON u.id = p.userId JOIN users x ON x.id = 1", []string{"users", "posts"}},
		{"INSERT INTO users (id) VALUES (1)", []string{"users"}},
		{"UPDATE posts SET title = 'x'", []string{"posts"}},
		{"DELETE FROM users", []string{"users"}},
	}

	for _, tt := range tests {
		t.Run(tt.stmt, func(t *testing.T) {
			got := ReferencedTables(mustParse(t, tt.stmt))
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range tt.expected {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}
