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
Package sql contains the Analyzer, the entry point of the pipeline.

Analyzer Overview:
==================

Analyze runs the three stages on one statement:

	text --Tokenize--> []Token --Parse--> Statement --Resolve--> *Analysis

It is a pure function of (statement, schema). The Analyzer type wraps it
for long-lived callers and adds:

  - An optional LRU cache keyed by schema fingerprint and statement text
  - Collapsing of concurrent identical analyses (singleflight)
  - Strict mode, where the first unresolved reference is returned as the
    error instead of a diagnostic
  - Logging and metrics for every analysis
  - Bounded concurrent batch analysis (errgroup)

Usage Example:
==============

	schema, _ := sql.ParseSchema(ddl)
	a := sql.NewAnalyzer(schema, sql.Options{
	    Cache: sql.NewAnalysisCache(cache.DefaultConfig()),
	})
	res, err := a.Analyze("SELECT id, name FROM users WHERE id = ?")
	// res.Returns: {id: INT, name: TEXT}
	// res.Params:  [INT]
*/
package sql

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"sqlshape/internal/cache"
	"sqlshape/internal/logging"
	"sqlshape/internal/metrics"
)

// Analyze parses statement and resolves it against schema.
func Analyze(statement string, schema *Schema) (*Analysis, error) {
	stmt, err := Parse(statement)
	if err != nil {
		return nil, err
	}
	return Resolve(stmt, schema)
}

// AnalysisCache caches analyses by cache.Key(fingerprint, statement).
type AnalysisCache = cache.Cache[*Analysis]

// NewAnalysisCache creates an analysis cache.
func NewAnalysisCache(config cache.Config) *AnalysisCache {
	return cache.New[*Analysis](config)
}

// Options configures an Analyzer. The zero value is usable: no cache,
// lenient resolution, the "analyzer" logger and the global metrics.
type Options struct {
	Strict  bool
	Cache   *AnalysisCache
	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

// Analyzer analyzes statements against one schema. It is safe for
// concurrent use as long as the schema is not modified while analyses run.
type Analyzer struct {
	schema  *Schema
	strict  bool
	cache   *AnalysisCache
	logger  *logging.Logger
	metrics *metrics.Metrics
	group   singleflight.Group
}

// NewAnalyzer creates an Analyzer for schema.
func NewAnalyzer(schema *Schema, opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("analyzer")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Get()
	}
	return &Analyzer{
		schema:  schema,
		strict:  opts.Strict,
		cache:   opts.Cache,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Schema returns the schema the analyzer resolves against.
func (a *Analyzer) Schema() *Schema {
	return a.schema
}

// Cache returns the analyzer's cache, or nil.
func (a *Analyzer) Cache() *AnalysisCache {
	return a.cache
}

// Analyze analyzes one statement.
func (a *Analyzer) Analyze(statement string) (*Analysis, error) {
	return a.AnalyzeContext(context.Background(), statement)
}

// AnalyzeContext analyzes one statement, returning ctx.Err() if ctx is
// already done. The returned Analysis belongs to the caller.
func (a *Analyzer) AnalyzeContext(ctx context.Context, statement string) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cache.Key(a.schema.Fingerprint(), statement)
	if a.cache != nil {
		cached, ok := a.cache.Get(key)
		a.metrics.RecordCache(ok)
		if ok {
			return a.finish(cached.Clone())
		}
	}

	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		return a.analyze(key, statement)
	})
	if err != nil {
		return nil, err
	}
	return a.finish(v.(*Analysis).Clone())
}

// analyze runs the pipeline once and records the outcome.
func (a *Analyzer) analyze(key, statement string) (*Analysis, error) {
	actx := logging.NewAnalysisContext(statement)

	stmt, err := Parse(statement)
	if err == nil {
		var res *Analysis
		res, err = Resolve(stmt, a.schema)
		if err == nil {
			kind := res.Kind.String()
			a.metrics.RecordAnalysis(kind, actx.Duration(), len(res.Diagnostics))
			actx.LogComplete(a.logger, kind,
				"fields", len(res.Returns.Fields),
				"params", len(res.Params),
				"unresolved", len(res.Diagnostics))
			if a.cache != nil {
				a.cache.Set(key, res, ReferencedTables(stmt))
			}
			return res, nil
		}
	}

	a.metrics.RecordFailure()
	actx.LogError(a.logger, err)
	return nil, err
}

// finish applies strict mode.
func (a *Analyzer) finish(res *Analysis) (*Analysis, error) {
	if a.strict && len(res.Diagnostics) > 0 {
		return nil, res.Diagnostics[0]
	}
	return res, nil
}

// Invalidate drops cached analyses that reference table.
func (a *Analyzer) Invalidate(table string) int {
	if a.cache == nil {
		return 0
	}
	return a.cache.Invalidate(table)
}

// BatchResult is the outcome of one statement in a batch.
type BatchResult struct {
	Index     int
	Statement string
	Analysis  *Analysis
	Err       error
}

// AnalyzeBatch analyzes statements with at most workers running at once.
// Results are returned in input order. A statement that fails does not
// stop the batch; only cancellation of ctx does, in which case ctx.Err()
// is returned with the results gathered so far.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, statements []string, workers int) ([]BatchResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]BatchResult, len(statements))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range statements {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := a.AnalyzeContext(gctx, s)
			if err != nil && err == gctx.Err() {
				return err
			}
			results[i] = BatchResult{Index: i, Statement: s, Analysis: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// ReferencedTables returns the table names a statement reads or writes,
// in order of appearance.
func ReferencedTables(stmt Statement) []string {
	switch s := stmt.(type) {
	case *SelectStmt:
		names := make([]string, 0, len(s.Tables))
		seen := make(map[string]bool, len(s.Tables))
		for _, t := range s.Tables {
			if !seen[t.Name] {
				seen[t.Name] = true
				names = append(names, t.Name)
			}
		}
		return names
	case *InsertStmt:
		return []string{s.Table.Name}
	case *UpdateStmt:
		return []string{s.Table.Name}
	case *DeleteStmt:
		return []string{s.Table.Name}
	default:
		return nil
	}
}
