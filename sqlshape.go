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
Package sqlshape statically analyzes SQL statements against a schema.

Given the text of one SELECT, INSERT, UPDATE or DELETE statement and a
schema dictionary, it reports without executing anything:

  - the return shape: the ordered, typed fields of a result row for
    SELECT, or the STATUS scalar for statements that modify data;
  - the parameter shape: one type per ? placeholder, in textual order.

Example:

	schema, err := sqlshape.ParseSchema(`
	    CREATE TABLE users (id INT, name TEXT, email TEXT);
	`)
	if err != nil {
	    log.Fatal(err)
	}
	a, err := sqlshape.Analyze("SELECT id, name FROM users WHERE email = ?", schema)
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(a.Returns) // {id: INT, name: TEXT}
	fmt.Println(a.Params)  // [TEXT]

References to unknown tables or columns do not fail the analysis; they
resolve to UNKNOWN and are listed in Analysis.Diagnostics. Statements
outside the supported grammar fail with an *Error whose Code is
ErrCodeUnsupportedStatement or ErrCodeMalformedClause.
*/
package sqlshape

import (
	ferrors "sqlshape/internal/errors"
	"sqlshape/internal/sql"
)

// Re-exported types.
type (
	Analysis    = sql.Analysis
	ReturnShape = sql.ReturnShape
	Field       = sql.Field
	ColumnType  = sql.ColumnType
	Schema      = sql.Schema
	Table       = sql.Table
	Column      = sql.Column
	Kind        = sql.Kind
	Analyzer    = sql.Analyzer
	Options     = sql.Options
	Error       = ferrors.Error
	ErrorCode   = ferrors.ErrorCode
)

// Error codes callers are expected to handle.
const (
	ErrCodeUnsupportedStatement = ferrors.ErrCodeUnsupportedStatement
	ErrCodeMalformedClause      = ferrors.ErrCodeMalformedClause
	ErrCodeUnresolvedTable      = ferrors.ErrCodeUnresolvedTable
	ErrCodeUnresolvedColumn     = ferrors.ErrCodeUnresolvedColumn
)

// Common column types.
const (
	TypeUnknown = sql.TypeUnknown
	TypeStatus  = sql.TypeStatus
)

// Analyze parses statement and resolves it against schema.
func Analyze(statement string, schema *Schema) (*Analysis, error) {
	return sql.Analyze(statement, schema)
}

// NewSchema creates an empty schema; add tables with Schema.AddTable.
func NewSchema() *Schema {
	return sql.NewSchema()
}

// ParseSchema builds a schema from CREATE TABLE statements.
func ParseSchema(ddl string) (*Schema, error) {
	return sql.ParseSchema(ddl)
}

// NewAnalyzer creates a reusable analyzer with optional caching and
// strict resolution.
func NewAnalyzer(schema *Schema, opts Options) *Analyzer {
	return sql.NewAnalyzer(schema, opts)
}

// CodeOf returns the error code carried by err, or 0.
func CodeOf(err error) ErrorCode {
	return ferrors.CodeOf(err)
}
