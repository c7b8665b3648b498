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

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	ferrors "sqlshape/internal/errors"
	"sqlshape/internal/sql"
)

func testResults(t *testing.T) []sql.BatchResult {
	t.Helper()
	schema, err := sql.ParseSchema(`CREATE TABLE users (id INT, name TEXT);`)
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}
	var results []sql.BatchResult
	for i, stmt := range []string{
		"SELECT id, name FROM users WHERE id = ?",
		"SELECT ghost FROM users",
		"DROP TABLE users",
	} {
		a, err := sql.Analyze(stmt, schema)
		results = append(results, sql.BatchResult{Index: i, Statement: stmt, Analysis: a, Err: err})
	}
	return results
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	writeText(&buf, testResults(t))
	out := buf.String()

	for _, want := range []string{
		"-- SELECT id, name FROM users WHERE id = ?",
		"returns: {id: INT, name: TEXT}",
		"params:  [INT]",
		"returns: {ghost: UNKNOWN}",
		"warning: ",
		"[0A000]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, testResults(t)); err != nil {
		t.Fatalf("writeJSON failed: %v", err)
	}

	var out []jsonResult
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(out))
	}

	first := out[0]
	if first.Kind != "SELECT" {
		t.Errorf("Expected kind SELECT, got %q", first.Kind)
	}
	if first.Returns == nil || len(first.Returns.Fields) != 2 {
		t.Fatalf("Expected 2 fields, got %+v", first.Returns)
	}
	if len(first.Params) != 1 || first.Params[0] != sql.TypeINT {
		t.Errorf("Expected params [INT], got %v", first.Params)
	}

	if len(out[1].Diagnostics) != 1 {
		t.Errorf("Expected 1 diagnostic, got %d", len(out[1].Diagnostics))
	}

	last := out[2]
	if last.Error == nil {
		t.Fatal("Expected an error for DROP TABLE")
	}
	if last.Error.Code != int(ferrors.ErrCodeUnsupportedStatement) {
		t.Errorf("Expected code %d, got %d", ferrors.ErrCodeUnsupportedStatement, last.Error.Code)
	}
	if last.Error.Pos == nil {
		t.Error("Expected error position to be set")
	}
}

func TestFormatParams(t *testing.T) {
	if got := formatParams(nil); got != "[]" {
		t.Errorf("Expected [], got %s", got)
	}
	got := formatParams([]sql.ColumnType{sql.TypeINT, sql.TypeUnknown})
	if got != "[INT, UNKNOWN]" {
		t.Errorf("Expected [INT, UNKNOWN], got %s", got)
	}
}
