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

package sqlshape

import (
	"testing"
)

func TestFacadeAnalyze(t *testing.T) {
	schema, err := ParseSchema(`CREATE TABLE users (id INT, name TEXT, email TEXT);`)
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}

	a, err := Analyze("SELECT id, name FROM users WHERE email = ?", schema)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got := a.Returns.String(); got != "{id: INT, name: TEXT}" {
		t.Errorf("Expected {id: INT, name: TEXT}, got %s", got)
	}
	if len(a.Params) != 1 || a.Params[0] != "TEXT" {
		t.Errorf("Expected [TEXT], got %v", a.Params)
	}
}

func TestFacadeErrors(t *testing.T) {
	schema := NewSchema()

	_, err := Analyze("TRUNCATE users", schema)
	if CodeOf(err) != ErrCodeUnsupportedStatement {
		t.Errorf("Expected code %d, got %d", ErrCodeUnsupportedStatement, CodeOf(err))
	}

	_, err = Analyze("SELECT id", schema)
	if CodeOf(err) != ErrCodeMalformedClause {
		t.Errorf("Expected code %d, got %d", ErrCodeMalformedClause, CodeOf(err))
	}

	a, err := Analyze("DELETE FROM ghosts WHERE id = ?", schema)
	if err != nil {
		t.Fatalf("Expected unresolved table to be a diagnostic, got %v", err)
	}
	if !a.Returns.Status {
		t.Error("Expected STATUS return shape")
	}
	if len(a.Params) != 1 || a.Params[0] != TypeUnknown {
		t.Errorf("Expected [UNKNOWN], got %v", a.Params)
	}
	if len(a.Diagnostics) != 1 || a.Diagnostics[0].Code != ErrCodeUnresolvedTable {
		t.Errorf("Expected one unresolved table diagnostic, got %v", a.Diagnostics)
	}
}

func TestFacadeStrictAnalyzer(t *testing.T) {
	schema := NewSchema()
	if err := schema.AddTable("users", Column{Name: "id", Type: "INT"}); err != nil {
		t.Fatalf("AddTable failed: %v", err)
	}

	an := NewAnalyzer(schema, Options{Strict: true})
	_, err := an.Analyze("SELECT nickname FROM users")
	if CodeOf(err) != ErrCodeUnresolvedColumn {
		t.Errorf("Expected code %d in strict mode, got %v", ErrCodeUnresolvedColumn, err)
	}
}
