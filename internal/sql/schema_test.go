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
	"testing"

	ferrors "sqlshape/internal/errors"
)

func TestParseSchema(t *testing.T) {
	schema, err := ParseSchema(`
		-- application schema
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTO_INCREMENT,
			name VARCHAR(100) NOT NULL,
			email CHARACTER VARYING(255) UNIQUE,
			active BOOL DEFAULT TRUE,
			balance DECIMAL(10, 2),
			score DOUBLE PRECISION,
			` + "`key`" + ` TEXT,
			location POINT,
			PRIMARY KEY (id),
			UNIQUE (email),
			KEY idx_name (name),
			CONSTRAINT fk_x FOREIGN KEY (id) REFERENCES other (id)
		) ENGINE=InnoDB;

		CREATE TEMPORARY TABLE app.sessions (token UUID, user_id BIGINT);
		CREATE INDEX idx_email ON users (email);
		INSERT INTO users (id, name) VALUES (1, 'root');
	`)
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}

	if schema.Len() != 2 {
		t.Fatalf("Expected 2 tables, got %d: %v", schema.Len(), schema.TableNames())
	}

	users, ok := schema.Table("users")
	if !ok {
		t.Fatal("Expected table users")
	}
	expected := []Column{
		{"id", TypeINT},
		{"name", TypeVARCHAR},
		{"email", TypeVARCHAR},
		{"active", TypeBOOLEAN},
		{"balance", TypeDECIMAL},
		{"score", TypeDOUBLE},
		{"key", TypeTEXT},
		{"location", ColumnType("POINT")},
	}
	if len(users.Columns) != len(expected) {
		t.Fatalf("Expected %d columns, got %d: %v", len(expected), len(users.Columns), users.ColumnNames())
	}
	for i, want := range expected {
		if got := users.Columns[i]; got != want {
			t.Errorf("Column %d: expected %v, got %v", i, want, got)
		}
	}

	sessions, ok := schema.Table("sessions")
	if !ok {
		t.Fatal("Expected qualifier to be dropped from app.sessions")
	}
	if c, _ := sessions.Column("user_id"); c.Type != TypeBIGINT {
		t.Errorf("Expected BIGINT, got %s", c.Type)
	}
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		code   ferrors.ErrorCode
	}{
		{"No columns", "CREATE TABLE t ()", ferrors.ErrCodeInvalidSchema},
		{"Missing type", "CREATE TABLE t (id)", ferrors.ErrCodeInvalidSchema},
		{"Missing paren", "CREATE TABLE t id INT", ferrors.ErrCodeInvalidSchema},
		{"Unbalanced", "CREATE TABLE t (id INT", ferrors.ErrCodeInvalidSchema},
		{"Missing name", "CREATE TABLE (id INT)", ferrors.ErrCodeInvalidSchema},
		{"Empty definition", "CREATE TABLE t (id INT,, name TEXT)", ferrors.ErrCodeInvalidSchema},
		{"Duplicate table", "CREATE TABLE t (id INT); CREATE TABLE t (id INT)", ferrors.ErrCodeDuplicateTable},
		{"Duplicate column", "CREATE TABLE t (id INT, id TEXT)", ferrors.ErrCodeDuplicateColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchema(tt.script)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if code := ferrors.CodeOf(err); code != tt.code {
				t.Errorf("Expected code %d, got %d (%v)", tt.code, code, err)
			}
		})
	}
}

func TestSchemaAddTable(t *testing.T) {
	s := NewSchema()
	if err := s.AddTable("users", Column{"id", TypeINT}, Column{"note", ""}); err != nil {
		t.Fatalf("AddTable failed: %v", err)
	}

	users, _ := s.Table("users")
	if c, ok := users.Column("note"); !ok || c.Type != TypeUnknown {
		t.Errorf("Expected untyped column to be UNKNOWN, got %v", c)
	}
	if _, ok := users.Column("ID"); ok {
		t.Error("Expected column lookup to be case-sensitive")
	}
	if _, ok := s.Table("Users"); ok {
		t.Error("Expected table lookup to be case-sensitive")
	}

	if err := s.AddTable(""); ferrors.CodeOf(err) != ferrors.ErrCodeInvalidSchema {
		t.Errorf("Expected invalid schema error, got %v", err)
	}
	if err := s.AddTable("t", Column{"", TypeINT}); ferrors.CodeOf(err) != ferrors.ErrCodeInvalidSchema {
		t.Errorf("Expected invalid schema error, got %v", err)
	}
	if err := s.AddTable("users"); ferrors.CodeOf(err) != ferrors.ErrCodeDuplicateTable {
		t.Errorf("Expected duplicate table error, got %v", err)
	}
}

func TestSchemaOrder(t *testing.T) {
	s := NewSchema()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.AddTable(name, Column{"id", TypeINT}); err != nil {
			t.Fatalf("AddTable failed: %v", err)
		}
	}
	names := s.TableNames()
	expected := []string{"zeta", "alpha", "mid"}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Table %d: expected %s, got %s", i, expected[i], names[i])
		}
	}
	if tables := s.Tables(); tables[0].Name != "zeta" {
		t.Errorf("Expected first table zeta, got %s", tables[0].Name)
	}
}

func TestSchemaFingerprint(t *testing.T) {
	build := func(script string) *Schema {
		s, err := ParseSchema(script)
		if err != nil {
			t.Fatalf("ParseSchema failed: %v", err)
		}
		return s
	}

	a := build("CREATE TABLE users (id INT, name TEXT)")
	b := build("create table users (\n  id integer,\n  name text\n)")
	c := build("CREATE TABLE users (name TEXT, id INT)")
	d := build("CREATE TABLE users (id INT, name VARCHAR(10))")

	if len(a.Fingerprint()) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a.Fingerprint()))
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("Expected equivalent declarations to share a fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("Expected column order to change the fingerprint")
	}
	if a.Fingerprint() == d.Fingerprint() {
		t.Error("Expected column types to change the fingerprint")
	}
	if NewSchema().Fingerprint() == a.Fingerprint() {
		t.Error("Expected empty schema fingerprint to differ")
	}

	// Length prefixes keep ("ab", "c") apart from ("a", "bc").
	x := NewSchema()
	_ = x.AddTable("ab", Column{"c", TypeINT})
	y := NewSchema()
	_ = y.AddTable("a", Column{"bc", TypeINT})
	if x.Fingerprint() == y.Fingerprint() {
		t.Error("Expected different names to produce different fingerprints")
	}
}

func TestSchemaFromMap(t *testing.T) {
	s, err := SchemaFromMap(map[string]map[string]ColumnType{
		"users": {"name": TypeTEXT, "id": TypeINT},
		"posts": {"title": TypeTEXT},
	})
	if err != nil {
		t.Fatalf("SchemaFromMap failed: %v", err)
	}
	if names := s.TableNames(); names[0] != "posts" || names[1] != "users" {
		t.Errorf("Expected tables in lexical order, got %v", names)
	}
	users, _ := s.Table("users")
	if cols := users.ColumnNames(); cols[0] != "id" || cols[1] != "name" {
		t.Errorf("Expected columns in lexical order, got %v", cols)
	}
}

func TestNormalizeType(t *testing.T) {
	tests := map[string]ColumnType{
		"integer":  TypeINT,
		" Int ":    TypeINT,
		"bool":     TypeBOOLEAN,
		"numeric":  TypeDECIMAL,
		"json":     TypeJSONB,
		"geometry": ColumnType("GEOMETRY"),
	}
	for input, expected := range tests {
		if got := NormalizeType(input); got != expected {
			t.Errorf("NormalizeType(%q): expected %s, got %s", input, expected, got)
		}
	}
}
