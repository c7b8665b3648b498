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
Package sql contains the Schema dictionary used for resolution.

Schema Overview:
================

A Schema maps table names to ordered column lists. Column order matters:
SELECT * expands to a table's columns in declared order, and an INSERT
without a column list aligns its values with that order.

Names are matched exactly; table and column names keep their case.

A Schema is built once (NewSchema + AddTable, ParseSchema, or
SchemaFromMap) and then only read. Analyses never modify it, so one
Schema can be shared by any number of concurrent analyses as long as no
tables are added while they run.

Fingerprint:
============

Every Schema carries a BLAKE2b-256 fingerprint over its tables, columns
and types in declared order. Two schemas with the same declarations have
the same fingerprint, which makes it a schema-version identifier for
caching analyses.
*/
package sql

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"

	"golang.org/x/crypto/blake2b"

	ferrors "sqlshape/internal/errors"
)

// Column is one declared column.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a named, ordered list of columns.
type Table struct {
	Name    string
	Columns []Column
	index   map[string]int
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// ColumnNames returns the column names in declared order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Schema is the dictionary of tables an analysis resolves against.
type Schema struct {
	tables      map[string]*Table
	order       []string
	hash        hash.Hash
	fingerprint string
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	h, _ := blake2b.New256(nil) // only fails for oversized keys
	s := &Schema{
		tables: make(map[string]*Table),
		hash:   h,
	}
	s.fingerprint = hex.EncodeToString(h.Sum(nil))
	return s
}

// AddTable declares a table. Table and column names must be unique.
func (s *Schema) AddTable(name string, cols ...Column) error {
	if name == "" {
		return ferrors.InvalidSchema("table name cannot be empty")
	}
	if _, exists := s.tables[name]; exists {
		return ferrors.DuplicateTable(name)
	}

	t := &Table{
		Name:    name,
		Columns: make([]Column, 0, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		if c.Name == "" {
			return ferrors.InvalidSchema("column name cannot be empty in table " + name)
		}
		if _, exists := t.index[c.Name]; exists {
			return ferrors.DuplicateColumn(c.Name, name)
		}
		if c.Type == "" {
			c.Type = TypeUnknown
		}
		t.index[c.Name] = len(t.Columns)
		t.Columns = append(t.Columns, c)
	}

	s.tables[name] = t
	s.order = append(s.order, name)
	s.writeFingerprint(t)
	return nil
}

// writeFingerprint folds a table into the running digest. Every string is
// length-prefixed so that ("ab","c") and ("a","bc") hash differently.
func (s *Schema) writeFingerprint(t *Table) {
	var n [binary.MaxVarintLen64]byte
	writeLen := func(l int) {
		s.hash.Write(n[:binary.PutUvarint(n[:], uint64(l))])
	}
	write := func(v string) {
		writeLen(len(v))
		s.hash.Write([]byte(v))
	}
	write(t.Name)
	writeLen(len(t.Columns))
	for _, c := range t.Columns {
		write(c.Name)
		write(string(c.Type))
	}
	s.fingerprint = hex.EncodeToString(s.hash.Sum(nil))
}

// Table looks up a table by name.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Tables returns the tables in declared order.
func (s *Schema) Tables() []*Table {
	out := make([]*Table, len(s.order))
	for i, name := range s.order {
		out[i] = s.tables[name]
	}
	return out
}

// TableNames returns the table names in declared order.
func (s *Schema) TableNames() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of tables.
func (s *Schema) Len() int {
	return len(s.order)
}

// Fingerprint returns the hex BLAKE2b-256 digest of the declarations.
func (s *Schema) Fingerprint() string {
	return s.fingerprint
}

// SchemaFromMap builds a schema from a plain mapping of table name to
// column name to type. Maps carry no order, so tables and columns are
// declared in lexical order.
func SchemaFromMap(m map[string]map[string]ColumnType) (*Schema, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	s := NewSchema()
	for _, name := range names {
		colNames := make([]string, 0, len(m[name]))
		for col := range m[name] {
			colNames = append(colNames, col)
		}
		sort.Strings(colNames)

		cols := make([]Column, len(colNames))
		for i, col := range colNames {
			cols[i] = Column{Name: col, Type: m[name][col]}
		}
		if err := s.AddTable(name, cols...); err != nil {
			return nil, err
		}
	}
	return s, nil
}
