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
Package sql contains the Resolver component.

Resolver Overview:
==================

The Resolver is the last stage of the pipeline. It maps a parsed Statement
onto a Schema and produces the two shapes:

  - The return shape: for SELECT, the ordered fields of one row; for
    INSERT, UPDATE and DELETE, the STATUS scalar.
  - The parameter shape: one type per placeholder, in textual order.

Resolution Rules:
=================

  - users.id resolves through the table (or alias) named by the qualifier.
  - A bare id probes the statement's tables in listed order; the first
    table that has the column wins.
  - An unqualified * expands to the primary table's columns in declared
    order, even when other tables are joined.
  - users.* expands to that table's columns.
  - The field name is the alias if present, else the bare column name. If
    two fields share a name the later one wins; the field keeps the
    position where the name first appeared.

References that cannot be resolved become UNKNOWN and are reported as
diagnostics. They never abort the analysis, so the shapes always have one
entry per reference and one per placeholder.
*/
package sql

import (
	"fmt"
	"strings"

	ferrors "sqlshape/internal/errors"
)

// Field is one named, typed column of a result row.
type Field struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// ReturnShape is the shape of a statement's result: ordered row fields for
// SELECT, or the STATUS scalar for everything else.
type ReturnShape struct {
	Status bool    `json:"status,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

// StatusShape is the return shape of INSERT, UPDATE and DELETE.
var StatusShape = ReturnShape{Status: true}

// Field looks up a field by name.
func (r ReturnShape) Field(name string) (ColumnType, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
}

// Names returns the field names in order.
func (r ReturnShape) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// String renders the shape as {id: INT, name: TEXT} or STATUS.
func (r ReturnShape) String() string {
	if r.Status {
		return string(TypeStatus)
	}
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// set adds a field; a name seen before has its type replaced in place.
func (r *ReturnShape) set(name string, t ColumnType) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Type = t
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Type: t})
}

// Analysis is the result of analyzing one statement.
type Analysis struct {
	Kind        Kind
	Returns     ReturnShape
	Params      []ColumnType
	Diagnostics []*ferrors.Error
}

// HasUnknown reports whether any field or parameter is UNKNOWN.
func (a *Analysis) HasUnknown() bool {
	for _, f := range a.Returns.Fields {
		if f.Type.IsUnknown() {
			return true
		}
	}
	for _, p := range a.Params {
		if p.IsUnknown() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so cached analyses can be handed out safely.
func (a *Analysis) Clone() *Analysis {
	c := &Analysis{
		Kind:    a.Kind,
		Returns: ReturnShape{Status: a.Returns.Status},
	}
	if a.Returns.Fields != nil {
		c.Returns.Fields = append([]Field(nil), a.Returns.Fields...)
	}
	if a.Params != nil {
		c.Params = append([]ColumnType(nil), a.Params...)
	}
	for _, d := range a.Diagnostics {
		dup := *d
		c.Diagnostics = append(c.Diagnostics, &dup)
	}
	return c
}

// scopeTable is a table reference together with its schema entry; table
// is nil when the name is not in the schema.
type scopeTable struct {
	ref   TableRef
	table *Table
}

// resolver carries the state of one resolution.
type resolver struct {
	schema *Schema
	scope  []scopeTable
	diags  []*ferrors.Error
}

// Resolve maps stmt onto schema. The only error it returns is a
// MalformedClause for an INSERT without a column list whose value count
// does not match the table; unresolved names are diagnostics.
func Resolve(stmt Statement, schema *Schema) (*Analysis, error) {
	r := &resolver{schema: schema}
	a := &Analysis{Kind: stmt.Kind(), Params: []ColumnType{}}

	switch s := stmt.(type) {
	case *SelectStmt:
		r.enter(s.Tables...)
		a.Returns = r.selectShape(s)
		a.Params = r.params(s.Params, nil)
	case *InsertStmt:
		r.enter(s.Table)
		a.Returns = StatusShape
		r.lookupColumns(s.Columns, s.Params)
		if len(s.Columns) == 0 {
			if t := r.scope[0].table; t != nil && len(t.Columns) != len(s.Values) {
				return nil, ferrors.MalformedClause("VALUES",
					fmt.Sprintf("table %s has %d columns but %d values were given", t.Name, len(t.Columns), len(s.Values))).
					At(s.Table.Name, s.Table.Pos)
			}
		}
		a.Params = r.params(s.Params, r.scope[0].table)
	case *UpdateStmt:
		r.enter(s.Table)
		a.Returns = StatusShape
		r.lookupColumns(s.Assigned, s.Params)
		a.Params = r.params(s.Params, nil)
	case *DeleteStmt:
		r.enter(s.Table)
		a.Returns = StatusShape
		a.Params = r.params(s.Params, nil)
	default:
		return nil, ferrors.UnsupportedStatement(fmt.Sprintf("%T", stmt))
	}

	a.Diagnostics = r.diags
	return a, nil
}

// enter puts tables in scope, reporting each unknown table once.
func (r *resolver) enter(refs ...TableRef) {
	for _, ref := range refs {
		t, ok := r.schema.Table(ref.Name)
		if !ok {
			r.diags = append(r.diags, ferrors.UnresolvedTable(ref.Name).At(ref.Name, ref.Pos))
		}
		r.scope = append(r.scope, scopeTable{ref: ref, table: t})
	}
}

// find returns the scope entry a qualifier names.
func (r *resolver) find(qualifier string) (scopeTable, bool) {
	for _, st := range r.scope {
		if st.ref.Matches(qualifier) {
			return st, true
		}
	}
	return scopeTable{}, false
}

// lookup resolves a column reference to its type.
func (r *resolver) lookup(ref ColumnRef) ColumnType {
	if ref.Table != "" {
		st, ok := r.find(ref.Table)
		if !ok {
			r.diags = append(r.diags, ferrors.UnresolvedTable(ref.Table).At(ref.String(), ref.Pos))
			return TypeUnknown
		}
		if st.table == nil {
			// Already reported when the table entered scope.
			return TypeUnknown
		}
		if col, ok := st.table.Column(ref.Column); ok {
			return col.Type
		}
		r.diags = append(r.diags, ferrors.UnresolvedColumn(ref.Column, st.table.Name).At(ref.String(), ref.Pos))
		return TypeUnknown
	}

	unknownTable := false
	for _, st := range r.scope {
		if st.table == nil {
			unknownTable = true
			continue
		}
		if col, ok := st.table.Column(ref.Column); ok {
			return col.Type
		}
	}
	if unknownTable {
		// The column may belong to the unknown table, which is already
		// reported.
		return TypeUnknown
	}
	r.diags = append(r.diags, ferrors.UnresolvedColumn(ref.Column, "").At(ref.Column, ref.Pos))
	return TypeUnknown
}

// lookupColumns resolves a column list, skipping columns that a correlated
// placeholder names; those are reported when the parameters resolve.
func (r *resolver) lookupColumns(cols []ColumnRef, ps []Placeholder) {
	bound := make(map[int]struct{}, len(ps))
	for _, p := range ps {
		if p.Correlated {
			bound[p.Column.Pos] = struct{}{}
		}
	}
	for _, c := range cols {
		if _, ok := bound[c.Pos]; !ok {
			r.lookup(c)
		}
	}
}

// selectShape resolves the select list into row fields.
func (r *resolver) selectShape(s *SelectStmt) ReturnShape {
	var shape ReturnShape
	for _, e := range s.Exprs {
		switch e.Kind {
		case ExprStar:
			r.expandStar(&shape, e)
		case ExprColumn:
			shape.set(e.Name(), r.lookup(e.Column))
		case ExprAggregate:
			shape.set(e.Name(), r.aggregateType(e))
		default:
			shape.set(e.Name(), TypeUnknown)
		}
	}
	if shape.Fields == nil {
		shape.Fields = []Field{}
	}
	return shape
}

// expandStar adds the columns of the primary table (for *) or of the
// named table (for users.*).
func (r *resolver) expandStar(shape *ReturnShape, e SelectExpr) {
	var st scopeTable
	if e.Column.Table == "" {
		st = r.scope[0]
	} else {
		var ok bool
		st, ok = r.find(e.Column.Table)
		if !ok {
			r.diags = append(r.diags, ferrors.UnresolvedTable(e.Column.Table).At(e.Text, e.Pos))
			shape.set(e.Text, TypeUnknown)
			return
		}
	}
	if st.table == nil {
		shape.set(e.Text, TypeUnknown)
		return
	}
	for _, c := range st.table.Columns {
		shape.set(c.Name, c.Type)
	}
}

// aggregateType types COUNT as BIGINT and MIN/MAX as their argument.
// SUM, AVG and GROUP_CONCAT depend on the engine and stay UNKNOWN.
func (r *resolver) aggregateType(e SelectExpr) ColumnType {
	switch e.Func {
	case "COUNT":
		return TypeBIGINT
	case "MIN", "MAX":
		if e.HasArg {
			return r.lookup(e.Column)
		}
	}
	return TypeUnknown
}

// params resolves placeholders in order. insertTable is the INSERT target,
// used for placeholders positioned by value index.
func (r *resolver) params(ps []Placeholder, insertTable *Table) []ColumnType {
	out := make([]ColumnType, 0, len(ps))
	for _, p := range ps {
		switch {
		case p.Type != "":
			out = append(out, p.Type)
		case p.Correlated:
			out = append(out, r.lookup(p.Column))
		case p.ValueIndex >= 0 && insertTable != nil && p.ValueIndex < len(insertTable.Columns):
			out = append(out, insertTable.Columns[p.ValueIndex].Type)
		default:
			out = append(out, TypeUnknown)
		}
	}
	return out
}
