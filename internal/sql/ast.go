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
Package sql provides the SQL analysis pipeline for sqlshape.

Abstract Syntax Tree (AST) Overview:
====================================

The AST is what the statement parsers hand to the resolver. It keeps only
what shape inference needs: table references, select expressions, the
columns written by INSERT and UPDATE, and every placeholder in textual
order together with the column it is compared against.

AST Node Hierarchy:
===================

	Statement (interface)
	├── SelectStmt
	│   ├── SelectExpr
	│   └── TableRef
	├── InsertStmt
	│   └── Value
	├── UpdateStmt
	└── DeleteStmt

	Placeholder (shared by all statements)

The set of statements is closed: the unexported statementNode() marker
keeps other packages from adding variants, and the resolver switches over
the four concrete types exhaustively.

Example AST:
============

For the SQL: SELECT id, name AS fullName FROM users WHERE id = ?

	SelectStmt{
	    Exprs:  []SelectExpr{{Kind: ExprColumn, Column: id}, {Kind: ExprColumn, Column: name, Alias: "fullName"}},
	    Tables: []TableRef{{Name: "users"}},
	    Params: []Placeholder{{Clause: "WHERE", Column: id, Correlated: true}},
	}
*/
package sql

import "strings"

// Kind identifies which statement parser applies to a token stream.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
)

// String returns the statement keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindDelete:
		return "DELETE"
	default:
		return "UNRECOGNIZED"
	}
}

// ReturnsRows reports whether statements of this kind return rows. INSERT,
// UPDATE and DELETE always return the STATUS scalar.
func (k Kind) ReturnsRows() bool {
	return k == KindSelect
}

// Statement represents a parsed statement.
type Statement interface {
	Kind() Kind
	// Placeholders returns every placeholder in textual order.
	Placeholders() []Placeholder
	statementNode()
}

// ColumnRef is a bare (id) or qualified (users.id) column reference.
type ColumnRef struct {
	Table  string // Qualifier as written (table name or alias); empty when bare
	Column string
	Pos    int
}

// NewColumnRef splits a dotted identifier token into qualifier and column.
// For db.table.column the qualifier is the table part.
func NewColumnRef(tok Token) ColumnRef {
	ref := ColumnRef{Column: tok.Value, Pos: tok.Pos}
	if i := strings.LastIndexByte(tok.Value, '.'); i >= 0 {
		qualifier := tok.Value[:i]
		if j := strings.LastIndexByte(qualifier, '.'); j >= 0 {
			qualifier = qualifier[j+1:]
		}
		ref.Table = qualifier
		ref.Column = tok.Value[i+1:]
	}
	return ref
}

// String returns the reference as written.
func (c ColumnRef) String() string {
	if c.Table == "" {
		return c.Column
	}
	return c.Table + "." + c.Column
}

// TableRef is one entry of a FROM list or a statement's target table.
type TableRef struct {
	Name  string
	Alias string
	Pos   int
}

// Matches reports whether qualifier names this table, either by alias or
// by name.
func (t TableRef) Matches(qualifier string) bool {
	return qualifier == t.Alias || qualifier == t.Name
}

// Placeholder is one ? in the statement.
type Placeholder struct {
	Pos    int    // Byte offset of the ?
	Clause string // Clause the placeholder appears in (WHERE, SET, VALUES...)

	// Column is the column the placeholder is compared against or
	// assigned to. It is meaningful only when Correlated is set.
	Column     ColumnRef
	Correlated bool

	// Type, when set, fixes the placeholder's type regardless of column
	// (LIMIT ? and OFFSET ? are always INT).
	Type ColumnType

	// ValueIndex is the position in an INSERT row whose column list was
	// omitted, resolved against the table's declared columns. -1 otherwise.
	ValueIndex int
}

// ExprKind classifies a select expression.
type ExprKind int

const (
	ExprStar      ExprKind = iota // * or users.*
	ExprColumn                    // id or users.id
	ExprAggregate                 // COUNT(*), MAX(id)...
	ExprOther                     // literals, arithmetic, other functions
)

// SelectExpr is one element of a select list.
type SelectExpr struct {
	Kind ExprKind

	// Column is the referenced column for ExprColumn, the qualifier of a
	// qualified star (Column.Table) and the single column argument of an
	// aggregate when it has one.
	Column ColumnRef
	HasArg bool

	Func  string // Upper-cased aggregate name
	Text  string // Expression text as written, without alias
	Alias string
	Pos   int
}

// Name returns the output field name: the alias if present, else the bare
// column name, else the expression text.
func (e SelectExpr) Name() string {
	if e.Alias != "" {
		return e.Alias
	}
	if e.Kind == ExprColumn {
		return e.Column.Column
	}
	return e.Text
}

// SelectStmt represents a SELECT statement.
//
// SQL Syntax:
//
//	SELECT [DISTINCT] expr [[AS] alias], ...
//	FROM table [[AS] alias] [[INNER|LEFT|...] JOIN table [[AS] alias] [ON cond | USING (cols)]]...
//	[WHERE cond] [GROUP BY ...] [HAVING cond] [ORDER BY ...] [LIMIT n [OFFSET m]]
type SelectStmt struct {
	Distinct bool
	Exprs    []SelectExpr
	Tables   []TableRef // Tables[0] is the primary table
	Params   []Placeholder
}

func (s *SelectStmt) Kind() Kind                  { return KindSelect }
func (s *SelectStmt) Placeholders() []Placeholder { return s.Params }
func (s *SelectStmt) statementNode()              {}

// Value is one element of an INSERT value list.
type Value struct {
	Tokens []Token
}

// IsPlaceholder reports whether the value is exactly ?.
func (v Value) IsPlaceholder() bool {
	return len(v.Tokens) == 1 && v.Tokens[0].Type == TokenPlaceholder
}

// String returns the value text.
func (v Value) String() string {
	return Text(v.Tokens)
}

// InsertStmt represents an INSERT statement.
//
// SQL Syntax:
//
//	INSERT [LOW_PRIORITY | DELAYED | HIGH_PRIORITY] [IGNORE] [INTO] table
//	    [(col, ...)] {VALUES | VALUE} (value, ...)
//
// Columns is empty when the column list is omitted; values then align with
// the table's declared columns.
type InsertStmt struct {
	Table   TableRef
	Columns []ColumnRef
	Values  []Value
	Params  []Placeholder
}

func (s *InsertStmt) Kind() Kind                  { return KindInsert }
func (s *InsertStmt) Placeholders() []Placeholder { return s.Params }
func (s *InsertStmt) statementNode()              {}

// UpdateStmt represents an UPDATE statement.
//
// SQL Syntax:
//
//	UPDATE [LOW_PRIORITY] [IGNORE] table [[AS] alias] SET col = value, ...
//	    [WHERE cond] [ORDER BY ...] [LIMIT n]
type UpdateStmt struct {
	Table    TableRef
	Assigned []ColumnRef
	Params   []Placeholder
}

func (s *UpdateStmt) Kind() Kind                  { return KindUpdate }
func (s *UpdateStmt) Placeholders() []Placeholder { return s.Params }
func (s *UpdateStmt) statementNode()              {}

// DeleteStmt represents a DELETE statement.
//
// SQL Syntax:
//
//	DELETE [LOW_PRIORITY] [QUICK] [IGNORE] FROM table [[AS] alias]
//	    [WHERE cond] [ORDER BY ...] [LIMIT n]
type DeleteStmt struct {
	Table  TableRef
	Params []Placeholder
}

func (s *DeleteStmt) Kind() Kind                  { return KindDelete }
func (s *DeleteStmt) Placeholders() []Placeholder { return s.Params }
func (s *DeleteStmt) statementNode()              {}
