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
Package sql contains the Parser component for statement analysis.

Parser Overview:
================

The Parser is the second stage of the pipeline. Instead of a recursive
descent over the whole SQL grammar, each statement parser carves the token
slice into clauses with the slice utilities (SliceBetween, FilterOut,
SplitTopLevel...) and reads only what shape inference needs. Every step is
a single linear pass; nothing backtracks.

Grammar (Simplified):
=====================

	select  := SELECT [DISTINCT] exprs FROM tables [WHERE cond]
	           [GROUP BY ...] [HAVING cond] [ORDER BY ...] [LIMIT n [OFFSET m]]
	exprs   := expr [[AS] alias] (, expr [[AS] alias])*
	tables  := table [[AS] alias] ((JOIN | ,) table [[AS] alias] [ON cond | USING (cols)])*

	insert  := INSERT [LOW_PRIORITY | DELAYED | HIGH_PRIORITY] [IGNORE] [INTO]
	           table [(cols)] {VALUES | VALUE} (values)

	update  := UPDATE [LOW_PRIORITY] [IGNORE] table [[AS] alias] SET assignments
	           [WHERE cond] [ORDER BY ...] [LIMIT n]

	delete  := DELETE [LOW_PRIORITY] [QUICK] [IGNORE] FROM table [[AS] alias]
	           [WHERE cond] [ORDER BY ...] [LIMIT n]

Error Handling:
===============

Parsers fail for the whole statement, never partially:

  - UnsupportedStatement: unknown leading keyword or an unsupported form
    (multi-row VALUES, INSERT ... SET, subqueries, multiple statements).
  - MalformedClause: a required clause boundary is missing or empty.

Usage Example:
==============

	stmt, err := sql.Parse("SELECT name FROM users WHERE id = ?")
	if err != nil {
	    log.Fatal(err)
	}
	sel := stmt.(*sql.SelectStmt)
*/
package sql

import (
	ferrors "sqlshape/internal/errors"
)

// Parse tokenizes input and parses it into a Statement.
func Parse(input string) (Statement, error) {
	return ParseTokens(Tokenize(input))
}

// ParseTokens parses an already tokenized statement.
func ParseTokens(tokens []Token) (Statement, error) {
	tokens, err := prepare(tokens)
	if err != nil {
		return nil, err
	}

	switch Classify(tokens) {
	case KindSelect:
		return parseSelect(tokens)
	case KindInsert:
		return parseInsert(tokens)
	case KindUpdate:
		return parseUpdate(tokens)
	case KindDelete:
		return parseDelete(tokens)
	default:
		return nil, ferrors.UnsupportedStatement(tokens[0].Value).At(tokens[0].Value, tokens[0].Pos)
	}
}

// prepare rejects input the parsers cannot work with and drops a single
// trailing semicolon.
func prepare(tokens []Token) ([]Token, error) {
	if len(tokens) == 0 {
		return nil, ferrors.UnsupportedStatement("empty statement")
	}
	for _, t := range tokens {
		if t.Type == TokenIllegal {
			return nil, ferrors.MalformedClause("statement", "unexpected input "+quote(t.Value)).At(t.Value, t.Pos)
		}
	}
	if i := IndexOf(tokens, OfType(TokenSemicolon)); i >= 0 {
		if i != len(tokens)-1 {
			t := tokens[i+1]
			return nil, ferrors.UnsupportedStatement("multiple statements").
				WithHint("Analyze one statement at a time").At(t.Value, t.Pos)
		}
		tokens = tokens[:i]
		if len(tokens) == 0 {
			return nil, ferrors.UnsupportedStatement("empty statement")
		}
	}
	// Subqueries, CTEs and set operations are outside the grammar.
	for _, t := range tokens[1:] {
		if t.Type != TokenKeyword {
			continue
		}
		switch t.Value {
		case "SELECT":
			return nil, ferrors.UnsupportedStatement("subquery").At(t.Value, t.Pos)
		case "UNION", "INTERSECT", "EXCEPT":
			return nil, ferrors.UnsupportedStatement(t.Value).At(t.Value, t.Pos)
		}
	}
	if tokens[0].Type == TokenKeyword && tokens[0].Value == "WITH" {
		return nil, ferrors.UnsupportedStatement("WITH").At(tokens[0].Value, tokens[0].Pos)
	}
	return tokens, nil
}

// expectTableName checks that tokens starts with an identifier usable as a
// table name.
func expectTableName(tokens []Token, clause string) (Token, error) {
	if len(tokens) == 0 {
		return Token{}, ferrors.MalformedClause(clause, "expected table name, found EOF")
	}
	t := tokens[0]
	if t.Type != TokenIdent {
		return Token{}, ferrors.MalformedClause(clause, "expected table name, found "+quote(t.Value)).At(t.Value, t.Pos)
	}
	return t, nil
}

// parseTableAlias reads "name [[AS] alias]" and reports any tokens left
// over.
func parseTableAlias(tokens []Token, clause string) (TableRef, []Token, error) {
	name, err := expectTableName(tokens, clause)
	if err != nil {
		return TableRef{}, nil, err
	}
	ref := TableRef{Name: name.Value, Pos: name.Pos}
	rest := tokens[1:]
	if len(rest) > 0 && rest[0].Type == TokenKeyword && rest[0].Value == "AS" {
		if len(rest) < 2 || rest[1].Type != TokenIdent {
			return TableRef{}, nil, ferrors.MalformedClause(clause, "expected alias after AS").At(rest[0].Value, rest[0].Pos)
		}
		ref.Alias = rest[1].Value
		rest = rest[2:]
	} else if len(rest) > 0 && rest[0].Type == TokenIdent {
		ref.Alias = rest[0].Value
		rest = rest[1:]
	}
	return ref, rest, nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
