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
	"fmt"

	ferrors "sqlshape/internal/errors"
)

var (
	insertModifier = Is("INSERT", "LOW_PRIORITY", "HIGH_PRIORITY", "IGNORE", "INTO").Or(isWord("DELAYED"))
	valuesKeyword  = Is("VALUES").Or(isWord("VALUE"))
	comma          = OfType(TokenComma)
)

// skipInsertModifiers drops INSERT and its modifiers. DELAYED is not
// reserved, so it only counts as a modifier when another modifier or the
// table name follows it; INSERT INTO delayed VALUES (...) names a table.
func skipInsertModifiers(tokens []Token) []Token {
	for len(tokens) > 0 && insertModifier(tokens[0]) {
		if tokens[0].Type == TokenIdent && !delayedModifier(tokens[1:]) {
			break
		}
		tokens = tokens[1:]
	}
	return tokens
}

func delayedModifier(next []Token) bool {
	if len(next) == 0 {
		return false
	}
	return insertModifier(next[0]) || (next[0].Type == TokenIdent && !valuesKeyword(next[0]))
}

// parseInsert parses the single-row column-list form of INSERT:
//
//	INSERT [modifiers] [INTO] table [(col, ...)] {VALUES | VALUE} (value, ...)
//
// Columns and values are walked in lockstep; each value that is exactly ?
// becomes a placeholder correlated with its column.
func parseInsert(tokens []Token) (*InsertStmt, error) {
	head := skipInsertModifiers(tokens)
	table, err := expectTableName(head, "INSERT")
	if err != nil {
		return nil, err
	}
	stmt := &InsertStmt{Table: TableRef{Name: table.Value, Pos: table.Pos}}

	rest := head[1:]
	if len(rest) > 0 && rest[0].Type == TokenKeyword {
		switch rest[0].Value {
		case "SET", "PARTITION", "TABLE":
			return nil, ferrors.UnsupportedStatement("INSERT ... "+rest[0].Value).At(rest[0].Value, rest[0].Pos)
		}
	}

	valuesIdx := indexTopLevel(rest, valuesKeyword)
	if valuesIdx < 0 {
		return nil, ferrors.MalformedClause("INSERT", "missing VALUES").At(table.Value, table.Pos)
	}

	if valuesIdx > 0 {
		if rest[0].Type != TokenLParen || rest[valuesIdx-1].Type != TokenRParen {
			t := rest[0]
			return nil, ferrors.MalformedClause("INSERT", "expected column list in parentheses, found "+quote(t.Value)).At(t.Value, t.Pos)
		}
		cols := FilterOut(rest[1:valuesIdx-1], parens)
		for _, part := range SplitTopLevel(cols, comma) {
			if len(part) != 1 || part[0].Type != TokenIdent {
				pos, val := rest[0].Pos, rest[0].Value
				if len(part) > 0 {
					pos, val = part[0].Pos, part[0].Value
				}
				return nil, ferrors.MalformedClause("INSERT", "expected column name in column list").At(val, pos)
			}
			stmt.Columns = append(stmt.Columns, NewColumnRef(part[0]))
		}
		if len(stmt.Columns) == 0 {
			return nil, ferrors.MalformedClause("INSERT", "empty column list").At(rest[0].Value, rest[0].Pos)
		}
	}

	values, err := parseValueRow(rest[valuesIdx:])
	if err != nil {
		return nil, err
	}
	stmt.Values = values

	if len(stmt.Columns) > 0 && len(stmt.Columns) != len(values) {
		kw := rest[valuesIdx]
		return nil, ferrors.MalformedClause("VALUES",
			fmt.Sprintf("%d columns but %d values", len(stmt.Columns), len(values))).At(kw.Value, kw.Pos)
	}

	for i, v := range values {
		if v.IsPlaceholder() {
			p := Placeholder{Pos: v.Tokens[0].Pos, Clause: ClauseValues, ValueIndex: -1}
			if len(stmt.Columns) > 0 {
				p.Column = stmt.Columns[i]
				p.Correlated = true
			} else {
				p.ValueIndex = i
			}
			stmt.Params = append(stmt.Params, p)
			continue
		}
		// A ? buried in an expression has no column of its own.
		for _, t := range v.Tokens {
			if t.Type == TokenPlaceholder {
				stmt.Params = append(stmt.Params, Placeholder{Pos: t.Pos, Clause: ClauseValues, ValueIndex: -1})
			}
		}
	}
	return stmt, nil
}

// parseValueRow parses "VALUES (v, ...)" and rejects anything after the
// row: a second row, a row alias, or ON DUPLICATE KEY UPDATE.
func parseValueRow(tokens []Token) ([]Value, error) {
	kw := tokens[0]
	row := tokens[1:]
	if len(row) == 0 || row[0].Type != TokenLParen {
		return nil, ferrors.MalformedClause("VALUES", "expected ( after "+kw.Value).At(kw.Value, kw.Pos)
	}
	end := matchingParen(row, 0)
	if end < 0 {
		return nil, ferrors.MalformedClause("VALUES", "unbalanced parentheses").At(row[0].Value, row[0].Pos)
	}

	if trailing := row[end+1:]; len(trailing) > 0 {
		t := trailing[0]
		switch {
		case t.Type == TokenComma:
			return nil, ferrors.UnsupportedStatement("multi-row VALUES").At(t.Value, t.Pos)
		case Is("ON")(t):
			return nil, ferrors.UnsupportedStatement("ON DUPLICATE KEY UPDATE").At(t.Value, t.Pos)
		case Is("AS")(t):
			return nil, ferrors.UnsupportedStatement("row alias").At(t.Value, t.Pos)
		default:
			return nil, ferrors.MalformedClause("VALUES", "unexpected "+quote(t.Value)+" after value list").At(t.Value, t.Pos)
		}
	}

	var values []Value
	for _, part := range SplitTopLevel(row[1:end], comma) {
		if len(part) == 0 {
			return nil, ferrors.MalformedClause("VALUES", "empty value").At(row[0].Value, row[0].Pos)
		}
		values = append(values, Value{Tokens: part})
	}
	if len(values) == 0 {
		return nil, ferrors.MalformedClause("VALUES", "empty value list").At(row[0].Value, row[0].Pos)
	}
	return values, nil
}

// matchingParen returns the index of the parenthesis closing tokens[open],
// or -1.
func matchingParen(tokens []Token, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
