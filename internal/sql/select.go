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
	"strings"

	ferrors "sqlshape/internal/errors"
)

// aggregates are the functions whose result type the resolver knows.
var aggregates = map[string]struct{}{
	"COUNT": {}, "SUM": {}, "AVG": {}, "MIN": {}, "MAX": {}, "GROUP_CONCAT": {},
}

var (
	joinSeparator = OfType(TokenComma).Or(Is("JOIN", "STRAIGHT_JOIN"))
	joinModifier  = Is("INNER", "LEFT", "RIGHT", "OUTER", "CROSS", "NATURAL")
	joinCondition = Is("ON", "USING")
)

// literalKeyword matches the keywords that are values on their own.
var literalKeyword = Is("NULL", "TRUE", "FALSE")

// FULL is not reserved; it is a modifier only right before JOIN.
var trailingJoinModifier = joinModifier.Or(isWord("FULL"))

// parseSelect parses a SELECT statement. The select list sits between
// SELECT and FROM; the table references run from FROM to the first of
// WHERE, GROUP, HAVING, ORDER or LIMIT.
func parseSelect(tokens []Token) (*SelectStmt, error) {
	fromIdx := IndexOf(tokens, Is("FROM"))
	if fromIdx < 0 {
		last := tokens[len(tokens)-1]
		return nil, ferrors.MalformedClause("SELECT", "missing FROM").At(last.Value, last.Pos)
	}
	from := tokens[fromIdx]

	stmt := &SelectStmt{}
	list := SliceBetween(tokens, Is("SELECT"), Is("FROM"))
	if len(list) > 0 && Is("DISTINCT", "ALL")(list[0]) {
		stmt.Distinct = list[0].Value == "DISTINCT"
		list = list[1:]
	}
	if len(list) == 0 {
		return nil, ferrors.MalformedClause("SELECT", "empty select list").At(from.Value, from.Pos)
	}

	for _, part := range SplitTopLevel(list, OfType(TokenComma)) {
		expr, err := parseSelectExpr(part, from)
		if err != nil {
			return nil, err
		}
		stmt.Exprs = append(stmt.Exprs, expr)
	}

	refs := SliceBetween(tokens, Is("FROM"), Is("WHERE").Or(tailStart))
	tables, err := parseTableRefs(refs, from)
	if err != nil {
		return nil, err
	}
	stmt.Tables = tables

	if err := checkWhere(tokens); err != nil {
		return nil, err
	}

	stmt.Params = scanPlaceholders(tokens, ClauseSelect)
	return stmt, nil
}

// parseSelectExpr parses one select-list element. next is the token that
// follows the list, used to position errors on empty elements.
func parseSelectExpr(part []Token, next Token) (SelectExpr, error) {
	if len(part) == 0 {
		return SelectExpr{}, ferrors.MalformedClause("SELECT", "empty select expression").At(next.Value, next.Pos)
	}

	body, alias := splitAlias(part)
	if len(body) == 0 {
		t := part[0]
		return SelectExpr{}, ferrors.MalformedClause("SELECT", "expected expression before AS").At(t.Value, t.Pos)
	}

	expr := SelectExpr{Kind: ExprOther, Text: Text(body), Alias: alias, Pos: body[0].Pos}
	first := body[0]
	if len(body) == 1 && first.Type == TokenKeyword && !literalKeyword(first) {
		return SelectExpr{}, ferrors.MalformedClause("SELECT", "expected expression, found "+quote(first.Value)).At(first.Value, first.Pos)
	}

	switch {
	case len(body) == 1 && first.Type == TokenStar:
		expr.Kind = ExprStar
	case len(body) == 1 && first.Type == TokenIdent && strings.HasSuffix(first.Value, ".*"):
		expr.Kind = ExprStar
		expr.Column = NewColumnRef(first)
	case len(body) == 1 && first.Type == TokenIdent:
		expr.Kind = ExprColumn
		expr.Column = NewColumnRef(first)
	case isFunctionCall(body):
		name := strings.ToUpper(first.Value)
		if _, ok := aggregates[name]; ok {
			expr.Kind = ExprAggregate
			expr.Func = name
			args := SliceFromFirstNonMatch(body[2:len(body)-1], Is("DISTINCT", "ALL"))
			if len(args) == 1 && args[0].Type == TokenIdent {
				expr.Column = NewColumnRef(args[0])
				expr.HasArg = true
			}
		}
	}

	if expr.Kind == ExprStar && alias != "" {
		return SelectExpr{}, ferrors.MalformedClause("SELECT", "a star cannot have an alias").At(alias, part[len(part)-1].Pos)
	}
	return expr, nil
}

// splitAlias separates "expr AS alias" and "expr alias" into expression and
// alias. Which token is the alias is decided by position; AS is optional.
func splitAlias(part []Token) ([]Token, string) {
	n := len(part)
	if n >= 2 && part[n-2].Type == TokenKeyword && part[n-2].Value == "AS" {
		switch last := part[n-1]; last.Type {
		case TokenIdent:
			return part[:n-2], last.Value
		case TokenString:
			return part[:n-2], strings.Trim(last.Value, "'")
		}
	}
	if n >= 2 && part[n-1].Type == TokenIdent {
		switch part[n-2].Type {
		case TokenIdent, TokenRParen, TokenNumber, TokenString, TokenPlaceholder:
			return part[:n-1], part[n-1].Value
		}
	}
	return part, ""
}

// isFunctionCall reports whether body is exactly name(...).
func isFunctionCall(body []Token) bool {
	if len(body) < 3 || body[0].Type != TokenIdent || body[1].Type != TokenLParen {
		return false
	}
	if body[len(body)-1].Type != TokenRParen {
		return false
	}
	depth := 0
	for i, t := range body[1:] {
		switch t.Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			// The opening parenthesis must close only at the very end.
			if depth == 0 && i != len(body)-2 {
				return false
			}
		}
	}
	return depth == 0
}

// parseTableRefs splits the FROM clause on JOIN and commas. The first entry
// is the primary table. ON and USING conditions are skipped here; their
// placeholders are collected with the rest of the statement.
func parseTableRefs(refs []Token, from Token) ([]TableRef, error) {
	if len(refs) == 0 {
		return nil, ferrors.MalformedClause("FROM", "expected table name, found EOF").At(from.Value, from.Pos)
	}

	var tables []TableRef
	segs := SplitTopLevel(refs, joinSeparator)
	for i, seg := range segs {
		// Join modifiers (LEFT OUTER ...) trail the previous segment.
		if i < len(segs)-1 {
			for len(seg) > 1 && trailingJoinModifier(seg[len(seg)-1]) {
				seg = seg[:len(seg)-1]
			}
		}
		seg = SliceFromFirstNonMatch(seg, joinModifier)
		if i := IndexOf(seg, joinCondition); i >= 0 {
			if i == 0 {
				return nil, ferrors.MalformedClause("FROM", "expected table name before "+seg[0].Value).At(seg[0].Value, seg[0].Pos)
			}
			seg = seg[:i]
		}

		ref, rest, err := parseTableAlias(seg, "FROM")
		if err != nil {
			return nil, err
		}
		if len(rest) > 0 {
			t := rest[0]
			return nil, ferrors.MalformedClause("FROM", "unexpected "+quote(t.Value)+" after table reference").At(t.Value, t.Pos)
		}
		tables = append(tables, ref)
	}
	return tables, nil
}

// checkWhere rejects a WHERE keyword with no condition after it.
func checkWhere(tokens []Token) error {
	i := IndexOf(tokens, Is("WHERE"))
	if i < 0 {
		return nil
	}
	if len(SliceBetween(tokens, Is("WHERE"), tailStart)) == 0 {
		t := tokens[i]
		return ferrors.MalformedClause("WHERE", "empty condition").At(t.Value, t.Pos)
	}
	return nil
}
