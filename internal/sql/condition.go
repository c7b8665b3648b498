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

// Clause names recorded on placeholders.
const (
	ClauseSelect = "SELECT"
	ClauseFrom   = "FROM"
	ClauseOn     = "ON"
	ClauseWhere  = "WHERE"
	ClauseGroup  = "GROUP"
	ClauseHaving = "HAVING"
	ClauseOrder  = "ORDER"
	ClauseLimit  = "LIMIT"
	ClauseSet    = "SET"
	ClauseValues = "VALUES"
)

// comparison matches the operators that tie a placeholder to a column.
var comparison = Is("=", "<", ">", "<=", ">=", "<>", "!=", "LIKE")

// tailStart matches the clauses that may follow WHERE.
var tailStart = Is("GROUP", "HAVING", "ORDER", "LIMIT")

// scanPlaceholders returns the placeholders in tokens, in order. A
// placeholder is correlated with a column when it sits directly on one side
// of a comparison and a column reference sits on the other:
//
//	id = ?    ? = id    name LIKE ?    name NOT LIKE ?
//
// Anything else (IN lists, BETWEEN, arithmetic) leaves it uncorrelated.
// Placeholders after LIMIT or OFFSET are typed INT.
func scanPlaceholders(tokens []Token, clause string) []Placeholder {
	var out []Placeholder
	depth := 0
	for i, t := range tokens {
		switch t.Type {
		case TokenLParen:
			depth++
			continue
		case TokenRParen:
			if depth > 0 {
				depth--
			}
			continue
		case TokenKeyword:
			if depth == 0 {
				switch t.Value {
				case "FROM", "WHERE", "GROUP", "HAVING", "ORDER", "LIMIT", "ON", "SET":
					clause = t.Value
				case "JOIN":
					clause = ClauseFrom
				}
			}
			continue
		case TokenPlaceholder:
		default:
			continue
		}

		p := Placeholder{Pos: t.Pos, Clause: clause, ValueIndex: -1}
		if clause == ClauseLimit {
			p.Type = TypeINT
		} else if ref, ok := correlate(tokens, i); ok {
			p.Column = ref
			p.Correlated = true
		}
		out = append(out, p)
	}
	return out
}

// correlate finds the column compared against the placeholder at tokens[i].
// Parentheses wrapping only the placeholder, as in id = (?), are skipped.
func correlate(tokens []Token, i int) (ColumnRef, bool) {
	n := enclosingParens(tokens, i)
	left, right := i-n, i+n

	// column <op> ?
	if left >= 2 && comparison(tokens[left-1]) {
		j := left - 2
		if tokens[left-1].Value == "LIKE" && tokens[j].Type == TokenKeyword && tokens[j].Value == "NOT" {
			j--
		}
		if j >= 0 && tokens[j].Type == TokenIdent {
			return NewColumnRef(tokens[j]), true
		}
	}
	// ? <op> column
	if right+2 < len(tokens) && comparison(tokens[right+1]) && tokens[right+2].Type == TokenIdent {
		// A following "(" means the identifier is a function name.
		if right+3 >= len(tokens) || tokens[right+3].Type != TokenLParen {
			return NewColumnRef(tokens[right+2]), true
		}
	}
	return ColumnRef{}, false
}

// enclosingParens counts the parenthesis pairs that wrap tokens[i] and
// nothing else.
func enclosingParens(tokens []Token, i int) int {
	n := 0
	for i-n-1 >= 0 && i+n+1 < len(tokens) &&
		tokens[i-n-1].Type == TokenLParen && tokens[i+n+1].Type == TokenRParen {
		n++
	}
	return n
}
