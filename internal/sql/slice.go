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

import "strings"

// Matcher reports whether a token belongs to a set. Matchers always look at
// a whole token; there are no multi-token matchers.
type Matcher func(Token) bool

// Is matches keyword and punctuation tokens whose value is one of values.
// Identifiers and string literals never match, so a column that happens
// to be called "from" cannot end a clause.
func Is(values ...string) Matcher {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(t Token) bool {
		if t.Type == TokenIdent || t.Type == TokenString {
			return false
		}
		_, ok := set[t.Value]
		return ok
	}
}

// OfType matches tokens of any of the given types.
func OfType(types ...TokenType) Matcher {
	return func(t Token) bool {
		for _, tt := range types {
			if t.Type == tt {
				return true
			}
		}
		return false
	}
}

// Or matches tokens that match m or other.
func (m Matcher) Or(other Matcher) Matcher {
	return func(t Token) bool {
		return m(t) || other(t)
	}
}

// parens matches structural parentheses.
var parens = OfType(TokenLParen, TokenRParen)

// SliceBetween returns the tokens strictly after the first token matching
// start, up to but excluding the first later token matching end. If end
// never matches the remainder is returned; if start never matches the
// result is empty.
func SliceBetween(tokens []Token, start, end Matcher) []Token {
	from := IndexOf(tokens, start)
	if from < 0 {
		return nil
	}
	rest := tokens[from+1:]
	if to := IndexOf(rest, end); to >= 0 {
		return rest[:to]
	}
	return rest
}

// SliceFrom returns the tokens from the first token matching start
// (inclusive) onward, or nil if nothing matches.
func SliceFrom(tokens []Token, start Matcher) []Token {
	if i := IndexOf(tokens, start); i >= 0 {
		return tokens[i:]
	}
	return nil
}

// SliceFromFirstNonMatch skips the leading run of tokens matching skip and
// returns everything from the first token that does not. The skipped
// tokens may appear in any order and any subset.
func SliceFromFirstNonMatch(tokens []Token, skip Matcher) []Token {
	for i, t := range tokens {
		if !skip(t) {
			return tokens[i:]
		}
	}
	return nil
}

// FilterOut returns tokens without those matching drop, order preserved.
func FilterOut(tokens []Token, drop Matcher) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if !drop(t) {
			out = append(out, t)
		}
	}
	return out
}

// IndexOf returns the index of the first token matching m, or -1.
func IndexOf(tokens []Token, m Matcher) int {
	for i, t := range tokens {
		if m(t) {
			return i
		}
	}
	return -1
}

// isWord matches an identifier case-insensitively, for words that are not
// reserved keywords.
func isWord(words ...string) Matcher {
	return func(t Token) bool {
		if t.Type != TokenIdent {
			return false
		}
		for _, w := range words {
			if strings.EqualFold(t.Value, w) {
				return true
			}
		}
		return false
	}
}

// indexTopLevel is IndexOf restricted to tokens outside parentheses.
func indexTopLevel(tokens []Token, m Matcher) int {
	depth := 0
	for i, t := range tokens {
		switch {
		case t.Type == TokenLParen:
			depth++
		case t.Type == TokenRParen:
			if depth > 0 {
				depth--
			}
		case depth == 0 && m(t):
			return i
		}
	}
	return -1
}

// SplitTopLevel splits tokens on separators that are not nested inside
// parentheses. Separators are dropped. Empty input yields no parts; an
// empty part between two separators is kept so callers can reject it.
func SplitTopLevel(tokens []Token, sep Matcher) [][]Token {
	if len(tokens) == 0 {
		return nil
	}
	var parts [][]Token
	depth, start := 0, 0
	for i, t := range tokens {
		switch {
		case t.Type == TokenLParen:
			depth++
		case t.Type == TokenRParen:
			if depth > 0 {
				depth--
			}
		case depth == 0 && sep(t):
			parts = append(parts, tokens[start:i])
			start = i + 1
		}
	}
	return append(parts, tokens[start:])
}

// Text renders tokens back to compact SQL text, e.g. COUNT(*) or
// CONCAT(a, b). It is used to name select expressions that have no alias.
func Text(tokens []Token) string {
	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 {
			prev := tokens[i-1]
			switch {
			case t.Type == TokenLParen && prev.Type == TokenIdent:
			case t.Type == TokenRParen, t.Type == TokenComma:
			case prev.Type == TokenLParen:
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.Value)
	}
	return sb.String()
}
