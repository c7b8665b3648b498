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
Package sql contains the Lexer component for SQL tokenization.

Lexer Overview:
===============

The Lexer is the first stage of the analysis pipeline. It transforms a raw
SQL string into an ordered slice of tokens that the statement parsers carve
into clauses.

	Input: "SELECT name FROM users WHERE id = ?"

	Output Tokens:
	  1. {TokenKeyword, "SELECT"}
	  2. {TokenIdent, "name"}
	  3. {TokenKeyword, "FROM"}
	  4. {TokenIdent, "users"}
	  5. {TokenKeyword, "WHERE"}
	  6. {TokenIdent, "id"}
	  7. {TokenEqual, "="}
	  8. {TokenPlaceholder, "?"}

Token Rules:
============

  - Keywords are case-insensitive and are stored upper-cased.
  - Identifiers keep their case. A dotted name such as users.id or users.*
    is a single identifier token. Back-quoted and double-quoted identifiers
    are unquoted.
  - String literals keep their quote delimiters, so a literal can never be
    mistaken for a keyword or a placeholder.
  - ? is always a standalone placeholder token.
  - Comments (-- ..., # ... and slash-star blocks) are skipped.

The input is normalized to Unicode NFC before scanning, so identifiers
written with combining characters compare equal to their composed form.
Token positions are byte offsets into the normalized input.

The Lexer never fails. Characters it does not understand, and unterminated
literals, become TokenIllegal tokens that the parser rejects.
*/
package sql

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TokenType represents the type of a lexical token.
type TokenType int

// Token type constants.
const (
	TokenEOF         TokenType = iota // End of input
	TokenIdent                        // Identifier (table name, column name, users.id)
	TokenString                       // String literal ('hello'), delimiters included
	TokenNumber                       // Numeric literal (123, 3.14)
	TokenKeyword                      // SQL keyword (SELECT, FROM, etc.)
	TokenPlaceholder                  // Positional parameter (?)
	TokenComma                        // Comma (,)
	TokenLParen                       // Left parenthesis (()
	TokenRParen                       // Right parenthesis ())
	TokenEqual                        // Equals sign (=)
	TokenStar                         // Asterisk (*)
	TokenSemicolon                    // Statement terminator (;)
	TokenOperator                     // Other operators (<, >, <=, >=, <>, !=, +, -, /, %, ||)
	TokenIllegal                      // Unrecognized input
)

var tokenTypeNames = [...]string{
	TokenEOF:         "EOF",
	TokenIdent:       "IDENT",
	TokenString:      "STRING",
	TokenNumber:      "NUMBER",
	TokenKeyword:     "KEYWORD",
	TokenPlaceholder: "PLACEHOLDER",
	TokenComma:       "COMMA",
	TokenLParen:      "LPAREN",
	TokenRParen:      "RPAREN",
	TokenEqual:       "EQUAL",
	TokenStar:        "STAR",
	TokenSemicolon:   "SEMICOLON",
	TokenOperator:    "OPERATOR",
	TokenIllegal:     "ILLEGAL",
}

// String returns the name of the token type.
func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return "UNKNOWN"
}

// Token represents a single lexical unit from the input.
type Token struct {
	Type  TokenType // The category of this token
	Value string    // The literal value from the input
	Pos   int       // Byte offset of the token in the normalized input
}

// String returns the token value, or EOF for the end marker.
func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	return t.Value
}

// keywords is the set of reserved words. Anything not listed here is an
// identifier, so type names and function names such as INT or COUNT stay
// usable as column names. Non-reserved words that still steer parsing
// (VALUE, OFFSET, FULL, QUICK, DELAYED) lex as identifiers and are matched
// by position in the parsers.
var keywords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "AS": {}, "DISTINCT": {}, "ALL": {},
	"JOIN": {}, "INNER": {}, "LEFT": {}, "RIGHT": {}, "OUTER": {}, "CROSS": {},
	"NATURAL": {}, "STRAIGHT_JOIN": {}, "ON": {}, "USING": {},
	"AND": {}, "OR": {}, "NOT": {}, "IN": {}, "IS": {}, "NULL": {}, "LIKE": {},
	"BETWEEN": {}, "EXISTS": {}, "TRUE": {}, "FALSE": {},
	"GROUP": {}, "BY": {}, "HAVING": {}, "ORDER": {}, "ASC": {}, "DESC": {},
	"LIMIT": {},
	"INSERT": {}, "INTO": {}, "VALUES": {}, "LOW_PRIORITY": {},
	"HIGH_PRIORITY": {}, "IGNORE": {},
	"PARTITION": {}, "TABLE": {},
	"UPDATE": {}, "SET": {}, "DELETE": {},
	"CREATE": {}, "UNION": {}, "INTERSECT": {}, "EXCEPT": {}, "WITH": {},
}

// IsKeyword reports whether word (in any case) is a reserved keyword.
func IsKeyword(word string) bool {
	_, ok := keywords[strings.ToUpper(word)]
	return ok
}

// Lexer transforms an input string into a stream of tokens.
//
// The Lexer is stateful - each call to NextToken() advances
// the position in the input string.
type Lexer struct {
	input string // The NFC-normalized SQL input
	pos   int    // Current position in the input
}

// NewLexer creates a new Lexer for the given input string.
func NewLexer(input string) *Lexer {
	return &Lexer{input: norm.NFC.String(input)}
}

// Input returns the normalized input the lexer scans.
func (l *Lexer) Input() string {
	return l.input
}

// Tokenize splits text into its ordered tokens. The trailing EOF marker is
// not included.
func Tokenize(text string) []Token {
	l := NewLexer(text)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// NextToken advances the lexer and returns the next token.
//
// Token recognition order:
//  1. Skip whitespace and comments
//  2. End of input (TokenEOF)
//  3. Identifier or keyword (letter, underscore, or a quoted identifier)
//  4. Number
//  5. String literal
//  6. Placeholder and punctuation
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	if isIdentStart(l.peekRune()) || ch == '`' || ch == '"' {
		return l.readIdentifier()
	}

	if isDigit(ch) {
		return l.readNumber()
	}

	if ch == '\'' {
		return l.readString()
	}

	// Two-character operators are checked before their one-character prefixes.
	if l.pos+1 < len(l.input) {
		switch two := l.input[l.pos : l.pos+2]; two {
		case "<=", ">=", "<>", "!=", "||":
			l.pos += 2
			return Token{Type: TokenOperator, Value: two, Pos: start}
		}
	}

	l.pos++
	switch ch {
	case '?':
		return Token{Type: TokenPlaceholder, Value: "?", Pos: start}
	case ',':
		return Token{Type: TokenComma, Value: ",", Pos: start}
	case '(':
		return Token{Type: TokenLParen, Value: "(", Pos: start}
	case ')':
		return Token{Type: TokenRParen, Value: ")", Pos: start}
	case '=':
		return Token{Type: TokenEqual, Value: "=", Pos: start}
	case '*':
		return Token{Type: TokenStar, Value: "*", Pos: start}
	case ';':
		return Token{Type: TokenSemicolon, Value: ";", Pos: start}
	case '<', '>', '+', '-', '/', '%':
		return Token{Type: TokenOperator, Value: string(ch), Pos: start}
	}

	// Unknown character: consume the whole rune so offsets stay aligned.
	l.pos = start
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	return Token{Type: TokenIllegal, Value: l.input[start:l.pos], Pos: start}
}

// readIdentifier reads a possibly dotted, possibly quoted identifier. A
// single unquoted, undotted word is checked against the keyword table.
func (l *Lexer) readIdentifier() Token {
	start := l.pos
	var sb strings.Builder
	quoted := false
	parts := 0

	for {
		if l.pos < len(l.input) && (l.input[l.pos] == '`' || l.input[l.pos] == '"') {
			part, ok := l.readQuotedPart(l.input[l.pos])
			if !ok {
				return Token{Type: TokenIllegal, Value: l.input[start:], Pos: start}
			}
			sb.WriteString(part)
			quoted = true
		} else if l.pos < len(l.input) && l.input[l.pos] == '*' && parts > 0 {
			// users.* - the star only belongs to a qualified name.
			l.pos++
			sb.WriteByte('*')
			parts++
			break
		} else {
			partStart := l.pos
			for l.pos < len(l.input) {
				r, size := utf8.DecodeRuneInString(l.input[l.pos:])
				if !isIdentPart(r) {
					break
				}
				l.pos += size
			}
			if l.pos == partStart {
				break
			}
			sb.WriteString(l.input[partStart:l.pos])
		}
		parts++

		// A dot continues the name only when another part follows it.
		if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && l.isNamePartStart(l.pos+1) {
			l.pos++
			sb.WriteByte('.')
			continue
		}
		break
	}

	lit := sb.String()
	if !quoted && parts == 1 {
		upper := strings.ToUpper(lit)
		if _, ok := keywords[upper]; ok {
			return Token{Type: TokenKeyword, Value: upper, Pos: start}
		}
	}
	return Token{Type: TokenIdent, Value: lit, Pos: start}
}

// isNamePartStart reports whether a name part can begin at offset i.
func (l *Lexer) isNamePartStart(i int) bool {
	switch c := l.input[i]; c {
	case '`', '"', '*':
		return true
	default:
		r, _ := utf8.DecodeRuneInString(l.input[i:])
		return isIdentPart(r)
	}
}

// readQuotedPart reads a quoted identifier part; a doubled quote inside
// stands for one literal quote character.
func (l *Lexer) readQuotedPart(quote byte) (string, bool) {
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == quote {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == quote {
				sb.WriteByte(quote)
				l.pos += 2
				continue
			}
			l.pos++
			return sb.String(), true
		}
		sb.WriteByte(c)
		l.pos++
	}
	return "", false
}

// readNumber reads an integer or decimal literal, with an optional exponent.
func (l *Lexer) readNumber() Token {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(l.input[l.pos+1]) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		exp := l.pos + 1
		if exp < len(l.input) && (l.input[exp] == '+' || l.input[exp] == '-') {
			exp++
		}
		if exp < len(l.input) && isDigit(l.input[exp]) {
			l.pos = exp
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		}
	}
	return Token{Type: TokenNumber, Value: l.input[start:l.pos], Pos: start}
}

// readString reads a single-quoted literal including its delimiters.
// Both '' and backslash escapes are honoured.
func (l *Lexer) readString() Token {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\'':
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Type: TokenString, Value: l.input[start:l.pos], Pos: start}
		}
		l.pos++
	}
	l.pos = len(l.input)
	return Token{Type: TokenIllegal, Value: l.input[start:], Pos: start}
}

// skipWhitespaceAndComments advances past whitespace and SQL comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		switch {
		case unicode.IsSpace(r):
			l.pos += size
		case r == '#' || strings.HasPrefix(l.input[l.pos:], "--"):
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case strings.HasPrefix(l.input[l.pos:], "/*"):
			end := strings.Index(l.input[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.input)
				return
			}
			l.pos += end + 4
		default:
			return
		}
	}
}

func (l *Lexer) peekRune() rune {
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// SplitStatements splits a script into statements at top-level semicolons.
// Semicolons inside string literals and comments do not split. Empty
// statements are dropped.
func SplitStatements(script string) []string {
	l := NewLexer(script)
	input := l.Input()
	var stmts []string
	start := 0
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF || tok.Type == TokenSemicolon {
			if s := strings.TrimSpace(input[start:tok.Pos]); s != "" && len(Tokenize(s)) > 0 {
				stmts = append(stmts, s)
			}
			if tok.Type == TokenEOF {
				return stmts
			}
			start = tok.Pos + 1
		}
	}
}
