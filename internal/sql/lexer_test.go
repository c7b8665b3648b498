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
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("SELECT name FROM users WHERE id = ?")
	expected := []struct {
		typ   TokenType
		value string
		pos   int
	}{
		{TokenKeyword, "SELECT", 0},
		{TokenIdent, "name", 7},
		{TokenKeyword, "FROM", 12},
		{TokenIdent, "users", 17},
		{TokenKeyword, "WHERE", 23},
		{TokenIdent, "id", 29},
		{TokenEqual, "=", 32},
		{TokenPlaceholder, "?", 34},
	}

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		tok := tokens[i]
		if tok.Type != exp.typ || tok.Value != exp.value || tok.Pos != exp.pos {
			t.Errorf("Token %d: expected %s %q at %d, got %s %q at %d",
				i, exp.typ, exp.value, exp.pos, tok.Type, tok.Value, tok.Pos)
		}
	}
}

func TestTokenizeSingleTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		typ   TokenType
		value string
	}{
		{"lowercase keyword", "select", TokenKeyword, "SELECT"},
		{"non-reserved word", "value", TokenIdent, "value"},
		{"non-reserved word keeps case", "Offset", TokenIdent, "Offset"},
		{"dotted name", "users.id", TokenIdent, "users.id"},
		{"qualified star", "users.*", TokenIdent, "users.*"},
		{"database qualified", "app.users.id", TokenIdent, "app.users.id"},
		{"backquoted", "`order`", TokenIdent, "order"},
		{"double quoted", `"select"`, TokenIdent, "select"},
		{"backquoted dotted", "`my table`.`my col`", TokenIdent, "my table.my col"},
		{"doubled quote", "`a``b`", TokenIdent, "a`b"},
		{"string keeps quotes", "'hello'", TokenString, "'hello'"},
		{"string with doubled quote", "'it''s'", TokenString, "'it''s'"},
		{"string with escape", `'a\'b'`, TokenString, `'a\'b'`},
		{"string hides placeholder", "'?'", TokenString, "'?'"},
		{"integer", "42", TokenNumber, "42"},
		{"decimal", "3.14", TokenNumber, "3.14"},
		{"exponent", "1e10", TokenNumber, "1e10"},
		{"type name is identifier", "INT", TokenIdent, "INT"},
		{"function name is identifier", "count", TokenIdent, "count"},
		{"not equal", "<>", TokenOperator, "<>"},
		{"bang equal", "!=", TokenOperator, "!="},
		{"less equal", "<=", TokenOperator, "<="},
		{"concat", "||", TokenOperator, "||"},
		{"dollar in name", "price$", TokenIdent, "price$"},
		{"unicode name", "ñame", TokenIdent, "ñame"},
		{"unterminated string", "'abc", TokenIllegal, "'abc"},
		{"unterminated quoted ident", "`abc", TokenIllegal, "`abc"},
		{"unknown character", "@", TokenIllegal, "@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			if len(tokens) != 1 {
				t.Fatalf("Expected 1 token, got %d: %v", len(tokens), tokens)
			}
			if tokens[0].Type != tt.typ {
				t.Errorf("Expected type %s, got %s", tt.typ, tokens[0].Type)
			}
			if tokens[0].Value != tt.value {
				t.Errorf("Expected value %q, got %q", tt.value, tokens[0].Value)
			}
		})
	}
}

func TestTokenizeComments(t *testing.T) {
	input := `SELECT id -- trailing comment
		# hash comment
		/* block
		   comment */ FROM users`
	tokens := Tokenize(input)
	var values []string
	for _, tok := range tokens {
		values = append(values, tok.Value)
	}
	expected := []string{"SELECT", "id", "FROM", "users"}
	if len(values) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, values)
	}
	for i := range expected {
		if values[i] != expected[i] {
			t.Errorf("Token %d: expected %q, got %q", i, expected[i], values[i])
		}
	}
}

func TestTokenizePlaceholdersStandalone(t *testing.T) {
	tokens := Tokenize("(?,?)")
	expected := []TokenType{TokenLParen, TokenPlaceholder, TokenComma, TokenPlaceholder, TokenRParen}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, typ := range expected {
		if tokens[i].Type != typ {
			t.Errorf("Token %d: expected %s, got %s", i, typ, tokens[i].Type)
		}
	}
}

func TestTokenizeNormalizesUnicode(t *testing.T) {
	// "e" followed by a combining acute accent composes to "\u00e9".
	decomposed := Tokenize("cafe\u0301")
	composed := Tokenize("caf\u00e9")
	if len(decomposed) != 1 || len(composed) != 1 {
		t.Fatalf("Expected single tokens, got %v and %v", decomposed, composed)
	}
	if decomposed[0].Value != composed[0].Value {
		t.Errorf("Expected %q, got %q", composed[0].Value, decomposed[0].Value)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if tokens := Tokenize("   \n\t "); len(tokens) != 0 {
		t.Errorf("Expected no tokens, got %v", tokens)
	}
}

func TestSplitStatements(t *testing.T) {
	script := `
		CREATE TABLE a (id INT);
		INSERT INTO a VALUES (';');
		-- a comment; with a semicolon
		SELECT * FROM a;;
		SELECT 1`
	stmts := SplitStatements(script)
	expected := []string{
		"CREATE TABLE a (id INT)",
		"INSERT INTO a VALUES (';')",
		"-- a comment; with a semicolon\n\t\tSELECT * FROM a",
		"SELECT 1",
	}
	if len(stmts) != len(expected) {
		t.Fatalf("Expected %d statements, got %d: %q", len(expected), len(stmts), stmts)
	}
	for i := range expected {
		if stmts[i] != expected[i] {
			t.Errorf("Statement %d: expected %q, got %q", i, expected[i], stmts[i])
		}
	}
}

func TestSplitStatementsDropsCommentOnly(t *testing.T) {
	stmts := SplitStatements("SELECT 1; -- done\n")
	if len(stmts) != 1 {
		t.Errorf("Expected 1 statement, got %d: %q", len(stmts), stmts)
	}
}

func TestIsKeyword(t *testing.T) {
	if !IsKeyword("select") {
		t.Error("Expected select to be a keyword")
	}
	if IsKeyword("value") || IsKeyword("OFFSET") {
		t.Error("Expected non-reserved words not to be keywords")
	}
	if IsKeyword("count") {
		t.Error("Expected count not to be a keyword")
	}
}
