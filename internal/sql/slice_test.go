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
	"testing"
)

func values(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Value
	}
	return strings.Join(parts, " ")
}

func TestSliceBetween(t *testing.T) {
	tokens := Tokenize("SELECT id, name FROM users WHERE id = ?")
	tests := []struct {
		name     string
		start    Matcher
		end      Matcher
		expected string
	}{
		{"select list", Is("SELECT"), Is("FROM"), "id , name"},
		{"end never matches", Is("WHERE"), Is("LIMIT"), "id = ?"},
		{"start never matches", Is("LIMIT"), Is("FROM"), ""},
		{"adjacent", Is("FROM"), OfType(TokenIdent), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := values(SliceBetween(tokens, tt.start, tt.end))
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSliceFromFirstNonMatch(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"INSERT INTO users VALUES (1)", "users VALUES ( 1 )"},
		{"INSERT LOW_PRIORITY IGNORE INTO users VALUES (1)", "users VALUES ( 1 )"},
		{"INSERT IGNORE LOW_PRIORITY users VALUES (1)", "users VALUES ( 1 )"},
		{"INSERT INTO", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := values(SliceFromFirstNonMatch(Tokenize(tt.input), insertModifier))
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFilterOut(t *testing.T) {
	got := values(FilterOut(Tokenize("(id, name)"), parens))
	if got != "id , name" {
		t.Errorf("Expected %q, got %q", "id , name", got)
	}
}

func TestIsIgnoresIdentifiers(t *testing.T) {
	tokens := Tokenize("SELECT `from` FROM t")
	if i := IndexOf(tokens, Is("FROM")); i != 2 {
		t.Errorf("Expected FROM at index 2, got %d", i)
	}
	if Is("'x'")(Token{Type: TokenString, Value: "'x'"}) {
		t.Error("Expected string literals never to match")
	}
}

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"a, b, c", []string{"a", "b", "c"}},
		{"COUNT(a, b), c", []string{"COUNT ( a , b )", "c"}},
		{"a,, b", []string{"a", "", "b"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			parts := SplitTopLevel(Tokenize(tt.input), comma)
			if len(parts) != len(tt.expected) {
				t.Fatalf("Expected %d parts, got %d", len(tt.expected), len(parts))
			}
			for i, part := range parts {
				if got := values(part); got != tt.expected[i] {
					t.Errorf("Part %d: expected %q, got %q", i, tt.expected[i], got)
				}
			}
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"COUNT(*)", "COUNT(*)"},
		{"CONCAT(a, b)", "CONCAT(a, b)"},
		{"price * 2", "price * 2"},
		{"MAX( id )", "MAX(id)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Text(Tokenize(tt.input)); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"SELECT 1", KindSelect},
		{"select * from t", KindSelect},
		{"INSERT INTO t VALUES (1)", KindInsert},
		{"UPDATE t SET a = 1", KindUpdate},
		{"DELETE FROM t", KindDelete},
		{"DROP TABLE t", KindUnrecognized},
		{"`SELECT`", KindUnrecognized},
		{"", KindUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ClassifyText(tt.input); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}
