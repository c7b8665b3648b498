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

// tableConstraintWords start a table-level definition rather than a column
// when not followed by a column type.
var tableConstraintWords = map[string]struct{}{
	"PRIMARY": {}, "UNIQUE": {}, "CONSTRAINT": {}, "FOREIGN": {}, "INDEX": {},
	"KEY": {}, "CHECK": {}, "FULLTEXT": {}, "SPATIAL": {},
}

// ParseSchema loads a schema from a script of CREATE TABLE statements:
//
//	CREATE [TEMPORARY] TABLE [IF NOT EXISTS] name (
//	    col TYPE [(n[, m])] [column constraints...],
//	    ...
//	    [PRIMARY KEY (...) | UNIQUE (...) | FOREIGN KEY ... | INDEX ... ]
//	) [table options];
//
// Declared types are normalized (INTEGER becomes INT, BOOL becomes
// BOOLEAN); unfamiliar type names are kept as open tags. Statements other
// than CREATE TABLE (CREATE INDEX, seed INSERTs...) are skipped.
func ParseSchema(script string) (*Schema, error) {
	s := NewSchema()
	for _, text := range SplitStatements(script) {
		tokens := Tokenize(text)
		if !isCreateTable(tokens) {
			continue
		}
		name, cols, err := parseCreateTable(tokens)
		if err != nil {
			return nil, err
		}
		if err := s.AddTable(name, cols...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func isCreateTable(tokens []Token) bool {
	if len(tokens) < 2 || !Is("CREATE")(tokens[0]) {
		return false
	}
	rest := tokens[1:]
	if rest[0].Type == TokenIdent && strings.EqualFold(rest[0].Value, "TEMPORARY") {
		rest = rest[1:]
	}
	return len(rest) > 0 && Is("TABLE")(rest[0])
}

func parseCreateTable(tokens []Token) (string, []Column, error) {
	rest := SliceFromFirstNonMatch(tokens, Is("CREATE", "TABLE").Or(isWord("TEMPORARY")))
	if len(rest) >= 3 && isWord("IF")(rest[0]) && Is("NOT")(rest[1]) && Is("EXISTS")(rest[2]) {
		rest = rest[3:]
	}

	if len(rest) == 0 || rest[0].Type != TokenIdent {
		return "", nil, invalidAt("expected table name after CREATE TABLE", rest)
	}
	name := NewColumnRef(rest[0]).Column // drop a database qualifier
	rest = rest[1:]

	if len(rest) == 0 || rest[0].Type != TokenLParen {
		return "", nil, invalidAt("expected ( after table name "+name, rest)
	}
	end := matchingParen(rest, 0)
	if end < 0 {
		return "", nil, invalidAt("unbalanced parentheses in table "+name, rest)
	}

	var cols []Column
	for _, def := range SplitTopLevel(rest[1:end], comma) {
		if len(def) == 0 {
			return "", nil, invalidAt("empty definition in table "+name, rest)
		}
		if isTableConstraint(def) {
			continue
		}
		col, err := parseColumnDef(def, name)
		if err != nil {
			return "", nil, err
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return "", nil, invalidAt("table "+name+" has no columns", rest)
	}
	return name, cols, nil
}

func parseColumnDef(def []Token, table string) (Column, error) {
	nameTok := def[0]
	if nameTok.Type != TokenIdent && nameTok.Type != TokenKeyword {
		return Column{}, invalidAt("expected column name in table "+table, def)
	}
	if len(def) < 2 || def[1].Type != TokenIdent {
		return Column{}, invalidAt("expected type for column "+nameTok.Value+" in table "+table, def[1:])
	}

	typeName := def[1].Value
	// Two-word type names.
	if len(def) > 2 && def[2].Type == TokenIdent {
		switch strings.ToUpper(typeName) + " " + strings.ToUpper(def[2].Value) {
		case "CHARACTER VARYING":
			typeName = "VARCHAR"
		case "DOUBLE PRECISION":
			typeName = "DOUBLE"
		}
	}
	return Column{Name: nameTok.Value, Type: NormalizeType(typeName)}, nil
}

// isTableConstraint tells "KEY idx (a)" apart from a column named key.
func isTableConstraint(def []Token) bool {
	first := strings.ToUpper(def[0].Value)
	if def[0].Type != TokenIdent && def[0].Type != TokenKeyword {
		return false
	}
	if _, ok := tableConstraintWords[first]; !ok {
		return false
	}
	if len(def) > 1 && def[1].Type == TokenIdent && IsKnownType(def[1].Value) {
		return false
	}
	return true
}

func invalidAt(reason string, rest []Token) error {
	err := ferrors.InvalidSchema(reason)
	if len(rest) > 0 {
		err.At(rest[0].Value, rest[0].Pos)
	}
	return err
}
