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
	ferrors "sqlshape/internal/errors"
)

var updateModifier = Is("UPDATE", "LOW_PRIORITY", "IGNORE")

// parseUpdate parses a single-table UPDATE. The return shape of an UPDATE
// is always STATUS, so only the target table, the assigned columns and the
// placeholders are kept. SET col = ? assignments are correlated the same
// way as WHERE comparisons.
func parseUpdate(tokens []Token) (*UpdateStmt, error) {
	head := SliceFromFirstNonMatch(tokens, updateModifier)
	setIdx := IndexOf(head, Is("SET"))
	if setIdx < 0 {
		last := tokens[len(tokens)-1]
		return nil, ferrors.MalformedClause("UPDATE", "missing SET").At(last.Value, last.Pos)
	}

	target := head[:setIdx]
	if i := IndexOf(target, joinSeparator); i >= 0 {
		return nil, ferrors.UnsupportedStatement("multi-table UPDATE").At(target[i].Value, target[i].Pos)
	}
	ref, rest, err := parseTableAlias(target, "UPDATE")
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, ferrors.MalformedClause("UPDATE", "unexpected "+quote(rest[0].Value)+" before SET").At(rest[0].Value, rest[0].Pos)
	}
	stmt := &UpdateStmt{Table: ref}

	set := head[setIdx]
	assignments := SliceBetween(head, Is("SET"), Is("WHERE").Or(tailStart))
	if len(assignments) == 0 {
		return nil, ferrors.MalformedClause("SET", "empty assignment list").At(set.Value, set.Pos)
	}
	for _, part := range SplitTopLevel(assignments, comma) {
		if len(part) < 3 || part[0].Type != TokenIdent || part[1].Type != TokenEqual {
			t := set
			if len(part) > 0 {
				t = part[0]
			}
			return nil, ferrors.MalformedClause("SET", "expected column = value").At(t.Value, t.Pos)
		}
		stmt.Assigned = append(stmt.Assigned, NewColumnRef(part[0]))
	}

	if err := checkWhere(tokens); err != nil {
		return nil, err
	}

	stmt.Params = scanPlaceholders(tokens, ClauseSet)
	return stmt, nil
}
