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

var deleteModifier = Is("DELETE", "LOW_PRIORITY", "IGNORE").Or(isWord("QUICK"))

// parseDelete parses a single-table DELETE. Parameters come from the
// filter clause (and LIMIT) only.
func parseDelete(tokens []Token) (*DeleteStmt, error) {
	head := SliceFromFirstNonMatch(tokens, deleteModifier)
	if len(head) == 0 || !Is("FROM")(head[0]) {
		if i := IndexOf(head, Is("FROM")); i > 0 {
			return nil, ferrors.UnsupportedStatement("multi-table DELETE").At(head[0].Value, head[0].Pos)
		}
		last := tokens[len(tokens)-1]
		return nil, ferrors.MalformedClause("DELETE", "missing FROM").At(last.Value, last.Pos)
	}

	target := SliceBetween(head, Is("FROM"), Is("WHERE").Or(tailStart))
	if i := IndexOf(target, joinSeparator.Or(Is("USING"))); i >= 0 {
		return nil, ferrors.UnsupportedStatement("multi-table DELETE").At(target[i].Value, target[i].Pos)
	}
	ref, rest, err := parseTableAlias(target, "FROM")
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, ferrors.MalformedClause("FROM", "unexpected "+quote(rest[0].Value)+" after table name").At(rest[0].Value, rest[0].Pos)
	}

	if err := checkWhere(tokens); err != nil {
		return nil, err
	}

	return &DeleteStmt{Table: ref, Params: scanPlaceholders(tokens, ClauseWhere)}, nil
}
