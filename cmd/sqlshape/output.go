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

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	ferrors "sqlshape/internal/errors"
	"sqlshape/internal/logging"
	"sqlshape/internal/sql"
)

// jsonError is the JSON form of an *errors.Error.
type jsonError struct {
	Code     int    `json:"code"`
	SQLSTATE string `json:"sqlstate"`
	Message  string `json:"message"`
	Token    string `json:"token,omitempty"`
	Pos      *int   `json:"pos,omitempty"`
}

// jsonResult is the JSON form of one analyzed statement.
type jsonResult struct {
	Statement   string           `json:"statement"`
	Kind        string           `json:"kind,omitempty"`
	Returns     *sql.ReturnShape `json:"returns,omitempty"`
	Params      []sql.ColumnType `json:"params,omitempty"`
	Diagnostics []jsonError      `json:"diagnostics,omitempty"`
	Error       *jsonError       `json:"error,omitempty"`
}

func toJSONError(err error) *jsonError {
	var e *ferrors.Error
	if !errors.As(err, &e) {
		return &jsonError{Message: err.Error()}
	}
	je := &jsonError{
		Code:     int(e.Code),
		SQLSTATE: string(e.SQLSTATE()),
		Message:  e.Message,
		Token:    e.Token,
	}
	if e.Pos != ferrors.NoPos {
		pos := e.Pos
		je.Pos = &pos
	}
	return je
}

func toJSONResult(r sql.BatchResult) jsonResult {
	out := jsonResult{Statement: r.Statement}
	if r.Err != nil {
		out.Error = toJSONError(r.Err)
		return out
	}
	a := r.Analysis
	out.Kind = a.Kind.String()
	out.Returns = &a.Returns
	out.Params = a.Params
	for _, d := range a.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, *toJSONError(d))
	}
	return out
}

// writeJSON writes all results as one indented JSON array.
func writeJSON(w io.Writer, results []sql.BatchResult) error {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = toJSONResult(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeText writes one block per statement:
//
//	-- SELECT id FROM users WHERE id = ?
//	returns: {id: INT}
//	params:  [INT]
func writeText(w io.Writer, results []sql.BatchResult) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "-- %s\n", logging.Truncate(r.Statement, 100))
		if r.Err != nil {
			fmt.Fprintln(w, ferrors.FormatErrorWithSQLSTATE(r.Err))
			continue
		}
		fmt.Fprintf(w, "returns: %s\n", r.Analysis.Returns)
		fmt.Fprintf(w, "params:  %s\n", formatParams(r.Analysis.Params))
		for _, d := range r.Analysis.Diagnostics {
			fmt.Fprintf(w, "warning: %s\n", d.Message)
		}
	}
}

func formatParams(params []sql.ColumnType) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = string(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
