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
	"fmt"
	"io"
	"sort"
	"strings"

	ferrors "sqlshape/internal/errors"
	"sqlshape/internal/metrics"
	"sqlshape/internal/sql"
)

// sqlKeywords are offered for tab completion next to the shell commands
// and the schema's table names.
var sqlKeywords = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "FROM", "WHERE", "AND", "OR", "NOT",
	"IN", "LIKE", "ORDER", "BY", "ASC", "DESC", "LIMIT", "OFFSET", "JOIN", "LEFT",
	"RIGHT", "INNER", "OUTER", "ON", "AS", "GROUP", "HAVING", "DISTINCT",
	"VALUES", "INTO", "SET", "COUNT", "MIN", "MAX",
}

// shellCommands are the local backslash commands.
var shellCommands = []string{
	"\\q", "\\quit", "\\h", "\\help", "\\d", "\\stats", "\\metrics", "\\invalidate", "\\strict",
}

// session holds the state of one interactive session.
type session struct {
	analyzer  *sql.Analyzer
	strict    *sql.Analyzer
	metrics   *metrics.Metrics
	useStrict bool
	out       io.Writer
}

func newSession(schema *sql.Schema, opts sql.Options, out io.Writer) *session {
	lenient := opts
	lenient.Strict = false
	strict := opts
	strict.Strict = true
	return &session{
		analyzer:  sql.NewAnalyzer(schema, lenient),
		strict:    sql.NewAnalyzer(schema, strict),
		metrics:   opts.Metrics,
		useStrict: opts.Strict,
		out:       out,
	}
}

// completions returns the words offered for tab completion.
func (s *session) completions() []string {
	words := append([]string(nil), shellCommands...)
	words = append(words, sqlKeywords...)
	return append(words, s.analyzer.Schema().TableNames()...)
}

// execute runs one complete input: a backslash command or a statement.
// It returns false when the session should end.
func (s *session) execute(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return true
	}
	if strings.HasPrefix(input, "\\") {
		return s.command(input)
	}
	s.analyze(input)
	return true
}

func (s *session) analyze(statement string) {
	a := s.analyzer
	if s.useStrict {
		a = s.strict
	}
	res, err := a.Analyze(statement)
	if err != nil {
		fmt.Fprintln(s.out, ferrors.FormatErrorWithSQLSTATE(err))
		return
	}
	fmt.Fprintf(s.out, "kind:    %s\n", res.Kind)
	fmt.Fprintf(s.out, "returns: %s\n", res.Returns)
	params := make([]string, len(res.Params))
	for i, p := range res.Params {
		params[i] = fmt.Sprintf("$%d %s", i+1, p)
	}
	fmt.Fprintf(s.out, "params:  [%s]\n", strings.Join(params, ", "))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(s.out, "warning: %s\n", d.Message)
	}
}

func (s *session) command(input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "\\q", "\\quit":
		return false
	case "\\h", "\\help":
		s.printHelp()
	case "\\d":
		if len(fields) > 1 {
			s.describe(fields[1])
		} else {
			s.listTables()
		}
	case "\\stats":
		s.printStats()
	case "\\metrics":
		if s.metrics != nil {
			s.metrics.WritePrometheus(s.out)
		}
	case "\\invalidate":
		if len(fields) < 2 {
			fmt.Fprintln(s.out, "usage: \\invalidate <table>")
			return true
		}
		// Both analyzers share one cache.
		n := s.analyzer.Invalidate(fields[1])
		fmt.Fprintf(s.out, "invalidated %d cached analyses\n", n)
	case "\\strict":
		s.useStrict = !s.useStrict
		state := "off"
		if s.useStrict {
			state = "on"
		}
		fmt.Fprintf(s.out, "strict mode %s\n", state)
	default:
		fmt.Fprintf(s.out, "unknown command: %s (type \\h for help)\n", fields[0])
	}
	return true
}

func (s *session) listTables() {
	tables := s.analyzer.Schema().Tables()
	if len(tables) == 0 {
		fmt.Fprintln(s.out, "no tables loaded")
		return
	}
	for _, t := range tables {
		fmt.Fprintf(s.out, "%-24s %d columns\n", t.Name, len(t.Columns))
	}
}

func (s *session) describe(name string) {
	t, ok := s.analyzer.Schema().Table(name)
	if !ok {
		fmt.Fprintln(s.out, ferrors.FormatErrorWithSQLSTATE(ferrors.UnresolvedTable(name)))
		return
	}
	fmt.Fprintf(s.out, "Table %s\n", t.Name)
	for _, c := range t.Columns {
		fmt.Fprintf(s.out, "  %-22s %s\n", c.Name, c.Type)
	}
}

func (s *session) printStats() {
	c := s.analyzer.Cache()
	if c == nil {
		fmt.Fprintln(s.out, "cache disabled")
		return
	}
	st := c.Stats()
	fmt.Fprintf(s.out, "entries:   %d/%d\n", st.Entries, st.MaxEntries)
	fmt.Fprintf(s.out, "hits:      %d\n", st.Hits)
	fmt.Fprintf(s.out, "misses:    %d\n", st.Misses)
	fmt.Fprintf(s.out, "evictions: %d\n", st.Evictions)
	fmt.Fprintf(s.out, "hit rate:  %.1f%%\n", st.HitRate*100)
}

func (s *session) printHelp() {
	help := map[string]string{
		"\\q, \\quit":           "Exit the shell",
		"\\h, \\help":           "Show this help",
		"\\d":                  "List tables",
		"\\d <table>":          "Describe a table",
		"\\stats":              "Show analysis cache statistics",
		"\\metrics":            "Show metrics in Prometheus format",
		"\\invalidate <table>": "Drop cached analyses that use a table",
		"\\strict":             "Toggle strict mode",
	}
	keys := make([]string, 0, len(help))
	for k := range help {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(s.out, "Enter a SELECT, INSERT, UPDATE or DELETE statement terminated by ;")
	fmt.Fprintln(s.out)
	for _, k := range keys {
		fmt.Fprintf(s.out, "  %-22s %s\n", k, help[k])
	}
}
