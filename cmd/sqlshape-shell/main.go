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
Package main is the entry point for the sqlshape interactive shell.

Shell Overview:
===============

sqlshape-shell is a REPL over the analyzer. Each statement typed at the
prompt is analyzed against the loaded schema and its return and parameter
shapes are printed. Statements may span several lines and end with a
semicolon.

Local Commands:
===============

  - \q or \quit          : Exit the shell
  - \h or \help          : Display help information
  - \d [table]           : List tables or describe one
  - \stats               : Analysis cache statistics
  - \metrics             : Metrics in Prometheus text format
  - \invalidate <table>  : Drop cached analyses that use a table
  - \strict              : Toggle strict mode

History is kept in ~/.sqlshape_history. When standard input is not a
terminal the shell reads statements line by line without editing support.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"sqlshape/internal/banner"
	"sqlshape/internal/cache"
	"sqlshape/internal/config"
	ferrors "sqlshape/internal/errors"
	"sqlshape/internal/health"
	"sqlshape/internal/logging"
	"sqlshape/internal/metrics"
	"sqlshape/internal/sql"
)

const (
	prompt             = "sqlshape> "
	continuationPrompt = "    -> "
)

func main() {
	cfgMgr := config.Global()
	if err := cfgMgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg := cfgMgr.Get()

	schemaFile := flag.String("schema", cfg.SchemaFile, "CREATE TABLE script to resolve against")
	strict := flag.Bool("strict", cfg.Strict, "Start in strict mode")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	noBanner := flag.Bool("no-banner", false, "Do not print the startup banner")
	flag.Parse()

	cfg.SchemaFile = *schemaFile
	cfg.Strict = *strict
	cfg.LogLevel = *logLevel
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, ferrors.FormatError(err))
		os.Exit(2)
	}

	logging.Configure(logging.Config{
		Level:    logging.ParseLevel(cfg.LogLevel),
		Output:   os.Stderr,
		JSONMode: cfg.LogJSON,
	})

	schema := sql.NewSchema()
	if cfg.SchemaFile != "" {
		data, err := os.ReadFile(os.ExpandEnv(cfg.SchemaFile))
		if err != nil {
			fmt.Fprintln(os.Stderr, ferrors.FormatError(ferrors.Wrap(ferrors.ErrCodeSchema, "failed to read schema file", err).WithDetail(cfg.SchemaFile)))
			os.Exit(2)
		}
		if schema, err = sql.ParseSchema(string(data)); err != nil {
			fmt.Fprintln(os.Stderr, ferrors.FormatError(err))
			os.Exit(2)
		}
	}

	var analysisCache *sql.AnalysisCache
	if cfg.CacheEnabled {
		analysisCache = sql.NewAnalysisCache(cache.Config{
			MaxEntries: cfg.CacheSize,
			TTL:        cfg.CacheTTL(),
			Enabled:    true,
		})
	}

	checker := health.NewChecker(banner.Version)
	checker.RegisterCheck("schema", health.SchemaCheck(schema.Len))
	if analysisCache != nil {
		checker.RegisterCheck("cache", health.CacheCheck(analysisCache.Stats))
	} else {
		checker.RegisterCheck("cache", health.CacheCheck(nil))
	}

	m := metrics.Get()
	metricsServer := metrics.NewServer(cfg.MetricsAddr, m)
	checker.Mount(metricsServer)
	if err := metricsServer.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: metrics server not started: %v\n", err)
	}
	defer metricsServer.Stop()

	s := newSession(schema, sql.Options{Strict: cfg.Strict, Cache: analysisCache, Metrics: m}, os.Stdout)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		runPiped(s, os.Stdin)
		return
	}

	if !*noBanner {
		banner.Print(cfg, schema.Len())
	}
	if err := runInteractive(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getHistoryFilePath returns the path to the history file.
func getHistoryFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sqlshape_history")
}

// createCompleter creates a readline completer for tab completion.
func createCompleter(words []string) *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(words))
	for _, w := range words {
		items = append(items, readline.PcItem(w))
	}
	return readline.NewPrefixCompleter(items...)
}

// filterInput filters input runes for readline.
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false // Disable Ctrl+Z
	}
	return r, true
}

func runInteractive(s *session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     getHistoryFilePath(),
		AutoComplete:    createCompleter(s.completions()),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	var buf inputBuffer
	for {
		if buf.pending() {
			rl.SetPrompt(continuationPrompt)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if buf.pending() {
				buf.reset()
			} else {
				fmt.Println("(Use \\q to quit or Ctrl+D to exit)")
			}
			continue
		}
		if err == io.EOF {
			fmt.Println("Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		input, ok := buf.add(line)
		if !ok {
			continue
		}
		if !s.execute(input) {
			fmt.Println("Goodbye!")
			return nil
		}
	}
}

// runPiped reads from a non-terminal, echoing nothing but results.
func runPiped(s *session, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var buf inputBuffer
	for scanner.Scan() {
		input, ok := buf.add(scanner.Text())
		if !ok {
			continue
		}
		if !s.execute(input) {
			return
		}
	}
	if input := buf.flush(); input != "" {
		s.execute(input)
	}
}

// inputBuffer accumulates lines until a statement is complete. Backslash
// commands complete on their own line; statements end with a semicolon.
type inputBuffer struct {
	sb strings.Builder
}

func (b *inputBuffer) pending() bool {
	return b.sb.Len() > 0
}

func (b *inputBuffer) reset() {
	b.sb.Reset()
}

// add appends line and returns the complete input when there is one.
func (b *inputBuffer) add(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !b.pending() {
		if line == "" {
			return "", false
		}
		if strings.HasPrefix(line, "\\") {
			return line, true
		}
	}
	if b.pending() {
		b.sb.WriteByte('\n')
	}
	b.sb.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		return "", false
	}
	return b.flush(), true
}

// flush returns whatever has been buffered and empties the buffer.
func (b *inputBuffer) flush() string {
	input := strings.TrimSpace(b.sb.String())
	b.sb.Reset()
	return input
}
