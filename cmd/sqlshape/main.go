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
Package main is the entry point for the sqlshape command.

sqlshape reads a schema of CREATE TABLE statements and reports, for each
SQL statement given, the shape of its result rows and of its positional
parameters.

Input:
======

Statements are taken from, in order of preference:

  1. The -f flag: a script of statements separated by semicolons
  2. The remaining command-line arguments, joined into one statement
  3. Standard input, when it is not a terminal

Command-Line Flags:
===================

  -schema     : CREATE TABLE script to resolve against
  -config     : Path to configuration file
  -f          : Script of statements to analyze
  -strict     : Fail on unresolved tables and columns
  -output     : text or json
  -workers    : Concurrent analyses for scripts
  -log-level  : debug, info, warn, error
  -log-json   : JSON log output
  -metrics-addr : Serve Prometheus metrics while running

Usage Examples:
===============

	sqlshape -schema schema.sql "SELECT id, name FROM users WHERE id = ?"
	sqlshape -schema schema.sql -f queries.sql -output json
	cat queries.sql | sqlshape -schema schema.sql

The exit status is 1 if any statement could not be analyzed.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

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

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "sqlshape v%s - static SQL result and parameter shape analysis\n\n", banner.Version)
	fmt.Fprintln(out, "USAGE:")
	fmt.Fprintln(out, "  sqlshape [options] [statement]")
	fmt.Fprintln(out, "  sqlshape [options] -f script.sql")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "OPTIONS:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "ENVIRONMENT VARIABLES:")
	fmt.Fprintln(out, "  SQLSHAPE_SCHEMA_FILE, SQLSHAPE_STRICT, SQLSHAPE_OUTPUT, SQLSHAPE_WORKERS,")
	fmt.Fprintln(out, "  SQLSHAPE_CACHE_ENABLED, SQLSHAPE_CACHE_SIZE, SQLSHAPE_CACHE_TTL_SECS,")
	fmt.Fprintln(out, "  SQLSHAPE_METRICS_ADDR, SQLSHAPE_LOG_LEVEL, SQLSHAPE_LOG_JSON, SQLSHAPE_CONFIG_FILE")
}

func main() {
	os.Exit(run())
}

func run() int {
	cfgMgr := config.Global()
	if err := cfgMgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg := cfgMgr.Get()

	configFile := flag.String("config", "", "Path to configuration file")
	schemaFile := flag.String("schema", cfg.SchemaFile, "CREATE TABLE script to resolve against")
	scriptFile := flag.String("f", "", "Script of statements to analyze")
	strict := flag.Bool("strict", cfg.Strict, "Fail on unresolved tables and columns")
	output := flag.String("output", cfg.Output, "Output format: text or json")
	workers := flag.Int("workers", cfg.Workers, "Concurrent analyses for scripts")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	logJSON := flag.Bool("log-json", cfg.LogJSON, "Enable JSON log output")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("sqlshape version %s\n", banner.Version)
		return 0
	}

	// An explicit config file replaces the discovered one; environment
	// variables still override it.
	if *configFile != "" {
		if err := cfgMgr.LoadFromFile(*configFile); err != nil {
			fmt.Fprintln(os.Stderr, ferrors.FormatError(err))
			return 2
		}
		cfgMgr.LoadFromEnv()
		cfg = cfgMgr.Get()
	}

	// Flags override file and environment, but only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "schema":
			cfg.SchemaFile = *schemaFile
		case "strict":
			cfg.Strict = *strict
		case "output":
			cfg.Output = strings.ToLower(*output)
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-json":
			cfg.LogJSON = *logJSON
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, ferrors.FormatError(err))
		return 2
	}
	cfgMgr.Set(cfg)

	logging.Configure(logging.Config{
		Level:    logging.ParseLevel(cfg.LogLevel),
		Output:   os.Stderr,
		JSONMode: cfg.LogJSON,
	})
	logger := logging.NewLogger("sqlshape")

	schema, err := loadSchema(cfg.SchemaFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, ferrors.FormatError(err))
		return 2
	}
	logger.Debug("Schema loaded", "file", cfg.SchemaFile, "tables", schema.Len(), "fingerprint", schema.Fingerprint())

	statements, err := readStatements(*scriptFile, flag.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, ferrors.FormatError(err))
		return 2
	}
	if len(statements) == 0 {
		printUsage()
		return 2
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
		logger.Error("Failed to start metrics server", "addr", cfg.MetricsAddr, "error", err)
		return 2
	}
	defer metricsServer.Stop()

	analyzer := sql.NewAnalyzer(schema, sql.Options{
		Strict:  cfg.Strict,
		Cache:   analysisCache,
		Metrics: m,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := analyzer.AnalyzeBatch(ctx, statements, cfg.Workers)
	if err != nil {
		logger.Warn("Analysis interrupted", "error", err)
		return 130
	}

	if cfg.Output == config.OutputJSON {
		if err := writeJSON(os.Stdout, results); err != nil {
			logger.Error("Failed to write output", "error", err)
			return 2
		}
	} else {
		writeText(os.Stdout, results)
	}

	for _, r := range results {
		if r.Err != nil {
			return 1
		}
	}
	return 0
}

// loadSchema reads a CREATE TABLE script. Without a file the schema is
// empty and every reference resolves to UNKNOWN.
func loadSchema(path string) (*sql.Schema, error) {
	if path == "" {
		return sql.NewSchema(), nil
	}
	data, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeSchema, "failed to read schema file", err).WithDetail(path)
	}
	return sql.ParseSchema(string(data))
}

// readStatements collects the statements to analyze from a script file,
// the command-line arguments or a piped stdin.
func readStatements(script string, args []string, stdin *os.File) ([]string, error) {
	switch {
	case script != "":
		data, err := os.ReadFile(script)
		if err != nil {
			return nil, ferrors.Wrap(ferrors.ErrCodeConfig, "failed to read script", err).WithDetail(script)
		}
		return sql.SplitStatements(string(data)), nil
	case len(args) > 0:
		return []string{strings.Join(args, " ")}, nil
	case !term.IsTerminal(int(stdin.Fd())):
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, ferrors.Wrap(ferrors.ErrCodeConfig, "failed to read standard input", err)
		}
		return sql.SplitStatements(string(data)), nil
	default:
		return nil, nil
	}
}
