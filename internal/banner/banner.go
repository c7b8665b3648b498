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
Package banner provides the startup banner for the sqlshape shell.

ANSI Color Codes:
=================

The package uses ANSI escape sequences for terminal colors. Colors are
only written when the destination is a terminal; redirected output gets
plain text.

Format: \033[<code>m

Usage:
======

	banner.PrintTo(os.Stdout, cfg, schema.Len())
*/
package banner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"sqlshape/internal/config"
)

// logo is the ASCII art shown at shell startup.
const logo = `          _     _
 ___  __ _| |___| |__   __ _ _ __   ___
/ __|/ _' | / __| '_ \ / _' | '_ \ / _ \
\__ \ (_| | \__ \ | | | (_| | |_) |  __/
|___/\__, |_|___/_| |_|\__,_| .__/ \___|
        |_|                 |_|`

// ANSI escape codes for terminal text formatting.
const (
	AnsiRed    = "\033[31m"
	AnsiGreen  = "\033[32m"
	AnsiYellow = "\033[33m"
	AnsiCyan   = "\033[36m"
	AnsiReset  = "\033[0m"
	AnsiBold   = "\033[1m"
	AnsiDim    = "\033[2m"
)

// Version information for sqlshape.
const (
	Version   = "01.26.14"
	Copyright = "(c)2026 Firefly Software Solutions Inc"
	License   = "Licensed under Apache 2.0"
)

// palette holds the escape codes used for one writer.
type palette struct {
	red, green, yellow, cyan, reset, bold, dim string
}

// paletteFor returns real codes for a terminal and empty strings otherwise.
func paletteFor(w io.Writer) palette {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return palette{AnsiRed, AnsiGreen, AnsiYellow, AnsiCyan, AnsiReset, AnsiBold, AnsiDim}
	}
	return palette{}
}

// Print displays the banner on stdout.
func Print(cfg *config.Config, tables int) {
	PrintTo(os.Stdout, cfg, tables)
}

// PrintTo writes the banner, the configuration summary and the number of
// loaded tables to w.
func PrintTo(w io.Writer, cfg *config.Config, tables int) {
	p := paletteFor(w)

	fmt.Fprintln(w, p.cyan+logo+p.reset)
	fmt.Fprintln(w, p.cyan+p.bold+":: sqlshape ::                  (v"+Version+")"+p.reset)
	fmt.Fprintln(w, p.dim+"  Static SQL result and parameter shape analysis"+p.reset)
	fmt.Fprintln(w)

	printSectionHeader(w, p, "Session", 60)
	source := "defaults + environment"
	if cfg.ConfigFile != "" {
		source = cfg.ConfigFile
	}
	printRow2(w, fmtKV(p, "Config", source), fmtKV(p, "Log", cfg.LogLevel))

	schema := cfg.SchemaFile
	if schema == "" {
		schema = "(none)"
	}
	printRow2(w, fmtKV(p, "Schema", schema), fmtKV(p, "Tables", fmt.Sprintf("%d", tables)))

	var enabled, disabled []string
	if cfg.CacheEnabled {
		enabled = append(enabled, fmt.Sprintf("Cache(%d)", cfg.CacheSize))
	} else {
		disabled = append(disabled, "Cache")
	}
	if cfg.Strict {
		enabled = append(enabled, "Strict")
	} else {
		disabled = append(disabled, "Strict")
	}
	if cfg.MetricsAddr != "" {
		enabled = append(enabled, "Metrics("+cfg.MetricsAddr+")")
	}
	if len(enabled) > 0 {
		fmt.Fprintf(w, "  %sEnabled:%s  %s%s%s\n", p.dim, p.reset, p.green, strings.Join(enabled, ", "), p.reset)
	}
	if len(disabled) > 0 {
		fmt.Fprintf(w, "  %sDisabled:%s %s\n", p.dim, p.reset, p.dim+strings.Join(disabled, ", ")+p.reset)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.dim+"  "+Copyright+". "+License+p.reset)
	fmt.Fprintln(w)
}

func printSectionHeader(w io.Writer, p palette, title string, width int) {
	titleLen := len(title) + 4 // "[ title ]"
	leftPad := 2
	rightPad := width - leftPad - titleLen
	if rightPad < 0 {
		rightPad = 0
	}
	fmt.Fprintf(w, "  %s[ %s%s%s ]%s%s\n",
		p.dim+strings.Repeat("-", leftPad),
		p.reset+p.cyan+p.bold, title, p.reset+p.dim,
		strings.Repeat("-", rightPad),
		p.reset)
}

func fmtKV(p palette, key, value string) string {
	return fmt.Sprintf("%s%s:%s %s", p.dim, key, p.reset, value)
}

func printRow2(w io.Writer, col1, col2 string) {
	fmt.Fprintf(w, "  %-40s %s\n", col1, col2)
}
