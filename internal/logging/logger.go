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
Package logging provides structured logging for sqlshape.

The logging package implements a small leveled logger with:
  - Multiple log levels (DEBUG, INFO, WARN, ERROR)
  - Structured logging with key-value fields
  - Component-based logging for easy filtering
  - Text output (coloured on terminals) or JSON lines
  - Thread-safe operation

Usage:

	logger := logging.NewLogger("analyzer")
	logger.Debug("Analysis complete", "kind", "SELECT", "params", 2)
	logger.Warn("Analysis failed", "error", err)

Library code logs to stderr by default so that command output on stdout
stays machine readable.
*/
package logging

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

// Level represents the severity of a log message.
type Level int

const (
	// DEBUG level for detailed debugging information.
	DEBUG Level = iota
	// INFO level for general operational information.
	INFO
	// WARN level for warning conditions.
	WARN
	// ERROR level for error conditions.
	ERROR
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level. Unknown names map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Entry represents a single log entry with all its metadata.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger provides structured logging capabilities.
type Logger struct {
	component string
	level     *Level // overrides the global level when set
	mu        sync.Mutex
}

// Config holds logger configuration options.
type Config struct {
	Level    Level
	Output   io.Writer
	JSONMode bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:    INFO,
		Output:   os.Stderr,
		JSONMode: false,
	}
}

// globalConfig holds the global logger configuration.
var (
	globalConfig = DefaultConfig()
	globalMu     sync.RWMutex
)

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Level = level
}

// GlobalLevel returns the global log level.
func GlobalLevel() Level {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig.Level
}

// SetGlobalOutput sets the global log output.
func SetGlobalOutput(w io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Output = w
}

// SetJSONMode enables or disables JSON output mode.
func SetJSONMode(enabled bool) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.JSONMode = enabled
}

// Configure applies a full configuration at once.
func Configure(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	globalConfig = cfg
}

// NewLogger creates a new Logger for the specified component. The logger
// follows later changes to the global configuration.
func NewLogger(component string) *Logger {
	return &Logger{component: component}
}

// WithLevel returns a new logger with its own minimum level.
func (l *Logger) WithLevel(level Level) *Logger {
	return &Logger{component: l.component, level: &level}
}

// Component returns the component name.
func (l *Logger) Component() string {
	return l.component
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	if l.level != nil {
		return level >= *l.level
	}
	return level >= GlobalLevel()
}

// log writes a log entry at the specified level.
func (l *Logger) log(level Level, msg string, args ...interface{}) {
	globalMu.RLock()
	minLevel := globalConfig.Level
	output := globalConfig.Output
	jsonMode := globalConfig.JSONMode
	globalMu.RUnlock()

	if l.level != nil {
		minLevel = *l.level
	}
	if level < minLevel {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
	}

	// Parse key-value pairs from args
	if len(args) > 0 {
		entry.Fields = make(map[string]interface{})
		for i := 0; i < len(args)-1; i += 2 {
			key, ok := args[i].(string)
			if !ok {
				key = fmt.Sprintf("arg%d", i)
			}
			entry.Fields[key] = fieldValue(args[i+1])
		}
		if len(args)%2 != 0 {
			entry.Fields["extra"] = fieldValue(args[len(args)-1])
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if jsonMode {
		writeJSON(output, entry)
	} else {
		writeText(output, entry, isTerminal(output))
	}
}

// fieldValue renders errors as their message; encoding/json would
// otherwise print an empty object for most error types.
func fieldValue(v interface{}) interface{} {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeJSON writes the entry in JSON format.
func writeJSON(w io.Writer, entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(w, "ERROR: failed to marshal log entry: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

// writeText writes the entry in human-readable text format:
//
//	2006-01-02T15:04:05.000Z [LEVEL] [component] message key=value ...
//
// Fields are sorted by key.
func writeText(w io.Writer, entry Entry, color bool) {
	timestamp := entry.Timestamp.Format("2006-01-02T15:04:05.000Z")

	var levelColor, resetColor string
	if color {
		switch entry.Level {
		case "DEBUG":
			levelColor = "\033[36m" // Cyan
		case "INFO":
			levelColor = "\033[32m" // Green
		case "WARN":
			levelColor = "\033[33m" // Yellow
		case "ERROR":
			levelColor = "\033[31m" // Red
		}
		resetColor = "\033[0m"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s[%-5s]%s [%s] %s",
		timestamp, levelColor, entry.Level, resetColor, entry.Component, entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}

	fmt.Fprintln(w, b.String())
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(ERROR, msg, args...)
}

// With returns a new logger with additional default fields.
func (l *Logger) With(args ...interface{}) *ContextLogger {
	fields := make(map[string]interface{})
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		fields[key] = args[i+1]
	}
	return &ContextLogger{
		logger: l,
		fields: fields,
	}
}

// ContextLogger is a logger with pre-set context fields.
type ContextLogger struct {
	logger *Logger
	fields map[string]interface{}
}

// Debug logs a message at DEBUG level with context fields.
func (c *ContextLogger) Debug(msg string, args ...interface{}) {
	c.logger.log(DEBUG, msg, c.mergeArgs(args)...)
}

// Info logs a message at INFO level with context fields.
func (c *ContextLogger) Info(msg string, args ...interface{}) {
	c.logger.log(INFO, msg, c.mergeArgs(args)...)
}

// Warn logs a message at WARN level with context fields.
func (c *ContextLogger) Warn(msg string, args ...interface{}) {
	c.logger.log(WARN, msg, c.mergeArgs(args)...)
}

// Error logs a message at ERROR level with context fields.
func (c *ContextLogger) Error(msg string, args ...interface{}) {
	c.logger.log(ERROR, msg, c.mergeArgs(args)...)
}

// mergeArgs merges context fields with additional args.
func (c *ContextLogger) mergeArgs(args []interface{}) []interface{} {
	result := make([]interface{}, 0, len(c.fields)*2+len(args))
	for k, v := range c.fields {
		result = append(result, k, v)
	}
	result = append(result, args...)
	return result
}

// ============================================================================
// Analysis Tracking
// ============================================================================

// analysisCounter is used for generating unique analysis IDs.
var analysisCounter uint64

// GenerateAnalysisID generates a unique analysis ID.
// Format: <counter>-<random_hex>
func GenerateAnalysisID() string {
	counter := atomic.AddUint64(&analysisCounter, 1)
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	return fmt.Sprintf("%d-%s", counter, hex.EncodeToString(randomBytes))
}

// AnalysisContext holds information about one analysis for logging.
type AnalysisContext struct {
	ID        string
	StartTime time.Time
	Statement string
}

// NewAnalysisContext creates a new analysis context. Long statements are
// shortened for the log line.
func NewAnalysisContext(statement string) *AnalysisContext {
	return &AnalysisContext{
		ID:        GenerateAnalysisID(),
		StartTime: time.Now(),
		Statement: Truncate(statement, 80),
	}
}

// Duration returns the duration since the analysis started.
func (a *AnalysisContext) Duration() time.Duration {
	return time.Since(a.StartTime)
}

// DurationMs returns the duration in milliseconds.
func (a *AnalysisContext) DurationMs() float64 {
	return float64(a.Duration().Microseconds()) / 1000.0
}

// LogComplete logs a completed analysis at DEBUG level.
func (a *AnalysisContext) LogComplete(logger *Logger, kind string, args ...interface{}) {
	baseArgs := []interface{}{
		"analysis_id", a.ID,
		"kind", kind,
		"status", "ok",
		"duration_ms", fmt.Sprintf("%.3f", a.DurationMs()),
	}
	baseArgs = append(baseArgs, args...)
	logger.Debug("Analysis completed", baseArgs...)
}

// LogError logs a failed analysis at WARN level.
func (a *AnalysisContext) LogError(logger *Logger, err error, args ...interface{}) {
	baseArgs := []interface{}{
		"analysis_id", a.ID,
		"statement", a.Statement,
		"status", "error",
		"error", err,
		"duration_ms", fmt.Sprintf("%.3f", a.DurationMs()),
	}
	baseArgs = append(baseArgs, args...)
	logger.Warn("Analysis failed", baseArgs...)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
