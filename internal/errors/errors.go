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
Package errors provides structured error handling for sqlshape.

The errors package implements a small error system with:
  - Error categories (Syntax, Resolution, Schema, Config)
  - Error codes for programmatic handling
  - SQLSTATE mapping so callers can surface familiar codes
  - The offending token and its byte offset where one exists
  - Error wrapping for root cause analysis

Error Categories:
  - SyntaxError: unsupported statements and malformed clauses. These abort
    the analysis of a statement.
  - ResolutionError: table or column names missing from the schema. These
    never abort an analysis; they are reported as diagnostics next to a
    shape that carries UNKNOWN markers.
  - SchemaError: schema definitions that cannot be loaded.
  - ConfigError: invalid configuration values.
*/
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier.
type ErrorCode int

const (
	// Syntax errors (1000-1999)
	ErrCodeSyntax               ErrorCode = 1000
	ErrCodeUnsupportedStatement ErrorCode = 1100
	ErrCodeMalformedClause      ErrorCode = 1101

	// Resolution errors (2000-2999)
	ErrCodeResolution       ErrorCode = 2000
	ErrCodeUnresolvedTable  ErrorCode = 2001
	ErrCodeUnresolvedColumn ErrorCode = 2002

	// Schema errors (3000-3999)
	ErrCodeSchema          ErrorCode = 3000
	ErrCodeInvalidSchema   ErrorCode = 3001
	ErrCodeDuplicateTable  ErrorCode = 3002
	ErrCodeDuplicateColumn ErrorCode = 3003

	// Config errors (4000-4999)
	ErrCodeConfig ErrorCode = 4000
)

// Category represents the error category.
type Category string

const (
	CategorySyntax     Category = "SYNTAX"
	CategoryResolution Category = "RESOLUTION"
	CategorySchema     Category = "SCHEMA"
	CategoryConfig     Category = "CONFIG"
)

// SQLSTATE is a five character SQL standard status code.
type SQLSTATE string

const (
	SQLStateSyntaxError         SQLSTATE = "42601"
	SQLStateFeatureNotSupported SQLSTATE = "0A000"
	SQLStateUndefinedTable      SQLSTATE = "42P01"
	SQLStateUndefinedColumn     SQLSTATE = "42703"
	SQLStateInvalidDefinition   SQLSTATE = "42P16"
	SQLStateDuplicateTable      SQLSTATE = "42P07"
	SQLStateDuplicateColumn     SQLSTATE = "42701"
	SQLStateConfigError         SQLSTATE = "F0000"
	SQLStateInternal            SQLSTATE = "XX000"
)

// ToSQLSTATE maps an error code to its SQLSTATE.
func ToSQLSTATE(code ErrorCode) SQLSTATE {
	switch code {
	case ErrCodeSyntax, ErrCodeMalformedClause:
		return SQLStateSyntaxError
	case ErrCodeUnsupportedStatement:
		return SQLStateFeatureNotSupported
	case ErrCodeUnresolvedTable:
		return SQLStateUndefinedTable
	case ErrCodeResolution, ErrCodeUnresolvedColumn:
		return SQLStateUndefinedColumn
	case ErrCodeSchema, ErrCodeInvalidSchema:
		return SQLStateInvalidDefinition
	case ErrCodeDuplicateTable:
		return SQLStateDuplicateTable
	case ErrCodeDuplicateColumn:
		return SQLStateDuplicateColumn
	case ErrCodeConfig:
		return SQLStateConfigError
	default:
		return SQLStateInternal
	}
}

// NoPos marks an error that is not tied to a position in the input.
const NoPos = -1

// Error represents a structured error in sqlshape.
type Error struct {
	Code     ErrorCode
	Category Category
	Message  string
	Detail   string
	Hint     string
	Token    string // Offending token, if any
	Pos      int    // Byte offset of Token in the input, or NoPos
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("ERROR %d (%s): %s", e.Code, e.Category, e.Message)
	if e.Detail != "" {
		msg += " - " + e.Detail
	}
	if e.Pos != NoPos {
		msg += fmt.Sprintf(" - at offset %d", e.Pos)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, errors.ErrUnsupported) style comparisons work. A base code
// (1000, 2000...) matches every code in its range.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code%1000 == 0 {
		return t.Code/1000 == e.Code/1000
	}
	return t.Code == e.Code
}

// SQLSTATE returns the SQLSTATE code for this error.
func (e *Error) SQLSTATE() SQLSTATE {
	return ToSQLSTATE(e.Code)
}

// UserMessage returns a user-friendly error message.
func (e *Error) UserMessage() string {
	msg := fmt.Sprintf("ERROR: %s", e.Message)
	if e.Detail != "" {
		msg += fmt.Sprintf(" (%s)", e.Detail)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf("\nHINT: %s", e.Hint)
	}
	return msg
}

// WithDetail adds detail to the error.
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// WithHint adds a hint to the error.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// At records the offending token and its offset.
func (e *Error) At(token string, pos int) *Error {
	e.Token = token
	e.Pos = pos
	return e
}

// Sentinels for errors.Is comparisons; only the code is compared.
var (
	ErrUnsupported = &Error{Code: ErrCodeUnsupportedStatement}
	ErrMalformed   = &Error{Code: ErrCodeMalformedClause}
	ErrUnresolved  = &Error{Code: ErrCodeResolution}
)

// Wrap creates an error with the given code around a lower-level cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Category: categoryOf(code),
		Message:  message,
		Pos:      NoPos,
		Cause:    cause,
	}
}

func categoryOf(code ErrorCode) Category {
	switch code / 1000 {
	case 1:
		return CategorySyntax
	case 2:
		return CategoryResolution
	case 3:
		return CategorySchema
	default:
		return CategoryConfig
	}
}

// ============================================================================
// Syntax Error Constructors
// ============================================================================

// UnsupportedStatement creates an error for statements outside the
// supported grammar. what names the construct, e.g. "INSERT ... SET".
func UnsupportedStatement(what string) *Error {
	return &Error{
		Code:     ErrCodeUnsupportedStatement,
		Category: CategorySyntax,
		Message:  fmt.Sprintf("unsupported statement: %s", what),
		Hint:     "Supported statements: SELECT, INSERT ... VALUES, UPDATE, DELETE",
		Pos:      NoPos,
	}
}

// MalformedClause creates an error for a clause whose boundaries cannot
// be located.
func MalformedClause(clause, reason string) *Error {
	return &Error{
		Code:     ErrCodeMalformedClause,
		Category: CategorySyntax,
		Message:  fmt.Sprintf("malformed %s clause: %s", clause, reason),
		Hint:     "Check your SQL syntax",
		Pos:      NoPos,
	}
}

// ============================================================================
// Resolution Error Constructors
// ============================================================================

// UnresolvedTable creates an error for a table missing from the schema.
func UnresolvedTable(table string) *Error {
	return &Error{
		Code:     ErrCodeUnresolvedTable,
		Category: CategoryResolution,
		Message:  fmt.Sprintf("table not found: %s", table),
		Hint:     "Check that the table is declared in the schema",
		Token:    table,
		Pos:      NoPos,
	}
}

// UnresolvedColumn creates an error for a column missing from every table
// in scope. table is empty when the reference was unqualified.
func UnresolvedColumn(column, table string) *Error {
	msg := fmt.Sprintf("column not found: %s", column)
	if table != "" {
		msg = fmt.Sprintf("column not found: %s in table %s", column, table)
	}
	return &Error{
		Code:     ErrCodeUnresolvedColumn,
		Category: CategoryResolution,
		Message:  msg,
		Token:    column,
		Pos:      NoPos,
	}
}

// ============================================================================
// Schema Error Constructors
// ============================================================================

// InvalidSchema creates an error for a schema definition that cannot be
// loaded.
func InvalidSchema(reason string) *Error {
	return &Error{
		Code:     ErrCodeInvalidSchema,
		Category: CategorySchema,
		Message:  fmt.Sprintf("invalid schema: %s", reason),
		Pos:      NoPos,
	}
}

// DuplicateTable creates an error for a table declared twice.
func DuplicateTable(table string) *Error {
	return &Error{
		Code:     ErrCodeDuplicateTable,
		Category: CategorySchema,
		Message:  fmt.Sprintf("table already declared: %s", table),
		Token:    table,
		Pos:      NoPos,
	}
}

// DuplicateColumn creates an error for a column declared twice in a table.
func DuplicateColumn(column, table string) *Error {
	return &Error{
		Code:     ErrCodeDuplicateColumn,
		Category: CategorySchema,
		Message:  fmt.Sprintf("column %s declared twice in table %s", column, table),
		Token:    column,
		Pos:      NoPos,
	}
}

// ============================================================================
// Config Error Constructors
// ============================================================================

// ConfigError creates an error for an invalid configuration value.
func ConfigError(key, reason string) *Error {
	return &Error{
		Code:     ErrCodeConfig,
		Category: CategoryConfig,
		Message:  fmt.Sprintf("invalid %s: %s", key, reason),
		Pos:      NoPos,
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

// IsSyntaxError checks if an error is a syntax error.
func IsSyntaxError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == CategorySyntax
	}
	return false
}

// IsResolutionError checks if an error is an unresolved reference.
func IsResolutionError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == CategoryResolution
	}
	return false
}

// CodeOf returns the error code if err wraps an *Error, or 0 otherwise.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// FormatError formats an error for user display.
func FormatError(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return fmt.Sprintf("ERROR: %v", err)
}

// FormatErrorWithSQLSTATE formats an error with its SQLSTATE prefix.
func FormatErrorWithSQLSTATE(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return fmt.Sprintf("[%s] %s", e.SQLSTATE(), e.UserMessage())
	}
	return fmt.Sprintf("[%s] ERROR: %v", SQLStateInternal, err)
}
