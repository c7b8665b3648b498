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
Package sql contains the column type tags used in schemas and shapes.

Column Types:
=============

A ColumnType is an open string tag. The constants below cover the common
SQL types and are what the DDL schema loader produces, but a host may put
any tag into a Schema and it flows through analysis untouched.

Two tags are reserved:

  - UNKNOWN: a reference that could not be resolved against the schema, or
    a placeholder whose column could not be determined.
  - STATUS: the opaque result of INSERT, UPDATE and DELETE statements,
    which return a status indicator rather than rows.
*/
package sql

import "strings"

// ColumnType is a primitive type tag attached to a column.
type ColumnType string

// Column type constants.
const (
	TypeINT       ColumnType = "INT"
	TypeBIGINT    ColumnType = "BIGINT"
	TypeSMALLINT  ColumnType = "SMALLINT"
	TypeTEXT      ColumnType = "TEXT"
	TypeVARCHAR   ColumnType = "VARCHAR"
	TypeCHAR      ColumnType = "CHAR"
	TypeBOOLEAN   ColumnType = "BOOLEAN"
	TypeFLOAT     ColumnType = "FLOAT"
	TypeDOUBLE    ColumnType = "DOUBLE"
	TypeREAL      ColumnType = "REAL"
	TypeDECIMAL   ColumnType = "DECIMAL"
	TypeTIMESTAMP ColumnType = "TIMESTAMP"
	TypeDATETIME  ColumnType = "DATETIME"
	TypeDATE      ColumnType = "DATE"
	TypeTIME      ColumnType = "TIME"
	TypeBLOB      ColumnType = "BLOB"
	TypeBINARY    ColumnType = "BINARY"
	TypeVARBINARY ColumnType = "VARBINARY"
	TypeUUID      ColumnType = "UUID"
	TypeJSONB     ColumnType = "JSONB"
	TypeSERIAL    ColumnType = "SERIAL"

	// TypeUnknown marks an unresolved reference.
	TypeUnknown ColumnType = "UNKNOWN"
	// TypeStatus is the fixed return type of non-SELECT statements.
	TypeStatus ColumnType = "STATUS"
)

// typeAliases maps declared type names to their canonical tag.
var typeAliases = map[string]ColumnType{
	"INT":        TypeINT,
	"INTEGER":    TypeINT,
	"MEDIUMINT":  TypeINT,
	"BIGINT":     TypeBIGINT,
	"SMALLINT":   TypeSMALLINT,
	"TINYINT":    TypeSMALLINT,
	"TEXT":       TypeTEXT,
	"TINYTEXT":   TypeTEXT,
	"MEDIUMTEXT": TypeTEXT,
	"LONGTEXT":   TypeTEXT,
	"VARCHAR":    TypeVARCHAR,
	"CHAR":       TypeCHAR,
	"CHARACTER":  TypeCHAR,
	"BOOLEAN":    TypeBOOLEAN,
	"BOOL":       TypeBOOLEAN,
	"FLOAT":      TypeFLOAT,
	"DOUBLE":     TypeDOUBLE,
	"REAL":       TypeREAL,
	"DECIMAL":    TypeDECIMAL,
	"NUMERIC":    TypeDECIMAL,
	"TIMESTAMP":  TypeTIMESTAMP,
	"DATETIME":   TypeDATETIME,
	"DATE":       TypeDATE,
	"TIME":       TypeTIME,
	"BLOB":       TypeBLOB,
	"BYTEA":      TypeBLOB,
	"BINARY":     TypeBINARY,
	"VARBINARY":  TypeVARBINARY,
	"UUID":       TypeUUID,
	"JSONB":      TypeJSONB,
	"JSON":       TypeJSONB,
	"SERIAL":     TypeSERIAL,
}

// NormalizeType maps a declared type name to its canonical tag. Names that
// are not in the alias table are kept, upper-cased, as open tags.
func NormalizeType(name string) ColumnType {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if t, ok := typeAliases[upper]; ok {
		return t
	}
	return ColumnType(upper)
}

// IsKnownType reports whether name is one of the built-in type names.
func IsKnownType(name string) bool {
	_, ok := typeAliases[strings.ToUpper(name)]
	return ok
}

// IsUnknown reports whether t is the unresolved marker.
func (t ColumnType) IsUnknown() bool {
	return t == TypeUnknown
}
