// Package ddl maps semantic column types and declared datatype tags into
// SQLite column types.
package ddl

import (
	"fmt"

	"csvimport/internal/config"
	"csvimport/internal/typeinfer"
)

// MapType maps a scanned semantic type into the SQLite column type used by
// auto mode:
//   - Int32, Int64 -> INTEGER
//   - Decimal      -> REAL
//   - Timestamp    -> TIMESTAMP
//   - Date         -> DATE
//   - Time         -> TIME
//   - others       -> TEXT
//
// The temporal names carry NUMERIC affinity in SQLite; the importer binds
// ISO-8601 text, which SQLite stores unchanged.
func MapType(t typeinfer.SemanticType) string {
	switch t {
	case typeinfer.Int32, typeinfer.Int64:
		return "INTEGER"
	case typeinfer.Decimal:
		return "REAL"
	case typeinfer.Timestamp:
		return "TIMESTAMP"
	case typeinfer.Date:
		return "DATE"
	case typeinfer.Time:
		return "TIME"
	default:
		return "TEXT"
	}
}

// MapDatatype maps a parsed datatype tag from an explicit destination into a
// SQLite column type. Enum columns are TEXT; their CHECK constraint is added
// by FromDestination.
func MapDatatype(d config.Datatype) string {
	switch d.Kind {
	case config.DatatypeInteger:
		return "INTEGER"
	case config.DatatypeDate:
		return "DATE"
	case config.DatatypeTime:
		return "TIME"
	case config.DatatypeTimestamp:
		return "TIMESTAMP"
	case config.DatatypeNumeric:
		if d.Precision > 0 {
			return fmt.Sprintf("NUMERIC(%d,%d)", d.Precision, d.Scale)
		}
		return "NUMERIC"
	case config.DatatypeChar:
		return fmt.Sprintf("CHAR(%d)", d.Length)
	default:
		return "TEXT"
	}
}
