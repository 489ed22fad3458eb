// Package typeinfer classifies raw text cells into one semantic type and
// coerces them into typed values.
//
// The same parsers back both directions: Detect is used during the scan pass
// to discover a column type, Coerce is used during the import pass against a
// type that was already resolved. Coerce never re-detects.
package typeinfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SemanticType is the closed set of column types the importer understands.
type SemanticType int

const (
	// Unknown means "no observation yet"; it never ends up in a resolved map.
	Unknown SemanticType = iota
	Text
	Int32
	Int64
	Decimal
	Timestamp
	Date
	Time
)

func (t SemanticType) String() string {
	switch t {
	case Text:
		return "text"
	case Int32:
		return "integer"
	case Int64:
		return "bigint"
	case Decimal:
		return "decimal"
	case Timestamp:
		return "timestamp"
	case Date:
		return "date"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// ParseSemanticType is the inverse of String. It also accepts a few common
// aliases ("int", "int64", "numeric", "datetime").
func ParseSemanticType(s string) (SemanticType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string":
		return Text, nil
	case "integer", "int", "int32":
		return Int32, nil
	case "bigint", "int64":
		return Int64, nil
	case "decimal", "numeric", "money":
		return Decimal, nil
	case "timestamp", "datetime":
		return Timestamp, nil
	case "date":
		return Date, nil
	case "time":
		return Time, nil
	}
	return Unknown, fmt.Errorf("typeinfer: unknown semantic type %q", s)
}

// MarshalText renders the type by name so column maps serialize readably.
func (t SemanticType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsNumeric reports whether t belongs to the numeric family.
func (t SemanticType) IsNumeric() bool {
	return t == Int32 || t == Int64 || t == Decimal
}

// Value is a typed cell. Kind selects which payload field is meaningful:
//
//	Text                  -> Str
//	Int32, Int64          -> Int
//	Decimal               -> Dec
//	Timestamp, Date, Time -> Time
//
// A Null value binds SQL NULL regardless of Kind.
type Value struct {
	Kind SemanticType
	Null bool
	Str  string
	Int  int64
	Dec  decimal.Decimal
	Time time.Time
}

// NullValue returns a NULL of the given kind.
func NullValue(kind SemanticType) Value {
	return Value{Kind: kind, Null: true}
}

const (
	dateFormat      = "2006-01-02"
	timeFormat      = "15:04:05.999999999"
	timestampFormat = "2006-01-02 15:04:05.999999999"
)

// Arg returns the database/sql bind argument for v. Temporal values are
// rendered as ISO-8601 text, the storage convention SQLite date/time
// functions understand; decimals bind as float64 for REAL storage.
func (v Value) Arg() any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case Int32, Int64:
		return v.Int
	case Decimal:
		return v.Dec.InexactFloat64()
	case Timestamp:
		return v.Time.UTC().Format(timestampFormat)
	case Date:
		return v.Time.Format(dateFormat)
	case Time:
		return v.Time.Format(timeFormat)
	default:
		return v.Str
	}
}

// ExactArg is Arg with decimals bound as their decimal text instead of a
// float64, leaving the conversion to the column's NUMERIC affinity.
func (v Value) ExactArg() any {
	if !v.Null && v.Kind == Decimal {
		return v.Dec.String()
	}
	return v.Arg()
}
