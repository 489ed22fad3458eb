package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"csvimport/internal/typeinfer"
)

// DatatypeKind is the normalized form of a destination datatype tag.
type DatatypeKind int

const (
	DatatypeInvalid DatatypeKind = iota
	DatatypeInteger
	DatatypeText
	DatatypeDate
	DatatypeTime
	DatatypeTimestamp
	DatatypeNumeric
	DatatypeChar
	DatatypeEnum
)

// Datatype is a parsed datatype tag such as "numeric(10,2)" or "char(3)".
type Datatype struct {
	Kind DatatypeKind
	// Precision and Scale are set for numeric tags that carry them.
	Precision int
	Scale     int
	// Length is set for char(n) and varchar(n).
	Length int
}

// Semantic is the type values are coerced to before insert.
func (d Datatype) Semantic() typeinfer.SemanticType {
	switch d.Kind {
	case DatatypeInteger:
		return typeinfer.Int64
	case DatatypeDate:
		return typeinfer.Date
	case DatatypeTime:
		return typeinfer.Time
	case DatatypeTimestamp:
		return typeinfer.Timestamp
	case DatatypeNumeric:
		return typeinfer.Decimal
	default:
		return typeinfer.Text
	}
}

var datatypeRe = regexp.MustCompile(`^([a-z]+)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?$`)

// ParseDatatype parses a datatype tag. Recognized tags:
//
//	integer | int | bigint            -> INTEGER
//	text | string | varchar[(n)]      -> TEXT
//	date, time                        -> DATE, TIME
//	timestamp | datetime              -> TIMESTAMP
//	numeric[(p[,s])] | decimal[(p[,s])] -> NUMERIC(p,s)
//	char(n)                           -> CHAR(n)
//	enum                              -> TEXT with a CHECK over Values
func ParseDatatype(tag string) (Datatype, error) {
	m := datatypeRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(tag)))
	if m == nil {
		return Datatype{}, fmt.Errorf("unrecognized datatype %q", tag)
	}
	name, hasArgs := m[1], m[2] != ""
	a, _ := strconv.Atoi(m[2])
	b, _ := strconv.Atoi(m[3])

	noArgs := func(k DatatypeKind) (Datatype, error) {
		if hasArgs {
			return Datatype{}, fmt.Errorf("datatype %q takes no parameters", name)
		}
		return Datatype{Kind: k}, nil
	}

	switch name {
	case "integer", "int", "bigint":
		return noArgs(DatatypeInteger)
	case "text", "string":
		return noArgs(DatatypeText)
	case "varchar":
		if m[3] != "" {
			return Datatype{}, fmt.Errorf("datatype %q takes one parameter", tag)
		}
		return Datatype{Kind: DatatypeText, Length: a}, nil
	case "date":
		return noArgs(DatatypeDate)
	case "time":
		return noArgs(DatatypeTime)
	case "timestamp", "datetime":
		return noArgs(DatatypeTimestamp)
	case "numeric", "decimal":
		if hasArgs && (a == 0 || b > a) {
			return Datatype{}, fmt.Errorf("datatype %q: need 0 < precision and scale <= precision", tag)
		}
		return Datatype{Kind: DatatypeNumeric, Precision: a, Scale: b}, nil
	case "char":
		if !hasArgs || m[3] != "" || a == 0 {
			return Datatype{}, fmt.Errorf("datatype %q: char needs a positive length", tag)
		}
		return Datatype{Kind: DatatypeChar, Length: a}, nil
	case "enum":
		return noArgs(DatatypeEnum)
	}
	return Datatype{}, fmt.Errorf("unrecognized datatype %q", tag)
}
