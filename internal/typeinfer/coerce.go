package typeinfer

import (
	"strconv"
	"strings"

	"csvimport/internal/errs"
)

// Coerce converts raw into a Value of type target using only target's
// parser. On failure it returns raw as a Text value together with a
// KindRowCoercion error; the caller decides whether that skips the row.
//
// Text targets keep raw byte-for-byte. Unknown is treated as Text.
func Coerce(raw string, target SemanticType) (Value, error) {
	v := strings.TrimSpace(raw)

	switch target {
	case Text, Unknown:
		return Value{Kind: Text, Str: raw}, nil

	case Int32:
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			return Value{Kind: Int32, Int: n}, nil
		}

	case Int64:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return Value{Kind: Int64, Int: n}, nil
		}

	case Decimal:
		if d, err := parseMoney(v, false); err == nil {
			return Value{Kind: Decimal, Dec: d}, nil
		}

	case Timestamp:
		if t, ok := parseTimestamp(v); ok {
			return Value{Kind: Timestamp, Time: t}, nil
		}

	case Date:
		if t, ok := parseDate(v); ok {
			return Value{Kind: Date, Time: t}, nil
		}

	case Time:
		if t, ok := parseTimeOfDay(v); ok {
			return Value{Kind: Time, Time: t}, nil
		}
	}

	return Value{Kind: Text, Str: raw}, errs.Newf(errs.KindRowCoercion, "cannot coerce %q to %s", raw, target)
}
