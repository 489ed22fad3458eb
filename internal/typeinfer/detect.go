package typeinfer

import (
	"math"
	"strconv"
	"strings"
)

// Detect classifies a single raw value. Blank input returns Unknown, which
// callers treat as "no observation".
//
// Precedence:
//
//  1. numeric codes (leading zero, or digits beyond int64) -> Text
//  2. money-like values                                     -> Decimal
//  3. time of day                                           -> Time
//  4. date only                                             -> Date
//  5. date and time                                         -> Timestamp
//  6. integers                                              -> Int32 / Int64
//  7. anything else                                         -> Text
func Detect(s string) SemanticType {
	v := strings.TrimSpace(s)
	if v == "" {
		return Unknown
	}

	if isNumericCode(v) {
		return Text
	}
	if _, err := parseMoney(v, true); err == nil {
		return Decimal
	}
	if looksLikeTimeOnly(v) {
		if _, ok := parseTimeOfDay(v); ok {
			return Time
		}
	}
	if looksLikeDateOnly(v) {
		if _, ok := parseDate(v); ok {
			return Date
		}
	}
	if _, ok := parseTimestamp(v); ok {
		return Timestamp
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return Int32
		}
		return Int64
	}
	return Text
}

// isNumericCode reports whether v is a digit string that must keep its exact
// spelling: zip codes, account numbers and identifiers with leading zeros,
// or digit runs too long for a 64-bit integer.
func isNumericCode(v string) bool {
	digits := v
	if digits[0] == '+' || digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	if len(digits) > 1 && digits[0] == '0' {
		return true
	}
	_, err := strconv.ParseInt(v, 10, 64)
	return err != nil
}
