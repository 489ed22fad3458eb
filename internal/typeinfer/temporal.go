package typeinfer

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// dateLayouts are tried in order; the first match wins. Month-first slash
// dates come before day-first dotted dates, which is the common reading of
// spreadsheet exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"1/2/2006",
	"1-2-2006",
	"2.1.2006",
	"1/2/06",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
}

// timestampLayouts carry both a date and a time component. Fractional
// seconds are accepted by time.Parse after any seconds field.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05Z0700",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 15:04:05",
}

// timeLayouts are time-of-day formats without any date component.
var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04:05PM",
	"3:04PM",
}

// hasMeridiem reports whether v carries an AM/PM marker.
func hasMeridiem(v string) bool {
	u := strings.ToUpper(v)
	return strings.HasSuffix(u, "AM") || strings.HasSuffix(u, "PM")
}

// startsWithLetter reports whether the first rune of v is a letter.
func startsWithLetter(v string) bool {
	r, _ := utf8.DecodeRuneInString(v)
	return unicode.IsLetter(r)
}

// looksLikeTimeOnly: a time separator, no date separator, no leading letter.
func looksLikeTimeOnly(v string) bool {
	return strings.ContainsRune(v, ':') &&
		!strings.ContainsAny(v, "-/") &&
		!startsWithLetter(v)
}

// looksLikeDateOnly: no time separator or meridiem, and some date-ish
// punctuation or a month name. Bare digit runs are left to the integer rule.
func looksLikeDateOnly(v string) bool {
	if strings.ContainsRune(v, ':') || hasMeridiem(v) {
		return false
	}
	if strings.ContainsAny(v, "-/. ") {
		return true
	}
	for _, r := range v {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func parseWithLayouts(v string, layouts []string) (time.Time, bool) {
	// time.Parse matches month names case-insensitively but only accepts
	// upper-case AM/PM.
	v = strings.ToUpper(v)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDate(v string) (time.Time, bool)      { return parseWithLayouts(v, dateLayouts) }
func parseTimestamp(v string) (time.Time, bool) { return parseWithLayouts(v, timestampLayouts) }
func parseTimeOfDay(v string) (time.Time, bool) { return parseWithLayouts(v, timeLayouts) }
