package schema

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackName is returned by Sanitize when nothing usable is left.
const FallbackName = "column"

// Sanitize converts arbitrary header text into a lowercase ASCII identifier:
//  1. trim surrounding space, strip accents (NFD -> remove Mn -> NFC), lowercase
//  2. keep [a-z0-9]; every other rune becomes '_'
//  3. collapse runs of '_' and trim trailing ones
//  4. prefix "col_" when the result does not start with a letter
//  5. fall back to "column" if empty
//
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	folded, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		folded = strings.TrimSpace(s)
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	prevUnderscore := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}
	name := strings.TrimRight(b.String(), "_")

	switch {
	case name == "":
		return FallbackName
	case name[0] == '_':
		return "col" + name
	case name[0] < 'a' || name[0] > 'z':
		return "col_" + name
	}
	return name
}

// TableName derives a destination table name from a file path: the base name
// without its extension, sanitized.
func TableName(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	return Sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
}

// uniqueNames sanitizes headers and suffixes repeats with _2, _3, ... so
// every column name is unique.
func uniqueNames(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]struct{}, len(headers))
	for i, h := range headers {
		base := Sanitize(h)
		name := base
		for n := 2; ; n++ {
			if _, dup := seen[name]; !dup {
				break
			}
			name = base + "_" + strconv.Itoa(n)
		}
		seen[name] = struct{}{}
		out[i] = name
	}
	return out
}
