package ddl

import "strings"

// QuoteIdent double-quotes a SQLite identifier.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// quoteTable quotes a destination table name as one identifier. It returns
// "" for a blank name.
func quoteTable(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return ""
	}
	return QuoteIdent(name)
}

func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}

// InCheck renders the CHECK expression of an enum column:
// "status" IN ('open', 'closed').
func InCheck(col string, values []string) string {
	lits := make([]string, len(values))
	for i, v := range values {
		lits[i] = quoteLiteral(v)
	}
	return QuoteIdent(col) + " IN (" + strings.Join(lits, ", ") + ")"
}
