package ddl

import (
	"fmt"
	"strings"
)

// BuildInsertSQL renders a single-row parameterised INSERT for the given
// columns, in order:
//
//	INSERT INTO "t" ("a", "b") VALUES (?, ?)
func BuildInsertSQL(table string, columns []string) (string, error) {
	fqn := quoteTable(table)
	if fqn == "" {
		return "", fmt.Errorf("sqlite ddl: insert: empty table name")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("sqlite ddl: insert into %s: no columns", table)
	}
	cols := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return "", fmt.Errorf("sqlite ddl: insert into %s: column %d has empty name", table, i)
		}
		cols[i] = QuoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		fqn, strings.Join(cols, ", "), strings.Join(marks, ", ")), nil
}
