// Package ddl renders SQLite DDL and DML for import destination tables and
// creates the table of a run when it does not exist yet.
package ddl

import (
	"errors"
	"fmt"
	"strings"

	gddl "csvimport/internal/ddl"
)

// BuildCreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement, one
// column per line:
//
//	CREATE TABLE IF NOT EXISTS "orders" (
//	  "id" INTEGER PRIMARY KEY AUTOINCREMENT,
//	  "status" TEXT NOT NULL CHECK ("status" IN ('open', 'closed')),
//	  "amount" NUMERIC(12,2)
//	);
//
// An auto-increment key is rendered inline and must be the table's only key
// column. Other key columns become a trailing PRIMARY KEY constraint.
// Default and Check are copied as raw SQL.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	table := quoteTable(t.FQN)
	if table == "" {
		return "", errors.New("sqlite ddl: empty table name")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("sqlite ddl: table %s has no columns", t.FQN)
	}

	lines := make([]string, 0, len(t.Columns)+1)
	var keys []string
	var auto string
	for _, c := range t.Columns {
		line, err := columnSQL(c)
		if err != nil {
			return "", fmt.Errorf("sqlite ddl: table %s: %w", t.FQN, err)
		}
		lines = append(lines, line)
		switch {
		case c.AutoIncrement:
			if auto != "" {
				return "", fmt.Errorf("sqlite ddl: table %s: both %s and %s auto-increment", t.FQN, auto, c.Name)
			}
			auto = c.Name
		case c.PrimaryKey:
			keys = append(keys, QuoteIdent(strings.TrimSpace(c.Name)))
		}
	}
	if auto != "" && len(keys) > 0 {
		return "", fmt.Errorf("sqlite ddl: table %s: auto-increment column %s cannot share the primary key", t.FQN, auto)
	}
	if len(keys) > 0 {
		lines = append(lines, "PRIMARY KEY ("+strings.Join(keys, ", ")+")")
	}

	return "CREATE TABLE IF NOT EXISTS " + table + " (\n  " + strings.Join(lines, ",\n  ") + "\n);", nil
}

// columnSQL renders one column definition without the trailing comma.
func columnSQL(c gddl.ColumnDef) (string, error) {
	name := strings.TrimSpace(c.Name)
	typ := strings.TrimSpace(c.SQLType)
	switch {
	case name == "":
		return "", errors.New("column with empty name")
	case typ == "":
		return "", fmt.Errorf("column %s has no type", name)
	case c.AutoIncrement && (!c.PrimaryKey || !strings.EqualFold(typ, "INTEGER")):
		return "", fmt.Errorf("column %s: AUTOINCREMENT needs an INTEGER primary key", name)
	case c.AutoIncrement:
		return QuoteIdent(name) + " INTEGER PRIMARY KEY AUTOINCREMENT", nil
	}

	parts := []string{QuoteIdent(name), typ}
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if def := strings.TrimSpace(c.Default); def != "" {
		parts = append(parts, "DEFAULT", def)
	}
	if chk := strings.TrimSpace(c.Check); chk != "" {
		parts = append(parts, "CHECK ("+chk+")")
	}
	return strings.Join(parts, " "), nil
}
