// Package ddl defines a small, backend-agnostic model for table definitions.
// Dialect packages (internal/storage/sqlite/ddl) render it to SQL.
package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, INTEGER, NUMERIC(10,2))
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - AutoIncrement: a single integer primary key whose values the database
//     assigns; rendered inline with the column
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
//   - Check: raw boolean expression for a column CHECK constraint
type ColumnDef struct {
	Name          string
	SQLType       string
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
	Default       string
	Check         string
}

// TableDef holds the table name and an ordered list of columns. FQN is a
// single table name in the main schema; renderers quote it as one
// identifier.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Names returns the column names in order.
func (t TableDef) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by name.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}
