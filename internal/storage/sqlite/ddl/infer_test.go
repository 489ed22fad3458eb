package ddl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"csvimport/internal/config"
	gddl "csvimport/internal/ddl"
	"csvimport/internal/errs"
	"csvimport/internal/schema"
	"csvimport/internal/typeinfer"
)

func mustColumnMap(t *testing.T, cols ...schema.Column) *schema.ColumnTypeMap {
	t.Helper()
	m, err := schema.NewColumnTypeMap(cols...)
	if err != nil {
		t.Fatalf("NewColumnTypeMap() error = %v", err)
	}
	return &m
}

// TestFromColumnMap verifies the auto layout: synthetic key first, then one
// nullable column per scanned entry.
func TestFromColumnMap(t *testing.T) {
	t.Parallel()

	m := mustColumnMap(t,
		schema.Column{Name: "id", Type: typeinfer.Int32},
		schema.Column{Name: "amount", Type: typeinfer.Decimal},
		schema.Column{Name: "date", Type: typeinfer.Date},
	)

	got := FromColumnMap("sales", *m)
	want := gddl.TableDef{
		FQN: "sales",
		Columns: []gddl.ColumnDef{
			{Name: "row_id", SQLType: "INTEGER", PrimaryKey: true, AutoIncrement: true},
			{Name: "id", SQLType: "INTEGER", Nullable: true},
			{Name: "amount", SQLType: "REAL", Nullable: true},
			{Name: "date", SQLType: "DATE", Nullable: true},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FromColumnMap() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromColumnMapRowIDCollision(t *testing.T) {
	t.Parallel()

	m := mustColumnMap(t,
		schema.Column{Name: "row_id", Type: typeinfer.Text},
		schema.Column{Name: "row_id_2", Type: typeinfer.Text},
	)
	if got := FromColumnMap("t", *m).Columns[0].Name; got != "row_id_3" {
		t.Fatalf("synthetic key = %q, want row_id_3", got)
	}
}

// TestFromDestination verifies explicit specs: names, nullability, enum
// checks and the auto-increment key.
func TestFromDestination(t *testing.T) {
	t.Parallel()

	dest := config.Destination{Columns: []config.ColumnSpec{
		{Source: "Order ID", ColumnName: "order_id", Datatype: "bigint", PrimaryKey: true},
		{Source: "Status", Nullable: "N", Datatype: "enum", Values: []string{"open", "closed"}},
		{Source: "Total", Nullable: "Y", Datatype: "numeric(10,2)"},
	}}

	got, err := FromDestination("orders", dest)
	if err != nil {
		t.Fatalf("FromDestination() error = %v", err)
	}
	want := gddl.TableDef{
		FQN: "orders",
		Columns: []gddl.ColumnDef{
			{Name: "order_id", SQLType: "INTEGER", Nullable: true, PrimaryKey: true, AutoIncrement: true},
			{Name: "status", SQLType: "TEXT", Check: `"status" IN ('open', 'closed')`},
			{Name: "total", SQLType: "NUMERIC(10,2)", Nullable: true},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FromDestination() mismatch (-want +got):\n%s", diff)
	}
}

// fakeCatalog is a test double for Catalog used to verify EnsureTable
// behavior without hitting a real database.
type fakeCatalog struct {
	exists      bool
	lookupCalls int
	execCalls   int
	lastSQL     string
	err         error
}

func (f *fakeCatalog) TableExists(ctx context.Context, name string) (bool, error) {
	f.lookupCalls++
	return f.exists, f.err
}

func (f *fakeCatalog) Exec(ctx context.Context, sql string) error {
	f.execCalls++
	f.lastSQL = sql
	return f.err
}

// TestEnsureTableExecutesSQL verifies that EnsureTable builds a CREATE TABLE
// statement and passes it to the catalog's Exec method.
func TestEnsureTableExecutesSQL(t *testing.T) {
	t.Parallel()

	var cat fakeCatalog
	m := mustColumnMap(t, schema.Column{Name: "a", Type: typeinfer.Text})

	td, created, err := EnsureTable(context.Background(), &cat, "events", config.AutoDestination(), m)
	if err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}
	if !created || cat.execCalls != 1 {
		t.Fatalf("EnsureTable() created = %v, Exec calls = %d, want true and 1", created, cat.execCalls)
	}
	if !strings.HasPrefix(cat.lastSQL, `CREATE TABLE IF NOT EXISTS "events"`) {
		t.Fatalf("Exec SQL does not create events:\n%s", cat.lastSQL)
	}
	if diff := cmp.Diff([]string{"row_id", "a"}, td.Names()); diff != "" {
		t.Fatalf("EnsureTable() columns mismatch (-want +got):\n%s", diff)
	}
}

// TestEnsureTableExistingIsNoop verifies no DDL runs for an existing table.
func TestEnsureTableExistingIsNoop(t *testing.T) {
	t.Parallel()

	cat := fakeCatalog{exists: true}
	m := mustColumnMap(t, schema.Column{Name: "a", Type: typeinfer.Text})

	_, created, err := EnsureTable(context.Background(), &cat, "events", config.AutoDestination(), m)
	if err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}
	if created || cat.execCalls != 0 {
		t.Fatalf("EnsureTable() created = %v, Exec calls = %d, want false and 0", created, cat.execCalls)
	}
}

// TestEnsureTableConfigurationErrorsBeforeCatalog verifies that primary key
// problems and a missing column map are reported without touching the
// database.
func TestEnsureTableConfigurationErrorsBeforeCatalog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table string
		dest  config.Destination
		cols  *schema.ColumnTypeMap
	}{
		{
			name:  "no primary key",
			table: "t",
			dest:  config.Destination{Columns: []config.ColumnSpec{{Source: "a", Datatype: "int"}}},
		},
		{
			name:  "two primary keys",
			table: "t",
			dest: config.Destination{Columns: []config.ColumnSpec{
				{Source: "a", Datatype: "int", PrimaryKey: true},
				{Source: "b", Datatype: "int", PrimaryKey: true},
			}},
		},
		{
			name:  "auto without map",
			table: "t",
			dest:  config.AutoDestination(),
		},
		{
			name:  "empty table name",
			table: " ",
			dest:  config.AutoDestination(),
			cols:  &schema.ColumnTypeMap{},
		},
		{
			name:  "schema qualified table name",
			table: "main.orders",
			dest:  config.AutoDestination(),
			cols:  mustColumnMap(t, schema.Column{Name: "id", Type: typeinfer.Int32}),
		},
		{
			name:  "dotted table name",
			table: "sales.q1",
			dest:  config.AutoDestination(),
			cols:  mustColumnMap(t, schema.Column{Name: "id", Type: typeinfer.Int32}),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var cat fakeCatalog
			_, _, err := EnsureTable(context.Background(), &cat, tt.table, tt.dest, tt.cols)
			if !errs.IsConfiguration(err) {
				t.Fatalf("EnsureTable() error = %v, want configuration error", err)
			}
			if cat.lookupCalls != 0 || cat.execCalls != 0 {
				t.Fatalf("catalog touched: lookups=%d execs=%d", cat.lookupCalls, cat.execCalls)
			}
		})
	}
}

// TestEnsureTableStorageError verifies catalog failures surface as storage
// errors.
func TestEnsureTableStorageError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk I/O error")
	cat := fakeCatalog{err: boom}
	m := mustColumnMap(t, schema.Column{Name: "a", Type: typeinfer.Text})

	_, _, err := EnsureTable(context.Background(), &cat, "t", config.AutoDestination(), m)
	if !errs.IsStorage(err) || !errors.Is(err, boom) {
		t.Fatalf("EnsureTable() error = %v, want storage error wrapping %v", err, boom)
	}
}
