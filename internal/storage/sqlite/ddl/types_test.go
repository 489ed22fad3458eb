package ddl

import (
	"testing"

	"csvimport/internal/config"
	"csvimport/internal/typeinfer"
)

// TestMapType verifies the fixed semantic type -> SQLite type mapping used in
// auto mode.
func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   typeinfer.SemanticType
		want string
	}{
		{in: typeinfer.Int32, want: "INTEGER"},
		{in: typeinfer.Int64, want: "INTEGER"},
		{in: typeinfer.Decimal, want: "REAL"},
		{in: typeinfer.Timestamp, want: "TIMESTAMP"},
		{in: typeinfer.Date, want: "DATE"},
		{in: typeinfer.Time, want: "TIME"},
		{in: typeinfer.Text, want: "TEXT"},
		{in: typeinfer.Unknown, want: "TEXT"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in.String(), func(t *testing.T) {
			t.Parallel()

			if got := MapType(tt.in); got != tt.want {
				t.Fatalf("MapType(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestMapDatatype verifies explicit datatype tags render to the SQLite
// vocabulary.
func TestMapDatatype(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want string
	}{
		{tag: "integer", want: "INTEGER"},
		{tag: "bigint", want: "INTEGER"},
		{tag: "varchar(20)", want: "TEXT"},
		{tag: "string", want: "TEXT"},
		{tag: "date", want: "DATE"},
		{tag: "time", want: "TIME"},
		{tag: "datetime", want: "TIMESTAMP"},
		{tag: "numeric(12,4)", want: "NUMERIC(12,4)"},
		{tag: "decimal", want: "NUMERIC"},
		{tag: "char(2)", want: "CHAR(2)"},
		{tag: "enum", want: "TEXT"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()

			dt, err := config.ParseDatatype(tt.tag)
			if err != nil {
				t.Fatalf("ParseDatatype(%q) error = %v", tt.tag, err)
			}
			if got := MapDatatype(dt); got != tt.want {
				t.Fatalf("MapDatatype(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}
