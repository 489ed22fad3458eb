package config

import (
	"strings"
	"testing"

	"csvimport/internal/errs"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

/*
TestValidateConfig_DefaultIsClean verifies that Default() produces no issues
(errors or warnings).
*/
func TestValidateConfig_DefaultIsClean(t *testing.T) {
	t.Parallel()

	if issues := ValidateConfig(Default()); len(issues) != 0 {
		t.Fatalf("ValidateConfig(Default()) = %+v, want none", issues)
	}
}

func TestValidateConnection_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   ConnectionPolicy
		sev  IssueSeverity
		path string
		msg  string
	}{
		{name: "negative timeout", in: ConnectionPolicy{Timeout: -1}, sev: SeverityError, path: "connection.timeout", msg: "negative"},
		{name: "zero timeout", in: ConnectionPolicy{}, sev: SeverityWarning, path: "connection.timeout", msg: "disables"},
		{name: "bad journal", in: ConnectionPolicy{Timeout: 1, JournalMode: "fast"}, sev: SeverityError, path: "connection.journalMode", msg: "unknown journal mode"},
		{name: "pragma injection", in: ConnectionPolicy{Timeout: 1, Pragma: map[string]string{"cache_size": "1)&x=("}}, sev: SeverityError, path: "connection.pragma.cache_size", msg: "invalid pragma value"},
		{name: "pragma bad name", in: ConnectionPolicy{Timeout: 1, Pragma: map[string]string{"Cache-Size": "1"}}, sev: SeverityError, path: "connection.pragma.Cache-Size", msg: "lowercase"},
		{name: "pragma override", in: ConnectionPolicy{Timeout: 1, Pragma: map[string]string{"foreign_keys": "0"}}, sev: SeverityWarning, path: "connection.pragma.foreign_keys", msg: "overrides"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if issues := validateConnection(tt.in); !hasIssue(t, issues, tt.sev, tt.path, tt.msg) {
				t.Fatalf("validateConnection(%+v) = %+v, want %s at %s", tt.in, issues, tt.sev, tt.path)
			}
		})
	}
}

func TestValidateImport_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   ImportPolicy
		sev  IssueSeverity
		path string
		msg  string
	}{
		{name: "zero batch transactional", in: ImportPolicy{EnableTransactions: true}, sev: SeverityError, path: "import.batchSize", msg: "positive batch size"},
		{name: "zero batch autocommit", in: ImportPolicy{}, sev: SeverityWarning, path: "import.batchSize", msg: "positive batch size"},
		{name: "negative budget", in: ImportPolicy{BatchSize: 1, ContinueOnError: true, MaxRowErrors: -3}, sev: SeverityWarning, path: "import.maxRowErrors", msg: "unlimited"},
		{name: "budget without continue", in: ImportPolicy{BatchSize: 1, MaxRowErrors: 5}, sev: SeverityWarning, path: "import.maxRowErrors", msg: "no effect"},
		{name: "bad log level", in: ImportPolicy{BatchSize: 1, LogLevel: "loud"}, sev: SeverityError, path: "import.logLevel", msg: "unknown log level"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if issues := validateImport(tt.in); !hasIssue(t, issues, tt.sev, tt.path, tt.msg) {
				t.Fatalf("validateImport(%+v) = %+v, want %s at %s", tt.in, issues, tt.sev, tt.path)
			}
		})
	}
}

func TestValidateCSV_Delimiter(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"", ",", ";", "\t", "|"} {
		if issues := validateCSV(CSVOptions{Delimiter: ok}); len(issues) != 0 {
			t.Errorf("validateCSV(%q) = %+v, want none", ok, issues)
		}
	}
	for _, bad := range []string{"ab", "\"", "\n"} {
		if issues := validateCSV(CSVOptions{Delimiter: bad}); !hasIssue(t, issues, SeverityError, "csv.delimiter", "single character") {
			t.Errorf("validateCSV(%q) = %+v, want error", bad, issues)
		}
	}
}

/*
TestDestinationValidate_PrimaryKey verifies that zero or several primary key
columns, or a non-integer key, are configuration errors.
*/
func TestDestinationValidate_PrimaryKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cols []ColumnSpec
		msg  string
	}{
		{
			name: "none",
			cols: []ColumnSpec{{Source: "a", Datatype: "int"}, {Source: "b", Datatype: "text"}},
			msg:  "found none",
		},
		{
			name: "two",
			cols: []ColumnSpec{{Source: "a", Datatype: "int", PrimaryKey: true}, {Source: "b", Datatype: "bigint", PrimaryKey: true}},
			msg:  "found 2 (a, b)",
		},
		{
			name: "text key",
			cols: []ColumnSpec{{Source: "a", Datatype: "text", PrimaryKey: true}},
			msg:  "must be an integer",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Destination{Columns: tt.cols}.Validate()
			if !errs.IsConfiguration(err) {
				t.Fatalf("Validate() error = %v, want configuration error", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("Validate() error = %q, want it to mention %q", err, tt.msg)
			}
		})
	}
}

func TestDestinationValidate_Columns(t *testing.T) {
	t.Parallel()

	d := Destination{Columns: []ColumnSpec{
		{Source: "id", Datatype: "int", PrimaryKey: true},
		{Source: "state", Datatype: "enum"},
		{Source: "Name", Datatype: "text", Nullable: "maybe"},
		{Source: "name", Datatype: "text"},
		{Source: "qty", Datatype: "int", Values: []string{"1"}},
		{Source: "x", Datatype: "blob"},
	}}
	issues := d.issues("destinationTable")

	checks := []struct {
		sev  IssueSeverity
		path string
		msg  string
	}{
		{SeverityError, "destinationTable.state.values", "at least one value"},
		{SeverityError, "destinationTable.Name.nullable", "\"Y\" or \"N\""},
		{SeverityError, "destinationTable.name.columnName", "already used"},
		{SeverityWarning, "destinationTable.qty.values", "only used by enum"},
		{SeverityError, "destinationTable.x.datatype", "unrecognized"},
	}
	for _, c := range checks {
		if !hasIssue(t, issues, c.sev, c.path, c.msg) {
			t.Errorf("missing %s at %s (%q); got %+v", c.sev, c.path, c.msg, issues)
		}
	}
	if AutoDestination().Validate() != nil {
		t.Errorf("auto destination should always validate")
	}
}
