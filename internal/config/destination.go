package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"csvimport/internal/schema"
)

// autoKey is both the map key and the datatype value of the auto sentinel:
//
//	"destinationTable": { "auto": { "datatype": "auto" } }
const autoKey = "auto"

// Destination is either the auto sentinel (table derived from the scanned
// column types) or an explicit, ordered list of column specs.
type Destination struct {
	Auto    bool
	Columns []ColumnSpec
}

// ColumnSpec declares one destination column. Source is the map key in the
// config file and names the source column it is filled from.
type ColumnSpec struct {
	Source     string   `json:"-" yaml:"-"`
	ColumnName string   `json:"columnName,omitempty" yaml:"columnName,omitempty"`
	Nullable   string   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Datatype   string   `json:"datatype" yaml:"datatype"`
	Values     []string `json:"values,omitempty" yaml:"values,omitempty"`
	PrimaryKey bool     `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
}

// Name is the destination column name: ColumnName, or the sanitized Source
// when ColumnName is empty.
func (c ColumnSpec) Name() string {
	if n := strings.TrimSpace(c.ColumnName); n != "" {
		return n
	}
	return schema.Sanitize(c.Source)
}

// NotNull reports whether the column was declared with nullable "N".
func (c ColumnSpec) NotNull() bool {
	return strings.EqualFold(strings.TrimSpace(c.Nullable), "N")
}

// AutoDestination returns the auto sentinel.
func AutoDestination() Destination { return Destination{Auto: true} }

// PrimaryKey returns the single primary key column. It is only meaningful
// after Validate succeeded.
func (d Destination) PrimaryKey() (ColumnSpec, bool) {
	for _, c := range d.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Validate checks the explicit column specs, including the rule that exactly
// one column is the primary key and that it is an integer. The auto sentinel
// is always valid. Failures are KindConfiguration errors.
func (d Destination) Validate() error {
	return Issues(d.issues("destinationTable")).Err()
}

func (d Destination) issues(path string) []Issue {
	if d.Auto {
		return nil
	}
	if len(d.Columns) == 0 {
		return []Issue{{Severity: SeverityError, Path: path, Message: "no columns declared; use the auto sentinel to derive them"}}
	}

	var issues []Issue
	var pks []string
	names := make(map[string]string, len(d.Columns))
	for _, c := range d.Columns {
		p := path + "." + c.Source

		dt, err := ParseDatatype(c.Datatype)
		if err != nil {
			issues = append(issues, Issue{Severity: SeverityError, Path: p + ".datatype", Message: err.Error()})
		}
		switch {
		case dt.Kind == DatatypeEnum && len(c.Values) == 0:
			issues = append(issues, Issue{Severity: SeverityError, Path: p + ".values", Message: "enum column needs at least one value"})
		case dt.Kind != DatatypeEnum && dt.Kind != DatatypeInvalid && len(c.Values) > 0:
			issues = append(issues, Issue{Severity: SeverityWarning, Path: p + ".values", Message: "values are only used by enum columns"})
		}

		switch strings.ToUpper(strings.TrimSpace(c.Nullable)) {
		case "", "Y", "N":
		default:
			issues = append(issues, Issue{Severity: SeverityError, Path: p + ".nullable", Message: fmt.Sprintf("nullable must be \"Y\" or \"N\", got %q", c.Nullable)})
		}

		name := c.Name()
		if prev, dup := names[name]; dup {
			issues = append(issues, Issue{Severity: SeverityError, Path: p + ".columnName", Message: fmt.Sprintf("column name %q already used by %q", name, prev)})
		}
		names[name] = c.Source

		if c.PrimaryKey {
			pks = append(pks, c.Source)
			if err == nil && dt.Kind != DatatypeInteger {
				issues = append(issues, Issue{Severity: SeverityError, Path: p + ".datatype", Message: fmt.Sprintf("primary key must be an integer, got %q", c.Datatype)})
			}
		}
	}

	switch len(pks) {
	case 1:
	case 0:
		issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: "exactly one primary key column is required, found none"})
	default:
		issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf("exactly one primary key column is required, found %d (%s)", len(pks), strings.Join(pks, ", "))})
	}
	return issues
}

// UnmarshalJSON accepts the auto sentinel, the bare string "auto", null
// (auto), or an object of column specs. Declaration order is kept.
func (d *Destination) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*d = AutoDestination()
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return d.fromScalar(s)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("destinationTable: expected object, got %v", tok)
	}

	var out Destination
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var spec ColumnSpec
		if err := dec.Decode(&spec); err != nil {
			return fmt.Errorf("destinationTable.%s: %w", key, err)
		}
		if err := out.add(key, spec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return out.finish(d)
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (d *Destination) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			*d = AutoDestination()
			return nil
		}
		return d.fromScalar(n.Value)
	case yaml.MappingNode:
	default:
		return fmt.Errorf("destinationTable: line %d: expected mapping", n.Line)
	}

	var out Destination
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		var spec ColumnSpec
		if err := n.Content[i+1].Decode(&spec); err != nil {
			return fmt.Errorf("destinationTable.%s: %w", key, err)
		}
		if err := out.add(key, spec); err != nil {
			return err
		}
	}
	return out.finish(d)
}

// MarshalJSON writes the same shapes UnmarshalJSON reads, in column order.
func (d Destination) MarshalJSON() ([]byte, error) {
	if d.Auto {
		return []byte(`{"auto":{"datatype":"auto"}}`), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range d.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Source)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Destination) fromScalar(s string) error {
	if strings.EqualFold(strings.TrimSpace(s), autoKey) {
		*d = AutoDestination()
		return nil
	}
	return fmt.Errorf("destinationTable: expected %q or a column map, got %q", autoKey, s)
}

func (d *Destination) add(key string, spec ColumnSpec) error {
	if key == autoKey && strings.EqualFold(spec.Datatype, autoKey) {
		d.Auto = true
		return nil
	}
	for _, c := range d.Columns {
		if c.Source == key {
			return fmt.Errorf("destinationTable: duplicate column %q", key)
		}
	}
	spec.Source = key
	d.Columns = append(d.Columns, spec)
	return nil
}

func (d Destination) finish(dst *Destination) error {
	if d.Auto && len(d.Columns) > 0 {
		return fmt.Errorf("destinationTable: the auto sentinel cannot be combined with column specs")
	}
	if !d.Auto && len(d.Columns) == 0 {
		d.Auto = true
	}
	*dst = d
	return nil
}
