package schema

import (
	"encoding/json"
	"fmt"

	"csvimport/internal/typeinfer"
)

// Column is one entry of a ColumnTypeMap.
type Column struct {
	Name string                 `json:"name"`
	Type typeinfer.SemanticType `json:"type"`
}

// ColumnTypeMap is an ordered, read-only mapping of sanitized column name to
// resolved semantic type. The zero value is an empty map.
type ColumnTypeMap struct {
	cols  []Column
	index map[string]int
}

// NewColumnTypeMap builds a map from cols in order. Names must be unique
// and no type may be Unknown.
func NewColumnTypeMap(cols ...Column) (ColumnTypeMap, error) {
	m := ColumnTypeMap{
		cols:  make([]Column, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		if _, dup := m.index[c.Name]; dup {
			return ColumnTypeMap{}, fmt.Errorf("schema: duplicate column %q", c.Name)
		}
		if c.Type == typeinfer.Unknown {
			return ColumnTypeMap{}, fmt.Errorf("schema: column %q has no type", c.Name)
		}
		m.index[c.Name] = len(m.cols)
		m.cols = append(m.cols, c)
	}
	return m, nil
}

// Len returns the number of columns.
func (m ColumnTypeMap) Len() int { return len(m.cols) }

// At returns the i-th column in source order.
func (m ColumnTypeMap) At(i int) Column { return m.cols[i] }

// Type looks up a column by sanitized name.
func (m ColumnTypeMap) Type(name string) (typeinfer.SemanticType, bool) {
	i, ok := m.index[name]
	if !ok {
		return typeinfer.Unknown, false
	}
	return m.cols[i].Type, true
}

// Names returns the column names in source order.
func (m ColumnTypeMap) Names() []string {
	out := make([]string, len(m.cols))
	for i, c := range m.cols {
		out[i] = c.Name
	}
	return out
}

// Columns returns a copy of the entries in source order.
func (m ColumnTypeMap) Columns() []Column {
	out := make([]Column, len(m.cols))
	copy(out, m.cols)
	return out
}

// MarshalJSON renders the map as an ordered array of {name, type}.
func (m ColumnTypeMap) MarshalJSON() ([]byte, error) {
	if m.cols == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.cols)
}

// Columns is the result of a scan: the raw headers as they appeared in the
// source, and the resolved type map keyed by sanitized name. Headers[i]
// corresponds to Map.At(i).
type Columns struct {
	Headers []string      `json:"headers"`
	Map     ColumnTypeMap `json:"columns"`
	Rows    int           `json:"rows"`
}

// Names returns the sanitized column names in source order.
func (c Columns) Names() []string { return c.Map.Names() }
