package importer

import (
	"fmt"
	"strings"

	"csvimport/internal/config"
	gddl "csvimport/internal/ddl"
	"csvimport/internal/errs"
	"csvimport/internal/parser/csv"
	"csvimport/internal/schema"
	"csvimport/internal/typeinfer"
)

// Field binds one source column to one destination column.
type Field struct {
	// Source is the index of the column in the source header.
	Source int
	// Column is the destination column name (unquoted).
	Column string
	// Type is the already-resolved coercion target.
	Type typeinfer.SemanticType
	// Exact binds decimals as decimal text for a declared NUMERIC column.
	Exact bool
}

// Plan is everything the import pass needs to know about the source and the
// destination. It is built once, after the scan pass and table creation.
type Plan struct {
	Table  string
	Width  int // source header width
	Fields []Field
	CSV    csv.Options

	// Skipped lists source headers with no destination column.
	Skipped []string
	// Missing lists destination columns with no source column; the database
	// fills them (auto-increment key, NULL).
	Missing []string
}

// Columns returns the destination column names in bind order.
func (p Plan) Columns() []string {
	out := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		out[i] = f.Column
	}
	return out
}

// NewPlan matches the scanned source against the table definition td.
//
// In auto mode every source column maps, by position, to its sanitized name
// and scanned type. In explicit mode each column spec is matched to a source
// header by exact name first, then by sanitized name; the coercion target
// comes from the declared datatype. A NOT NULL column with no matching source
// column is a configuration error.
func NewPlan(td gddl.TableDef, cols schema.Columns, dest config.Destination) (Plan, error) {
	p := Plan{Table: td.FQN, Width: len(cols.Headers)}
	if p.Width == 0 {
		return Plan{}, errs.New(errs.KindConfiguration, "source has no columns")
	}
	if cols.Map.Len() != p.Width {
		return Plan{}, errs.Newf(errs.KindConfiguration,
			"column map has %d entries for %d source columns", cols.Map.Len(), p.Width)
	}

	if dest.Auto {
		for i := 0; i < cols.Map.Len(); i++ {
			c := cols.Map.At(i)
			if _, ok := td.Column(c.Name); !ok {
				return Plan{}, errs.Newf(errs.KindConfiguration,
					"table %s has no column %q for source column %q", td.FQN, c.Name, cols.Headers[i])
			}
			p.Fields = append(p.Fields, Field{Source: i, Column: c.Name, Type: c.Type})
		}
		for _, c := range td.Columns {
			if c.AutoIncrement {
				p.Missing = append(p.Missing, c.Name)
			}
		}
		return p, nil
	}

	used := make([]bool, p.Width)
	for _, spec := range dest.Columns {
		dt, err := config.ParseDatatype(spec.Datatype)
		if err != nil {
			return Plan{}, errs.Wrap(errs.KindConfiguration, fmt.Sprintf("column %q", spec.Source), err)
		}
		idx := matchSource(cols, spec.Source)
		if idx < 0 {
			if spec.NotNull() && !spec.PrimaryKey {
				return Plan{}, errs.Newf(errs.KindConfiguration,
					"column %q is NOT NULL but the source has no column %q", spec.Name(), spec.Source)
			}
			p.Missing = append(p.Missing, spec.Name())
			continue
		}
		if used[idx] {
			return Plan{}, errs.Newf(errs.KindConfiguration,
				"source column %q is mapped more than once", cols.Headers[idx])
		}
		used[idx] = true

		typ := dt.Semantic()
		if spec.PrimaryKey {
			typ = typeinfer.Int64
		}
		p.Fields = append(p.Fields, Field{
			Source: idx,
			Column: spec.Name(),
			Type:   typ,
			Exact:  typ == typeinfer.Decimal && dt.Kind == config.DatatypeNumeric,
		})
	}
	for i, u := range used {
		if !u {
			p.Skipped = append(p.Skipped, cols.Headers[i])
		}
	}
	if len(p.Fields) == 0 {
		return Plan{}, errs.New(errs.KindConfiguration, "no source column maps to the destination table")
	}
	return p, nil
}

// matchSource returns the header index for a spec key, or -1.
func matchSource(cols schema.Columns, key string) int {
	key = strings.TrimSpace(key)
	for i, h := range cols.Headers {
		if strings.TrimSpace(h) == key {
			return i
		}
	}
	want := schema.Sanitize(key)
	for i := 0; i < cols.Map.Len(); i++ {
		if cols.Map.At(i).Name == want {
			return i
		}
	}
	return -1
}
