package schema

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"csvimport/internal/errs"
	"csvimport/internal/parser/csv"
	"csvimport/internal/typeinfer"
)

// cancelCheckEvery is how many rows Scan reads between context checks.
const cancelCheckEvery = 1024

// Widen folds one observation into a column's running type.
//
// Unknown observations (blank cells) are ignored. The first real observation
// sets the type; a matching one keeps it. Inside the numeric family
// (Int32 < Int64 < Decimal) the wider member wins. Any other disagreement
// widens to Text, and Text never narrows again.
func Widen(cur, obs typeinfer.SemanticType) typeinfer.SemanticType {
	switch {
	case obs == typeinfer.Unknown, cur == obs:
		return cur
	case cur == typeinfer.Unknown:
		return obs
	case cur.IsNumeric() && obs.IsNumeric():
		return max(cur, obs)
	default:
		return typeinfer.Text
	}
}

// Scan reads every row of rs and resolves one semantic type per column.
// rs is rewound to its first byte before reading, so the same handle can be
// passed to the import pass afterwards.
//
// Scan is fatal-on-error: an empty or unreadable source, a malformed record,
// or a row whose width differs from the header aborts with a KindSourceFormat
// error carrying the line number.
func Scan(ctx context.Context, rs io.ReadSeeker, opt csv.Options) (Columns, error) {
	if err := csv.Rewind(rs); err != nil {
		return Columns{}, errs.Wrap(errs.KindSourceFormat, "rewind source", err)
	}
	r := csv.NewReader(rs, opt)

	headers, err := r.Header()
	if errors.Is(err, csv.ErrNoHeader) {
		return Columns{}, errs.New(errs.KindSourceFormat, "source is empty")
	}
	if err != nil {
		return Columns{}, errs.Wrap(errs.KindSourceFormat, "read header", err).AtLine(1)
	}

	names := uniqueNames(headers)
	types := make([]typeinfer.SemanticType, len(names))

	rows := 0
	for {
		if rows%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Columns{}, err
			}
		}
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Columns{}, sourceError(err, r.Line())
		}
		rows++
		for i, v := range rec {
			types[i] = Widen(types[i], typeinfer.Detect(v))
		}
	}

	cols := make([]Column, len(names))
	for i, n := range names {
		t := types[i]
		if t == typeinfer.Unknown {
			t = typeinfer.Text
		}
		cols[i] = Column{Name: n, Type: t}
	}
	m, err := NewColumnTypeMap(cols...)
	if err != nil {
		return Columns{}, errs.Wrap(errs.KindSourceFormat, "build column map", err)
	}

	zerolog.Ctx(ctx).Debug().
		Int("columns", m.Len()).
		Int("rows", rows).
		Msg("scan complete")

	return Columns{Headers: headers, Map: m, Rows: rows}, nil
}

func sourceError(err error, line int) error {
	var rse *csv.RowShapeError
	if errors.As(err, &rse) {
		return errs.Newf(errs.KindSourceFormat, "expected %d fields, got %d", rse.Want, rse.Got).AtLine(rse.Line)
	}
	return errs.Wrap(errs.KindSourceFormat, "malformed record", err).AtLine(line)
}
