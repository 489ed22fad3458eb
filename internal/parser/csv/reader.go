// Package csv reads delimited text with exactly one header row.
//
// Reader is the shared front end of the scan and import passes: both rewind
// the same seekable source, read the header, then pull data rows one at a
// time. Row width is enforced against the header; a mismatch is reported as
// a *RowShapeError carrying the source line so callers can decide whether it
// is fatal.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Options configures the reader. The zero value reads comma-separated input.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// LazyQuotes tolerates stray quotes inside unquoted fields.
	LazyQuotes bool

	// TrimSpace strips surrounding whitespace from every data field.
	TrimSpace bool
}

// ErrNoHeader is returned by Header when the source has no rows at all.
var ErrNoHeader = errors.New("csv: source has no header row")

// RowShapeError reports a data row whose width differs from the header.
type RowShapeError struct {
	Line int
	Want int
	Got  int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("csv: line %d: expected %d fields, got %d", e.Line, e.Want, e.Got)
}

// Reader wraps encoding/csv with header handling and width checks.
type Reader struct {
	cr     *csv.Reader
	trim   bool
	width  int
	line   int
	header bool
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader, opt Options) *Reader {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = opt.LazyQuotes
	// Width is enforced by Next so the error can carry the header width.
	cr.FieldsPerRecord = -1
	return &Reader{cr: cr, trim: opt.TrimSpace}
}

// Rewind seeks rs back to its first byte. Both passes call it before
// constructing a Reader.
func Rewind(rs io.Seeker) error {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("csv: rewind source: %w", err)
	}
	return nil
}

// Header reads the header row and strips a UTF-8 BOM from its first cell.
// It must be called once, before Next.
func (r *Reader) Header() ([]string, error) {
	if r.header {
		return nil, errors.New("csv: header already read")
	}
	rec, err := r.cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	r.header = true
	r.width = len(rec)
	r.line, _ = r.cr.FieldPos(0)

	out := make([]string, len(rec))
	copy(out, rec)
	if len(out) > 0 {
		out[0] = strings.TrimPrefix(out[0], "\uFEFF")
	}
	return out, nil
}

// Next returns the next data row. It returns io.EOF when the source is
// exhausted and a *RowShapeError when the row width differs from the header.
func (r *Reader) Next() ([]string, error) {
	if !r.header {
		return nil, errors.New("csv: Next called before Header")
	}
	rec, err := r.cr.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			r.line = pe.StartLine
		}
		return nil, fmt.Errorf("csv: read row: %w", err)
	}
	r.line, _ = r.cr.FieldPos(0)
	if len(rec) != r.width {
		return nil, &RowShapeError{Line: r.line, Want: r.width, Got: len(rec)}
	}
	if r.trim {
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
	}
	return rec, nil
}

// Line is the 1-based source line of the most recently read record.
func (r *Reader) Line() int { return r.line }
