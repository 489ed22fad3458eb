package csv

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestReaderHeaderAndRows verifies BOM stripping, row iteration and line
// tracking across a quoted multi-line field.
func TestReaderHeaderAndRows(t *testing.T) {
	t.Parallel()

	src := "\uFEFFid,note\n1,\"two\nlines\"\n2,plain\n"
	r := NewReader(strings.NewReader(src), Options{})

	h, err := r.Header()
	if err != nil {
		t.Fatalf("Header() error = %v", err)
	}
	if diff := cmp.Diff([]string{"id", "note"}, h); diff != "" {
		t.Fatalf("Header() mismatch (-want +got):\n%s", diff)
	}

	var rows [][]string
	var lines []int
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		rows = append(rows, rec)
		lines = append(lines, r.Line())
	}

	want := [][]string{{"1", "two\nlines"}, {"2", "plain"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 4}, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderRowShapeError(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("a,b\n1,2\n3\n"), Options{})
	if _, err := r.Header(); err != nil {
		t.Fatalf("Header() error = %v", err)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("Next() row 1 error = %v", err)
	}
	_, err := r.Next()
	var rse *RowShapeError
	if !errors.As(err, &rse) {
		t.Fatalf("Next() error = %v, want *RowShapeError", err)
	}
	if rse.Line != 3 || rse.Want != 2 || rse.Got != 1 {
		t.Fatalf("RowShapeError = %+v, want line 3 want 2 got 1", rse)
	}
}

func TestReaderEmptySource(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader(""), Options{})
	if _, err := r.Header(); !errors.Is(err, ErrNoHeader) {
		t.Fatalf("Header() error = %v, want ErrNoHeader", err)
	}
}

func TestReaderSemicolonAndRewind(t *testing.T) {
	t.Parallel()

	src := strings.NewReader("a;b\nx;y\n")
	for pass := 0; pass < 2; pass++ {
		if err := Rewind(src); err != nil {
			t.Fatalf("Rewind() error = %v", err)
		}
		r := NewReader(src, Options{Comma: ';'})
		if _, err := r.Header(); err != nil {
			t.Fatalf("pass %d: Header() error = %v", pass, err)
		}
		rec, err := r.Next()
		if err != nil {
			t.Fatalf("pass %d: Next() error = %v", pass, err)
		}
		if diff := cmp.Diff([]string{"x", "y"}, rec); diff != "" {
			t.Fatalf("pass %d: row mismatch (-want +got):\n%s", pass, diff)
		}
	}
}
