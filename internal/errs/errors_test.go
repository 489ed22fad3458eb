package errs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "plain", err: New(KindConfiguration, "no table"), want: "[configuration] no table"},
		{name: "with line", err: Newf(KindRowCoercion, "column %q", "qty").AtLine(4), want: `[row_coercion] line 4: column "qty"`},
		{name: "with cause", err: Wrap(KindStorage, "commit", io.ErrUnexpectedEOF), want: "[storage] commit: unexpected EOF"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	t.Parallel()

	base := Wrap(KindSourceFormat, "read header", io.EOF)
	wrapped := fmt.Errorf("scan orders.csv: %w", base)

	if !IsSourceFormat(wrapped) {
		t.Fatalf("IsSourceFormat(%v) = false", wrapped)
	}
	if !errors.Is(wrapped, io.EOF) {
		t.Fatalf("errors.Is(%v, io.EOF) = false", wrapped)
	}
	if KindOf(context.Canceled) != KindUnknown || KindOf(nil) != KindUnknown {
		t.Fatalf("KindOf on foreign errors should be unknown")
	}
}

func TestAtLineCopies(t *testing.T) {
	t.Parallel()

	e := New(KindRowRejected, "constraint")
	at := e.AtLine(7)
	if e.Line != 0 || at.Line != 7 {
		t.Fatalf("AtLine mutated the receiver: e.Line=%d at.Line=%d", e.Line, at.Line)
	}
	if !IsRowRejected(at) || IsStorage(at) {
		t.Fatalf("kind predicates disagree for %v", at)
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	for k, want := range map[Kind]string{
		KindUnknown:             "unknown",
		KindErrorBudgetExceeded: "error_budget_exceeded",
		Kind(99):                "unknown",
	} {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
