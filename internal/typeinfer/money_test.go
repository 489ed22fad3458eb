package typeinfer

import (
	"testing"

	"github.com/shopspring/decimal"
)

// TestParseMoney verifies currency stripping, grouping and accounting
// negatives all land on the same decimal.
func TestParseMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "$1,234.56", want: "1234.56"},
		{in: "1234.56", want: "1234.56"},
		{in: "($100)", want: "-100"},
		{in: "(1,000.50)", want: "-1000.5"},
		{in: "-$5.25", want: "-5.25"},
		{in: "£ 12", want: "12"},
		{in: "1_000_000", want: "1000000"},
		{in: "50", want: "50"},
		{in: " .5 ", want: "0.5"},
		{in: "1 234.50", want: "1234.5"},
		{in: "€ 1 000  000", want: "1000000"},
		{in: "(€ 2 500)", want: "-2500"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMoney(tt.in)
			if err != nil {
				t.Fatalf("ParseMoney(%q) error = %v", tt.in, err)
			}
			if want := decimal.RequireFromString(tt.want); !got.Equal(want) {
				t.Fatalf("ParseMoney(%q) = %s, want %s", tt.in, got, want)
			}
		})
	}
}

func TestParseMoneyEquivalence(t *testing.T) {
	t.Parallel()

	a, err := ParseMoney("$1,234.56")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseMoney("1234.56")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) || !a.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("ParseMoney mismatch: %s vs %s", a, b)
	}

	neg, err := ParseMoney("($100)")
	if err != nil {
		t.Fatal(err)
	}
	if !neg.Equal(decimal.NewFromFloat(-100.00)) {
		t.Fatalf("ParseMoney(($100)) = %s, want -100", neg)
	}
}

func TestParseMoneyRejects(t *testing.T) {
	t.Parallel()

	rejects := []string{
		"", "$", "abc", "1,23", "12,34,567", "1e3", "1.2.3", "--5",
		// a sign inside accounting parentheses
		"($-5)", "(-5)", "(+$5)",
		// whitespace that does not form thousands groups
		"2024 01 01", "12 34", "1 2345",
	}
	for _, in := range rejects {
		if _, err := ParseMoney(in); err == nil {
			t.Errorf("ParseMoney(%q) error = nil, want error", in)
		}
	}
}
