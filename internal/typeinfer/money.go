package typeinfer

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// plainNumberRe is the shape a cleaned money value must have: optional
	// sign, digits with an optional fraction. Exponents are not money.
	plainNumberRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

	// groupedNumberRe validates comma thousands grouping ("1,234,567.89").
	groupedNumberRe = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

	errNotMoney    = errors.New("not a money value")
	errNoMoneyMark = errors.New("no currency, grouping or decimal marker")
)

// ParseMoney parses a currency-formatted amount into a decimal:
//
//	"$1,234.56" -> 1234.56
//	"1234.56"   -> 1234.56
//	"($100)"    -> -100
//	"€ 1_000"   -> 1000
//
// Currency symbols (Unicode category Sc), underscores and padding whitespace
// are stripped. Commas, and whitespace between digits, must form valid
// thousands groups. Surrounding parentheses negate the amount and cannot be
// combined with an explicit sign.
func ParseMoney(s string) (decimal.Decimal, error) {
	return parseMoney(s, false)
}

// parseMoney implements ParseMoney. With requireMark set, a value that is a
// bare integer ("50") is rejected so that detection leaves it to the integer
// rule; coercion into an already-resolved decimal column accepts it.
func parseMoney(s string, requireMark bool) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return decimal.Decimal{}, errNotMoney
	}

	marked := false
	negate := false
	if len(v) >= 2 && v[0] == '(' && v[len(v)-1] == ')' {
		negate = true
		marked = true
		v = v[1 : len(v)-1]
	}

	rs := []rune(v)
	var b strings.Builder
	b.Grow(len(v))
	hasComma := false
	for i, r := range rs {
		switch {
		case unicode.IsSpace(r):
			// Whitespace between digits is a thousands separator and must
			// form the same groups a comma would. Anywhere else it is padding.
			marked = true
			if i > 0 && isDigit(rs[i-1]) && isDigit(nextNonSpace(rs[i+1:])) {
				hasComma = true
				b.WriteByte(',')
			}
		case r == '_':
			marked = true
		case unicode.Is(unicode.Sc, r):
			marked = true
		case r == ',':
			hasComma = true
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if negate && cleaned != "" && (cleaned[0] == '-' || cleaned[0] == '+') {
		return decimal.Decimal{}, errNotMoney
	}

	if hasComma {
		if !groupedNumberRe.MatchString(cleaned) {
			return decimal.Decimal{}, errNotMoney
		}
		marked = true
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	if !plainNumberRe.MatchString(cleaned) {
		return decimal.Decimal{}, errNotMoney
	}
	if strings.Contains(cleaned, ".") {
		marked = true
	}
	if requireMark && !marked {
		return decimal.Decimal{}, errNoMoneyMark
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, errNotMoney
	}
	if negate {
		d = d.Neg()
	}
	return d, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func nextNonSpace(rs []rune) rune {
	for _, r := range rs {
		if !unicode.IsSpace(r) {
			return r
		}
	}
	return 0
}
