/*
money.go - Lossless decimal <-> integer cents codec

PURPOSE:
  Converts between decimal currency text (as entered and displayed) and
  the integer cents representation used for all engine arithmetic.
  Floating-point dollar math silently loses cents over repeated
  additions; the engine therefore never touches a float.

PARSING RULES:
  - Integer and fractional parts are parsed separately; the fraction is
    truncated or right-padded to exactly two digits, never rounded
    through a float
  - A leading sign applies to the whole value
  - Thousands separators, currency symbols, and other decoration are
    ignored
  - Empty or unparseable input yields zero

ROUND TRIP:
  ParseCents(FormatCents(x)) == x for every int64 x.

SEE ALSO:
  - impact.go: The only place a decimal rounding step occurs
*/
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCents converts decimal currency text to exact integer cents.
func ParseCents(value string) int64 {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0
	}

	neg := false
	var intPart, fracPart strings.Builder
	seenDot := false
	seenDigit := false

	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			if seenDot {
				fracPart.WriteRune(r)
			} else {
				intPart.WriteRune(r)
			}
		case r == '.' && !seenDot:
			seenDot = true
		case r == '-' && !seenDigit && !seenDot:
			neg = true
		}
	}

	if !seenDigit {
		return 0
	}

	frac := fracPart.String()
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}

	whole, _ := strconv.ParseInt(intPart.String(), 10, 64)
	cents, _ := strconv.ParseInt(frac, 10, 64)

	total := whole*100 + cents
	if neg {
		total = -total
	}
	return total
}

// FormatCents renders integer cents as a decimal string with exactly two
// fractional digits and a sign only when negative. Exact inverse of
// ParseCents for canonical output.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// CentsFromFloat converts a numeric dollar value through its shortest
// decimal rendering, keeping the truncate-to-two-digits parse semantics.
// Boundary use only (JSON numbers in uploaded documents).
func CentsFromFloat(v float64) int64 {
	return ParseCents(strconv.FormatFloat(v, 'f', -1, 64))
}

// DecimalFromCents exposes a cents value as a decimal dollar amount for
// display math. Never used for balance arithmetic.
func DecimalFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
