package calc

import (
	"math"
	"math/big"
	"strconv"

	"github.com/dustin/go-humanize"
)

const Precision = 6

// Format renders a value for the display: integers as-is, everything else
// rounded to Precision decimal places with trailing zeros stripped.
func Format(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}
	if value == 0 {
		return "0"
	}
	if value == math.Trunc(value) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	s := humanize.Ftoa(Round(value))
	if s == "-0" {
		return "0"
	}
	return s
}

// Round returns value rounded to Precision decimal places. Ties are
// decided on the exact binary value and go away from zero.
func Round(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	rounded, err := strconv.ParseFloat(fixed(value), 64)
	if err != nil {
		return value
	}
	return rounded
}

func fixed(value float64) string {
	return new(big.Rat).SetFloat64(value).FloatString(Precision)
}

// ParseNumber parses an operand string. Partial inputs such as "3." and
// "-0." are accepted, a bare "-" is not.
func ParseNumber(s string) (float64, bool) {
	if s == "" || s == "-" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c == '.' || c == '-' && i == 0) {
			return 0, false
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// formatPlain is the shortest fixed-notation form of value, without the
// six-place rounding of Format.
func formatPlain(value float64) string {
	if value == 0 {
		return "0"
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
