package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"integer", 3.0, "3"},
		{"negative integer", -42, "-42"},
		{"zero", 0, "0"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"rounds to six places", 3.14159265, "3.141593"},
		{"strips trailing zeros", 1.5, "1.5"},
		{"rounds up to integer", 2.9999999, "3"},
		{"tie rounds up", 1.0 / 128, "0.007813"},
		{"negative tie rounds away from zero", -5.0 / 128, "-0.039063"},
		{"below tie rounds down", 0.0000014999, "0.000001"},
		{"tiny negative", -0.0000001, "0"},
		{"large integer", 1e20, "100000000000000000000"},
		{"nan", math.NaN(), "0"},
		{"inf", math.Inf(1), "0"},
		{"negative inf", math.Inf(-1), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.value))
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.333333, Round(1.0/3))
	assert.Equal(t, 12.0, Round(12))
	assert.Equal(t, 0.007813, Round(1.0/128))
	assert.Equal(t, -0.039063, Round(-5.0/128))
	assert.Equal(t, 0.0, Round(-0.0000001))
	assert.True(t, math.IsNaN(Round(math.NaN())))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{"3.", 3, true},
		{"-0.", 0, true},
		{"-7", -7, true},
		{"0.05", 0.05, true},
		{"", 0, false},
		{"-", 0, false},
		{"NaN", 0, false},
		{"1e3", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
