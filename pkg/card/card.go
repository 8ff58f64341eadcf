package card

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const DefaultMax = 10000

var ErrCardNotFound = errors.New("card not found")

type Card struct {
	ID      string
	Name    string
	Max     float64
	Current float64
}

// NormalizeMax turns a user supplied maximum into a whole number of at
// least 1. Blank or unparsable input falls back to DefaultMax.
func NormalizeMax(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultMax
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		v = DefaultMax
	}
	return math.Max(1, math.Floor(v))
}

// Clamp bounds value to [0, max]. A NaN on either side stays NaN.
func Clamp(value, max float64) float64 {
	return math.Min(max, math.Max(0, value))
}

type Level int

const (
	LevelLow Level = iota
	LevelMid
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "high"
	case LevelMid:
		return "mid"
	}
	return "low"
}

// Percent is the rounded share of Max left in Current, within 0..100.
func (c Card) Percent() int {
	p := math.Round(c.Current / c.Max * 100)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return int(math.Max(0, math.Min(100, p)))
}

func (c Card) Level() Level {
	switch p := c.Percent(); {
	case p >= 70:
		return LevelHigh
	case p >= 30:
		return LevelMid
	}
	return LevelLow
}
