package bytesize

import (
	"math"
	"strconv"
	"strings"

	"github.com/liuran001/KnowItAll-Go/bot/provider"
)

type multiplier struct {
	si     float64
	binary float64
}

var prefixMultipliers = map[string]multiplier{
	"k":    {si: 1e3, binary: 1 << 10},
	"kilo": {si: 1e3, binary: 1 << 10},
	"m":    {si: 1e6, binary: 1 << 20},
	"mega": {si: 1e6, binary: 1 << 20},
	"g":    {si: 1e9, binary: 1 << 30},
	"giga": {si: 1e9, binary: 1 << 30},
	"t":    {si: 1e12, binary: 1 << 40},
	"tera": {si: 1e12, binary: 1 << 40},
	"p":    {si: 1e15, binary: 1 << 50},
	"peta": {si: 1e15, binary: 1 << 50},
}

// Multiplier returns the scale for a magnitude prefix.
// Unknown and empty prefixes scale by 1.
func Multiplier(prefix string, si bool) float64 {
	m, ok := prefixMultipliers[strings.ToLower(prefix)]
	if !ok {
		return 1
	}
	if si {
		return m.si
	}
	return m.binary
}

// Normalize converts a match into a Bytes segment.
// It reports false when the match lacks a value or unit, or the value is not a
// non-negative number; such matches are skipped rather than treated as errors.
func Normalize(m Match) (provider.InfoSegment, bool) {
	if m.Value == "" || m.Unit == "" {
		return provider.InfoSegment{}, false
	}

	value, ok := parseValue(m.Value)
	if !ok {
		return provider.InfoSegment{}, false
	}

	si := !m.Binary
	value *= Multiplier(m.Prefix, si)

	bits := strings.ToLower(m.Unit) == "bit"
	if bits {
		value /= 8
	}

	return provider.InfoSegment{
		Start: m.Start,
		End:   m.End,
		Info: provider.Bytes{
			Bytes: value,
			Bits:  bits,
			SI:    si,
		},
	}, true
}

func parseValue(literal string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(literal), ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
