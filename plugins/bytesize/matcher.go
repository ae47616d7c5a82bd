package bytesize

import (
	"iter"
	"regexp"
)

// sizePattern locates data-size expressions such as "10 KiB", "1,500 megabytes" or "64-bit".
// The is_normal capture holds the binary marker: the "i" of KiB or the "ibi"/"ebi" of kibi/mebi.
var sizePattern = regexp.MustCompile(`(?i)\b` +
	`(?P<size_value>\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)(?:-|[ \t\x{00A0}]+|\s)?` +
	`(?:(?P<size_prefix>kilo|mega|giga|tera|peta|k|m|g|t|p)(?P<is_normal>[ie]bi|i)?)?` +
	`(?P<size_unit>bit|byte|b)s?\b`)

var (
	valueIndex  = sizePattern.SubexpIndex("size_value")
	prefixIndex = sizePattern.SubexpIndex("size_prefix")
	binaryIndex = sizePattern.SubexpIndex("is_normal")
	unitIndex   = sizePattern.SubexpIndex("size_unit")
)

// Match is a single size expression located in text.
// Value and Unit are empty when the corresponding capture did not participate.
type Match struct {
	Start  int
	End    int
	Value  string
	Prefix string
	Unit   string
	Binary bool
}

// Matches returns the size expressions in text, left to right and non-overlapping.
// The sequence can be ranged over more than once.
func Matches(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, loc := range sizePattern.FindAllStringSubmatchIndex(text, -1) {
			if insideNumber(text, loc[0]) {
				continue
			}
			if !yield(newMatch(text, loc)) {
				return
			}
		}
	}
}

// insideNumber reports whether a match at start continues a numeric literal
// the pattern rejected, as in "1,5 GB" or "1.2.3 MB".
func insideNumber(text string, start int) bool {
	if start == 0 {
		return false
	}
	switch c := text[start-1]; {
	case isDigit(c):
		return true
	case c == ',' || c == '.':
		return start >= 2 && isDigit(text[start-2])
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func newMatch(text string, loc []int) Match {
	return Match{
		Start:  loc[0],
		End:    loc[1],
		Value:  group(text, loc, valueIndex),
		Prefix: group(text, loc, prefixIndex),
		Unit:   group(text, loc, unitIndex),
		Binary: loc[2*binaryIndex] >= 0,
	}
}

func group(text string, loc []int, idx int) string {
	start, end := loc[2*idx], loc[2*idx+1]
	if start < 0 {
		return ""
	}
	return text[start:end]
}
