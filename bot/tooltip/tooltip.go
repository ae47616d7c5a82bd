// Package tooltip renders provider annotations as short human-readable lines.
package tooltip

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/liuran001/KnowItAll-Go/bot/provider"
)

// Render formats a single annotation found in source.
// It returns false for payload kinds it does not know how to display.
func Render(source string, a provider.Annotation) (string, bool) {
	var body string
	switch info := a.Info.(type) {
	case provider.Bytes:
		body = RenderBytes(info)
	case *provider.Bytes:
		if info == nil {
			return "", false
		}
		body = RenderBytes(*info)
	default:
		return "", false
	}

	quoted := strings.TrimSpace(a.Text(source))
	if quoted == "" {
		return body, true
	}
	return fmt.Sprintf("%q = %s", quoted, body), true
}

// RenderBytes shows the exact byte count followed by the size in the other
// prefix convention: binary units for a decimal reading and decimal units for a
// binary one. Bit-denominated sizes also show the bit count.
func RenderBytes(b provider.Bytes) string {
	var sb strings.Builder
	sb.WriteString(humanize.Commaf(b.Bytes))
	if b.Bytes == 1 {
		sb.WriteString(" byte")
	} else {
		sb.WriteString(" bytes")
	}

	if b.Bits {
		fmt.Fprintf(&sb, ", %s bits", humanize.Commaf(b.Bytes*8))
	}

	whole := wholeBytes(b.Bytes)
	if b.SI {
		fmt.Fprintf(&sb, " (%s)", humanize.BigIBytes(whole))
	} else {
		fmt.Fprintf(&sb, " (%s)", humanize.BigBytes(whole))
	}
	return sb.String()
}

// RenderAll renders up to limit annotations, one per line, and reports how many
// renderable annotations were left out. A limit <= 0 means no limit.
func RenderAll(source string, annotations []provider.Annotation, limit int) (string, int) {
	lines := make([]string, 0, len(annotations))
	omitted := 0
	for _, a := range annotations {
		line, ok := Render(source, a)
		if !ok {
			continue
		}
		if limit > 0 && len(lines) >= limit {
			omitted++
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), omitted
}

func wholeBytes(value float64) *big.Int {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return big.NewInt(0)
	}
	whole, _ := new(big.Float).SetFloat64(math.Round(value)).Int(nil)
	return whole
}
