package provider

// InfoSegment is a recognized region of message text and its normalized value.
// Start and End are byte offsets into the source text, half-open.
type InfoSegment struct {
	Start int
	End   int
	Info  Tooltip
}

// Len returns the length of the segment in bytes.
func (s InfoSegment) Len() int {
	return s.End - s.Start
}

// Text returns the substring of src covered by the segment.
// It returns an empty string when the offsets do not fit src.
func (s InfoSegment) Text(src string) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return ""
	}
	return src[s.Start:s.End]
}

// Tooltip is the payload carried by an InfoSegment.
// Each provider family contributes its own variant.
type Tooltip interface {
	Kind() string
}

// KindBytes identifies the Bytes payload.
const KindBytes = "bytes"

// Bytes describes a data size found in text.
type Bytes struct {
	// Bytes is the canonical size in bytes. It can be fractional after a bit-to-byte conversion.
	Bytes float64
	// Bits reports whether the original unit denoted bits.
	Bits bool
	// SI reports whether the magnitude prefix was read as decimal (powers of 1000)
	// rather than binary (powers of 1024).
	SI bool
}

func (Bytes) Kind() string { return KindBytes }

// Annotation is an InfoSegment tagged with the provider that produced it.
type Annotation struct {
	Provider string
	InfoSegment
}
