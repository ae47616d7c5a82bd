package provider

// Provider maps raw message text to an ordered list of annotations.
//
// Implementations should be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns a stable, human-readable identifier (e.g., "Bytes").
	Name() string

	// ParseMessage returns the segments found in text, ordered left to right.
	// Text with nothing recognizable yields an empty result, never an error.
	ParseMessage(text string) []InfoSegment
}
