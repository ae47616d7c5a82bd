// Package bytesize recognizes data sizes in chat text and normalizes them to byte counts.
package bytesize

import "github.com/liuran001/KnowItAll-Go/bot/provider"

// Name is the provider identifier.
const Name = "Bytes"

// Provider implements provider.Provider for data-size expressions.
// It is immutable after New and safe for concurrent use.
type Provider struct {
	minBytes float64
}

var _ provider.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithMinBytes drops sizes smaller than n bytes, so "1 B" style noise gets no tooltip.
func WithMinBytes(n int) Option {
	return func(p *Provider) {
		p.minBytes = float64(max(n, 0))
	}
}

// New creates a Bytes provider.
func New(opts ...Option) *Provider {
	p := &Provider{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return Name
}

// ParseMessage returns one segment per size expression in text that normalizes
// successfully, in the order they appear.
func (p *Provider) ParseMessage(text string) []provider.InfoSegment {
	var segments []provider.InfoSegment
	for m := range Matches(text) {
		seg, ok := Normalize(m)
		if !ok || !p.keep(seg) {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

func (p *Provider) keep(seg provider.InfoSegment) bool {
	if p.minBytes == 0 {
		return true
	}
	info, ok := seg.Info.(provider.Bytes)
	return ok && info.Bytes >= p.minBytes
}
