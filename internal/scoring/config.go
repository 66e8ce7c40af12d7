// Package scoring resolves argument trees, evidence and linkage debates into
// truth scores, and compares belief statements for equivalency. Every function
// is pure and safe for concurrent use.
package scoring

const (
	DefaultDamping           = 0.5
	DefaultMaxDepth          = 32
	DefaultEvidenceWeight    = 0.25
	DefaultEvidenceScale     = 2.0
	DefaultDebunkedThreshold = 0.05
)

// Config holds the resolver constants.
type Config struct {
	// Damping is d in argRank = (1-d)*selfTruth + d*f(pro-con).
	Damping float64
	// MaxDepth bounds how deep a debate tree may nest.
	MaxDepth int
	// EvidenceWeight bounds the magnitude of the evidence contribution.
	EvidenceWeight float64
	// EvidenceScale is the net EVS at which the contribution reaches tanh(1) of its bound.
	EvidenceScale float64
	// DebunkedThreshold flags arguments whose rank has collapsed.
	DebunkedThreshold float64
}

func DefaultConfig() Config {
	return Config{
		Damping:           DefaultDamping,
		MaxDepth:          DefaultMaxDepth,
		EvidenceWeight:    DefaultEvidenceWeight,
		EvidenceScale:     DefaultEvidenceScale,
		DebunkedThreshold: DefaultDebunkedThreshold,
	}
}

// normalized replaces out-of-range fields with defaults.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Damping <= 0 || c.Damping >= 1 {
		c.Damping = d.Damping
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.EvidenceWeight < 0 {
		c.EvidenceWeight = d.EvidenceWeight
	}
	if c.EvidenceScale <= 0 {
		c.EvidenceScale = d.EvidenceScale
	}
	if c.DebunkedThreshold < 0 {
		c.DebunkedThreshold = d.DebunkedThreshold
	}
	return c
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
