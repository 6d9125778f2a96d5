package domain

// AssembleOptions configures the Context Assembler pipeline.
type AssembleOptions struct {
	// MaxTokens is the total token budget T. Defaults to 8000.
	MaxTokens int

	// MaxSections is the max number of primary sections S. Defaults to 20.
	MaxSections int

	// Depth is the cross-reference expansion depth d (0, 1, or 2); values
	// outside that range are clamped. 0 disables expansion, so the zero
	// value is not replaced by a default: callers pass 1 for the usual depth.
	Depth int
}

// AssembledSection is one section admitted into the digest, with its
// provenance and rendered body.
type AssembledSection struct {
	DocPath   string
	Heading   string
	StartLine int
	EndLine   int
	Body      string // refined body, ready to render
	Combined  float64
	CrossRef  bool // true if this came from Stage 2 expansion, not Stage 1
	Truncated bool
}

// ManifestEntry describes one primary document contributing to the digest,
// for the machine-readable metadata block.
type ManifestEntry struct {
	Path      string
	BM25      float64
	Canonical float64
}

// Digest is the deterministic output of the Context Assembler.
type Digest struct {
	Query          string
	EstimatedToks  int
	Manifest       []ManifestEntry
	Primary        []AssembledSection
	CrossRefs      []AssembledSection
	BudgetUnderflowed bool
}
