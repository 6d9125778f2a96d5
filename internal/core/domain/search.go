package domain

// ScoredDocument is a single BM25 ranking hit at the document level.
type ScoredDocument struct {
	Path  string
	Score float64
}

// ScoredSection is a single BM25 ranking hit at the section level, along
// with the combined score used for assembler ordering.
type ScoredSection struct {
	DocPath   string
	Index     int // index into Document.Sections
	BM25      float64
	Canonical float64
	Combined  float64 // 0.7*bm25_norm + 0.3*canonicality
}

// QueryOptions configures a ranking Query.
type QueryOptions struct {
	// TopK is the maximum number of documents to return. Defaults to 10.
	TopK int
}

// DocPair is an unordered pair of document paths, always stored with A < B
// lexicographically so callers get deterministic ordering for free.
type DocPair struct {
	A, B string
}

// DuplicatePair is a document-level near-duplicate finding.
type DuplicatePair struct {
	DocPair
	Similarity float64
}

// SectionRef identifies one section within one document.
type SectionRef struct {
	DocPath string
	Index   int
}

// SectionCluster groups near-duplicate sections drawn from at least
// min_files distinct documents.
type SectionCluster struct {
	Label    string // most common heading text in the cluster
	Sections []SectionRef
}
