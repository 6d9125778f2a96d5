package domain

// DocType is the closed set of document-type classifications used by
// canonicality scoring and cross-reference expansion priority.
type DocType string

const (
	DocTypeADR          DocType = "adr"
	DocTypeArchitecture DocType = "architecture"
	DocTypeRunbook      DocType = "runbook"
	DocTypeTesting      DocType = "testing"
	DocTypeArchived     DocType = "archived"
	DocTypeExample      DocType = "example"
	DocTypeReport       DocType = "report"
	DocTypeAgent        DocType = "agent"
	DocTypeUnknown      DocType = "unknown"
)

// BrokenLink is a single failed relative-path resolution, as reported by
// check-links.
type BrokenLink struct {
	SourcePath string
	SourceLine int
	RawTarget  string
	Reason     BrokenReason
}

// CanonicalityInput is the set of facts canonicality scoring needs about one
// document; everything else (base weight, boosts) is derived from these.
type CanonicalityInput struct {
	Path         string
	Type         DocType
	InboundCount int
	AgeDays      float64
}

// CanonicalityScore is a computed score for one document, in [0, 1].
type CanonicalityScore struct {
	Path  string
	Type  DocType
	Score float64
}

// StaleDoc is a document flagged by the Stale query: old and under-linked.
type StaleDoc struct {
	Path         string
	AgeDays      float64
	InboundCount int
}

// ConsolidationGroup is a cluster of near-duplicate documents (C5) with a
// recommended canonical target chosen from the link graph (C6): the member
// with the highest canonicality score.
type ConsolidationGroup struct {
	// KeepPath is the recommended canonical document to retain.
	KeepPath string

	// MergePaths are the other near-duplicate documents in the cluster,
	// sorted ascending, candidates for consolidation into KeepPath.
	MergePaths []string

	// Similarity is the lowest pairwise similarity observed within the
	// cluster, a conservative confidence signal.
	Similarity float64
}

// Graph is the derived, directed link graph computed on demand from a
// ForwardIndex. It is never persisted; it is cheap to recompute.
type Graph struct {
	// Nodes is every document path in the corpus.
	Nodes []string

	// Edges maps source path to the resolved target paths it references.
	Edges map[string][]string

	// Backlinks maps target path to the source paths that reference it.
	Backlinks map[string][]string
}
