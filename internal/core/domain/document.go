// Package domain holds the core types shared by every indexing, ranking,
// link-graph, and assembly operation. Nothing here reads a file, opens a
// socket, or depends on any adapter — it is the vocabulary the rest of the
// module is built from.
package domain

import "time"

// RefKind classifies an outbound Reference.
type RefKind string

const (
	// RefRelativePath targets another file, optionally with a #anchor.
	RefRelativePath RefKind = "relative-path"
	// RefIdentifier targets a document via a pattern like ADR-013.
	RefIdentifier RefKind = "identifier"
	// RefExternal is a scheme-prefixed link, stored but never expanded.
	RefExternal RefKind = "external"
	// RefImage is an image link, stored but excluded from the link graph.
	RefImage RefKind = "image"
)

// Reference is an outbound link discovered while analyzing a document.
type Reference struct {
	Kind RefKind

	// RawText is the text as it appeared in the source (label or bare token).
	RawText string

	// Target is the unresolved target as written (path, identifier, or URL).
	Target string

	// ResolvedPath is the canonical ForwardIndex.Files key this reference
	// points to, once resolved. Empty if unresolved or unresolvable.
	ResolvedPath string

	// Anchor is the fragment after '#', if any (path references only).
	Anchor string

	// SourceLine is the 1-based line the reference was found on.
	SourceLine int

	// Broken is true once link-graph resolution has run and failed to
	// resolve a relative-path reference.
	Broken bool

	// BrokenReason explains why, when Broken is true.
	BrokenReason BrokenReason
}

// BrokenReason enumerates why a relative-path reference failed to resolve.
type BrokenReason string

const (
	ReasonMissingFile   BrokenReason = "missing_file"
	ReasonMissingAnchor BrokenReason = "missing_anchor"
	ReasonPlaceholder   BrokenReason = "placeholder"
)

// Section is a contiguous heading-delimited span within a Document.
// Sections are ordered, disjoint, and partition their document's line range.
type Section struct {
	// Heading is the heading text with the leading '#' markers stripped.
	// The synthetic prelude section (Level 0) has an empty Heading.
	Heading string

	// Level is the ATX heading level (1..6), or 0 for the prelude.
	Level int

	// StartLine is the 1-based first line of the section (the heading line,
	// or 1 for the prelude).
	StartLine int

	// EndLine is exclusive: the section spans [StartLine, EndLine).
	EndLine int

	// SimHash is the 64-bit fingerprint of this section's tokens.
	SimHash uint64

	// body holds the section's raw text, loaded lazily by the store that
	// produced this Document. It is never serialized.
	body       string
	bodyLoaded bool
}

// SetBody attaches the section's raw text. Called once, by whatever loaded
// the underlying Document (the indexer at build time, or a lazy loader when
// reading back a persisted index).
func (s *Section) SetBody(text string) {
	s.body = text
	s.bodyLoaded = true
}

// Body returns the section's raw text and whether it has been loaded.
func (s *Section) Body() (string, bool) {
	return s.body, s.bodyLoaded
}

// Document is an immutable snapshot of one source file, produced by the
// indexer at build time.
type Document struct {
	// Path is the file's slash-separated path relative to the indexed root.
	// It is the unique key under which the document is stored.
	Path string

	// SizeBytes is the raw file size in bytes.
	SizeBytes int64

	// LineCount is the number of lines in the decoded file.
	LineCount int

	// ModifiedAt is the file's last-modified timestamp.
	ModifiedAt time.Time

	// Sections is the ordered, disjoint list of sections partitioning the
	// document, starting with the synthetic level-0 prelude.
	Sections []Section

	// TermFreq maps stemmed term to occurrence count across the whole
	// document (heading tokens counted with weight 2).
	TermFreq map[string]int

	// Length is the document length: sum of TermFreq values.
	Length int

	// SimHash is the 64-bit fingerprint over the whole document's tokens.
	SimHash uint64

	// MinHash is the H-value MinHash signature (H fixed at index time).
	MinHash []uint64

	// References is every outbound reference found in the document.
	References []Reference

	// Identifier is the pattern-style identifier this document itself
	// answers to (e.g. "013" for docs/adr/ADR-013-retries.md), if any.
	Identifier string
}

// CurrentIndexVersion is the on-disk format version written by this build
// of the indexer. jsonindex migrates an older Version forward on load; a
// Version greater than this is loaded as-is, without migration.
const CurrentIndexVersion = 1

// ForwardIndex is the persisted, canonical index: document path to Document,
// plus corpus-level aggregates needed for ranking.
type ForwardIndex struct {
	// Version is the on-disk format version. See internal/adapters/driven/storage/jsonindex.
	Version int

	// IndexedAt is when this index was built.
	IndexedAt time.Time

	// Files maps document path to Document.
	Files map[string]*Document

	// AvgDocLength is the corpus average of Document.Length.
	AvgDocLength float64

	// IDF maps stemmed term to its inverse document frequency.
	IDF map[string]float64

	// Identifiers maps a zero-padded identifier string (e.g. "013") to the
	// document path that answers to it.
	Identifiers map[string]string

	// IdentifierWidth is the zero-padding width inferred at build time
	// (minimum 3).
	IdentifierWidth int
}

// ReverseIndex maps a stemmed term to the sorted set of document paths
// containing it. It is derived from ForwardIndex and can always be rebuilt.
type ReverseIndex struct {
	Version int
	Terms   map[string][]string
}

// Stats is the small, human-oriented corpus summary persisted alongside the
// two indexes.
type Stats struct {
	Version        int
	DocumentCount  int
	AvgDocLength   float64
	IndexedAt      time.Time
	BuildDuration  time.Duration
	SkippedFiles   int
}
