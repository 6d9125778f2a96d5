// Package driving declares the services the outer CLI/MCP adapters call —
// the "driving" side of the hexagon. Every method here is a pure function
// over an already-loaded domain.ForwardIndex except IndexerService.Build,
// which is the one place that reads the filesystem. The build lock is taken
// by the caller through driven.IndexStore.Lock, not by Build.
package driving

import (
	"context"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

// BuildOptions configures an index build (spec.md §4.3).
type BuildOptions struct {
	// Root is the directory to walk.
	Root string

	// Extensions is the include filter (default {md, txt, rst}).
	Extensions []string

	// Excludes is a gitignore-style list of exclude patterns.
	Excludes []string

	// Workers bounds indexing parallelism (default min(8, CPU count)).
	Workers int
}

// IndexerService builds a ForwardIndex from a directory tree (C3).
type IndexerService interface {
	Build(ctx context.Context, opts BuildOptions) (*domain.ForwardIndex, *domain.Stats, error)
}

// RankingService runs BM25 queries over a loaded index (C4).
type RankingService interface {
	Query(idx *domain.ForwardIndex, query string, opts domain.QueryOptions) ([]domain.ScoredDocument, error)
	QuerySections(idx *domain.ForwardIndex, query string, docs []domain.ScoredDocument, maxSections int) ([]domain.ScoredSection, error)
}

// SimilarityService finds near-duplicate documents and sections (C5).
type SimilarityService interface {
	Duplicates(idx *domain.ForwardIndex, threshold float64) ([]domain.DuplicatePair, error)
	SectionClusters(idx *domain.ForwardIndex, threshold float64, minFiles int) ([]domain.SectionCluster, error)
}

// LinkGraphService computes the derived link graph and its analyses (C6).
type LinkGraphService interface {
	Build(idx *domain.ForwardIndex) *domain.Graph
	Backlinks(idx *domain.ForwardIndex, path string) []string
	Orphans(idx *domain.ForwardIndex, exclude []string) []string
	BrokenLinks(idx *domain.ForwardIndex) []domain.BrokenLink
	Canonicality(idx *domain.ForwardIndex, graph *domain.Graph) []domain.CanonicalityScore
	Stale(idx *domain.ForwardIndex, graph *domain.Graph, days int, minInlinks int) []domain.StaleDoc
	CanonicalOrphans(idx *domain.ForwardIndex, graph *domain.Graph, tau float64) []string
}

// AssemblerService runs the multi-stage context assembly pipeline (C7).
type AssemblerService interface {
	Assemble(ctx context.Context, idx *domain.ForwardIndex, query string, opts domain.AssembleOptions) (*domain.Digest, error)
}
