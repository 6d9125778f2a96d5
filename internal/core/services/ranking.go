// Package services implements the driving ports: indexing, ranking,
// similarity, link-graph analysis, and context assembly. Every operation
// here except Indexer.Build is a pure function over an already-loaded
// domain.ForwardIndex.
package services

import (
	"sort"
	"strings"

	"github.com/basalt-docs/docdex/internal/analyzer"
	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/ports/driving"
)

// BM25 constants (spec.md §4.4).
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// DefaultTopK is the default document result count for Query.
const DefaultTopK = 10

var _ driving.RankingService = (*RankingService)(nil)

// RankingService implements BM25 ranking at both document and section
// granularity.
type RankingService struct{}

// NewRankingService constructs a RankingService.
func NewRankingService() *RankingService {
	return &RankingService{}
}

// stemQuery tokenizes and stems a query string identically to indexing.
func stemQuery(query string) []string {
	return analyzer.TokenizeAndStem(query)
}

// bm25Doc computes the BM25 score of stemmed query terms against one
// document, given corpus-level IDF and average document length.
func bm25Doc(terms []string, doc *domain.Document, avgLen float64, idf map[string]float64) float64 {
	if doc.Length == 0 {
		return 0
	}
	norm := 1 - bm25B + bm25B*(float64(doc.Length)/avgLen)

	var score float64
	for _, t := range terms {
		tf := float64(doc.TermFreq[t])
		if tf == 0 {
			continue
		}
		idfT := idf[t]
		score += idfT * (tf * (bm25K1 + 1)) / (tf + bm25K1*norm)
	}
	return score
}

// Query returns the top-K documents scored by BM25, descending score then
// ascending path (spec.md §4.4). Empty query (after stemming) returns an
// empty, non-error result.
func (s *RankingService) Query(idx *domain.ForwardIndex, query string, opts domain.QueryOptions) ([]domain.ScoredDocument, error) {
	terms := stemQuery(query)
	if len(terms) == 0 {
		return []domain.ScoredDocument{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	avgLen := idx.AvgDocLength
	if avgLen == 0 {
		avgLen = 1
	}

	results := make([]domain.ScoredDocument, 0, len(idx.Files))
	for path, doc := range idx.Files {
		score := bm25Doc(terms, doc, avgLen, idx.IDF)
		if score > 0 {
			results = append(results, domain.ScoredDocument{Path: path, Score: score})
		}
	}

	sortScoredDocs(results)

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func sortScoredDocs(docs []domain.ScoredDocument) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].Path < docs[j].Path
	})
}

// QuerySections runs section-level BM25 across the sections of the given
// (already document-ranked) documents, reusing document-level IDF (spec.md
// §4.4: "the per-section IDF is not recomputed"). Section term frequencies
// are computed on demand from the section body.
func (s *RankingService) QuerySections(
	idx *domain.ForwardIndex, query string, docs []domain.ScoredDocument, maxSections int,
) ([]domain.ScoredSection, error) {
	terms := stemQuery(query)
	if len(terms) == 0 {
		return []domain.ScoredSection{}, nil
	}

	avgLen := idx.AvgDocLength
	if avgLen == 0 {
		avgLen = 1
	}

	var candidates []domain.ScoredSection
	for _, sd := range docs {
		candidates = append(candidates, scoreDocSections(idx, terms, sd.Path, avgLen)...)
	}

	if len(candidates) == 0 {
		return []domain.ScoredSection{}, nil
	}

	maxScore := 0.0
	for _, c := range candidates {
		if c.BM25 > maxScore {
			maxScore = c.BM25
		}
	}
	epsilon := 0.15 * maxScore

	filtered := make([]domain.ScoredSection, 0, len(candidates))
	for _, c := range candidates {
		if c.BM25 > epsilon {
			filtered = append(filtered, c)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].BM25 != filtered[j].BM25 {
			return filtered[i].BM25 > filtered[j].BM25
		}
		if filtered[i].DocPath != filtered[j].DocPath {
			return filtered[i].DocPath < filtered[j].DocPath
		}
		return idx.Files[filtered[i].DocPath].Sections[filtered[i].Index].StartLine <
			idx.Files[filtered[j].DocPath].Sections[filtered[j].Index].StartLine
	})

	if maxSections > 0 && len(filtered) > maxSections {
		filtered = filtered[:maxSections]
	}
	return filtered, nil
}

// scoreDocSections runs BM25 for every loaded section of one document
// against a pre-stemmed term list, reusing corpus-level IDF and average
// document length (spec.md §4.4: "the per-section IDF is not recomputed").
// Sections with zero score are dropped; no epsilon filter is applied here,
// since callers decide their own cutoff (top-K vs a relative floor).
func scoreDocSections(idx *domain.ForwardIndex, terms []string, path string, avgLen float64) []domain.ScoredSection {
	doc, ok := idx.Files[path]
	if !ok {
		return nil
	}
	var out []domain.ScoredSection
	for i, sec := range doc.Sections {
		body, loaded := sec.Body()
		if !loaded {
			continue
		}
		tf := sectionTermFreq(body)
		length := 0
		for _, c := range tf {
			length += c
		}
		if length == 0 {
			continue
		}
		norm := 1 - bm25B + bm25B*(float64(length)/avgLen)
		var score float64
		for _, t := range terms {
			count := float64(tf[t])
			if count == 0 {
				continue
			}
			score += idx.IDF[t] * (count * (bm25K1 + 1)) / (count + bm25K1*norm)
		}
		if score <= 0 {
			continue
		}
		out = append(out, domain.ScoredSection{DocPath: path, Index: i, BM25: score})
	}
	return out
}

// QueryDocSections ranks one document's own sections by BM25 against a
// stemmed query-term list and returns the top topN, highest score first,
// ties broken by document order. Used by cross-reference expansion to pick
// which sections of a target document to include (spec.md §4.7 Stage 2).
func (s *RankingService) QueryDocSections(idx *domain.ForwardIndex, terms []string, path string, topN int) []domain.ScoredSection {
	avgLen := idx.AvgDocLength
	if avgLen == 0 {
		avgLen = 1
	}
	scored := scoreDocSections(idx, terms, path, avgLen)
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].BM25 != scored[j].BM25 {
			return scored[i].BM25 > scored[j].BM25
		}
		return scored[i].Index < scored[j].Index
	})
	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

// sectionTermFreq re-analyzes a section body to get stemmed term
// frequencies, using the same code-span and heading-weight rules as
// full-document indexing (spec.md §4.4: "each section's tf is counted from
// its body on demand by re-analyzing the section text").
func sectionTermFreq(body string) map[string]int {
	freq, _ := analyzer.TermFrequencies(strings.Split(body, "\n"))
	return freq
}
