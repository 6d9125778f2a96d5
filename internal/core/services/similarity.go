package services

import (
	"sort"

	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/ports/driving"
	"github.com/basalt-docs/docdex/internal/fingerprint"
)

var _ driving.SimilarityService = (*SimilarityService)(nil)

// SimilarityService finds near-duplicate documents and sections (C5).
type SimilarityService struct{}

// NewSimilarityService constructs a SimilarityService.
func NewSimilarityService() *SimilarityService {
	return &SimilarityService{}
}

// Duplicates finds document pairs whose combined similarity S(A, B) is at
// least threshold, restricting the quadratic comparison to LSH candidate
// pairs from MinHash banding (spec.md §4.5).
func (s *SimilarityService) Duplicates(idx *domain.ForwardIndex, threshold float64) ([]domain.DuplicatePair, error) {
	if idx == nil {
		return nil, domain.ErrIndexMissing
	}

	paths := sortedPaths(idx)
	candidates := lshCandidatePairs(idx, paths)

	keywordSets := make(map[string]map[string]struct{}, len(paths))
	for _, p := range paths {
		keys := make(map[string]struct{}, len(idx.Files[p].TermFreq))
		for t := range idx.Files[p].TermFreq {
			keys[t] = struct{}{}
		}
		keywordSets[p] = keys
	}

	var out []domain.DuplicatePair
	for pair := range candidates {
		docA, docB := idx.Files[pair.A], idx.Files[pair.B]
		sim := combinedSimilarity(keywordSets[pair.A], keywordSets[pair.B], docA, docB)
		if sim >= threshold {
			out = append(out, domain.DuplicatePair{DocPair: pair, Similarity: sim})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out, nil
}

// combinedSimilarity implements spec.md §4.5:
// S(A,B) = 0.4*Jaccard(keywords) + 0.3*SimHashSim + 0.3*MinHashSim.
func combinedSimilarity(keysA, keysB map[string]struct{}, docA, docB *domain.Document) float64 {
	jac := fingerprint.Jaccard(keysA, keysB)
	simHashSim := fingerprint.SimHashSimilarity(docA.SimHash, docB.SimHash)
	minHashSim := fingerprint.MinHashSimilarity(docA.MinHash, docB.MinHash)
	return 0.4*jac + 0.3*simHashSim + 0.3*minHashSim
}

// lshCandidatePairs bands every document's MinHash signature and groups
// documents colliding on any band hash into candidate pairs.
func lshCandidatePairs(idx *domain.ForwardIndex, paths []string) map[domain.DocPair]struct{} {
	buckets := make(map[uint64][]string)
	for _, p := range paths {
		doc := idx.Files[p]
		for _, bh := range fingerprint.BandHashes(doc.MinHash, fingerprint.DefaultBands, fingerprint.DefaultRows) {
			buckets[bh] = append(buckets[bh], p)
		}
	}

	pairs := make(map[domain.DocPair]struct{})
	for _, members := range buckets {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				pairs[makeDocPair(members[i], members[j])] = struct{}{}
			}
		}
	}
	return pairs
}

func makeDocPair(a, b string) domain.DocPair {
	if a < b {
		return domain.DocPair{A: a, B: b}
	}
	return domain.DocPair{A: b, B: a}
}

func sortedPaths(idx *domain.ForwardIndex) []string {
	paths := make([]string, 0, len(idx.Files))
	for p := range idx.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// sectionUnionFind is a simple union-find over flattened section indices,
// used by SectionClusters.
type sectionUnionFind struct {
	parent []int
}

func newSectionUnionFind(n int) *sectionUnionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &sectionUnionFind{parent: p}
}

func (u *sectionUnionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *sectionUnionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// SectionClusters unions sections whose SimHash Hamming-similarity is at
// least threshold, reporting clusters spanning at least minFiles distinct
// documents (spec.md §4.5).
func (s *SimilarityService) SectionClusters(idx *domain.ForwardIndex, threshold float64, minFiles int) ([]domain.SectionCluster, error) {
	if idx == nil {
		return nil, domain.ErrIndexMissing
	}

	type flatSection struct {
		ref     domain.SectionRef
		simHash uint64
		heading string
	}

	var flat []flatSection
	for _, p := range sortedPaths(idx) {
		doc := idx.Files[p]
		for i, sec := range doc.Sections {
			flat = append(flat, flatSection{
				ref:     domain.SectionRef{DocPath: p, Index: i},
				simHash: sec.SimHash,
				heading: sec.Heading,
			})
		}
	}

	uf := newSectionUnionFind(len(flat))
	for i := 0; i < len(flat); i++ {
		for j := i + 1; j < len(flat); j++ {
			if fingerprint.SimHashSimilarity(flat[i].simHash, flat[j].simHash) >= threshold {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := range flat {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	var roots []int
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	var clusters []domain.SectionCluster
	for _, root := range roots {
		members := groups[root]
		docs := make(map[string]struct{})
		headingCount := make(map[string]int)
		var refs []domain.SectionRef
		for _, idx2 := range members {
			docs[flat[idx2].ref.DocPath] = struct{}{}
			headingCount[flat[idx2].heading]++
			refs = append(refs, flat[idx2].ref)
		}
		if len(docs) < minFiles {
			continue
		}

		sort.Slice(refs, func(i, j int) bool {
			if refs[i].DocPath != refs[j].DocPath {
				return refs[i].DocPath < refs[j].DocPath
			}
			return refs[i].Index < refs[j].Index
		})

		clusters = append(clusters, domain.SectionCluster{
			Label:    mostCommonHeading(headingCount),
			Sections: refs,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].Sections) == 0 || len(clusters[j].Sections) == 0 {
			return false
		}
		a, b := clusters[i].Sections[0], clusters[j].Sections[0]
		if a.DocPath != b.DocPath {
			return a.DocPath < b.DocPath
		}
		return a.Index < b.Index
	})

	return clusters, nil
}

// mostCommonHeading returns the heading text with the highest count,
// ties broken lexicographically for determinism.
func mostCommonHeading(counts map[string]int) string {
	var best string
	bestCount := -1
	var headings []string
	for h := range counts {
		headings = append(headings, h)
	}
	sort.Strings(headings)
	for _, h := range headings {
		if counts[h] > bestCount {
			best = h
			bestCount = counts[h]
		}
	}
	return best
}
