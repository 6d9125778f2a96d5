package services

import (
	"sort"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

// ConsolidationService groups near-duplicate documents (C5) and recommends
// which one to keep using canonicality (C6): suggest-consolidation is the
// only operation in spec.md's command table that joins the two engines.
type ConsolidationService struct {
	similarity *SimilarityService
	linkgraph  *LinkGraphService
}

// NewConsolidationService wires the two services suggest-consolidation
// draws from.
func NewConsolidationService(similarity *SimilarityService, linkgraph *LinkGraphService) *ConsolidationService {
	return &ConsolidationService{similarity: similarity, linkgraph: linkgraph}
}

// Suggest unions SimilarityService.Duplicates pairs into clusters (a
// duplicate pair is enough to merge two clusters, transitively), then picks
// the highest-canonicality member of each cluster as the keep target.
func (s *ConsolidationService) Suggest(idx *domain.ForwardIndex, threshold float64) ([]domain.ConsolidationGroup, error) {
	pairs, err := s.similarity.Duplicates(idx, threshold)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	uf := newPathUnionFind()
	minSim := make(map[string]float64)
	for _, pair := range pairs {
		uf.union(pair.A, pair.B)
		recordMin(minSim, pair.A, pair.Similarity)
		recordMin(minSim, pair.B, pair.Similarity)
	}

	groups := make(map[string][]string)
	for _, pair := range pairs {
		root := uf.find(pair.A)
		groups[root] = appendUnique(groups[root], pair.A, pair.B)
	}

	graph := s.linkgraph.Build(idx)
	scores := s.linkgraph.Canonicality(idx, graph)
	canonical := make(map[string]float64, len(scores))
	for _, sc := range scores {
		canonical[sc.Path] = sc.Score
	}

	out := make([]domain.ConsolidationGroup, 0, len(groups))
	for _, members := range groups {
		sort.Strings(members)
		keep := pickKeep(members, canonical)
		merged := make([]string, 0, len(members)-1)
		worst := 1.0
		for _, m := range members {
			if m != keep {
				merged = append(merged, m)
			}
			if v, ok := minSim[m]; ok && v < worst {
				worst = v
			}
		}
		out = append(out, domain.ConsolidationGroup{KeepPath: keep, MergePaths: merged, Similarity: worst})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].KeepPath < out[j].KeepPath })
	return out, nil
}

// pathUnionFind is a union-find keyed by document path, used to merge
// transitive duplicate pairs into clusters.
type pathUnionFind struct {
	parent map[string]string
}

func newPathUnionFind() *pathUnionFind {
	return &pathUnionFind{parent: make(map[string]string)}
}

func (u *pathUnionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *pathUnionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

func recordMin(m map[string]float64, path string, sim float64) {
	if cur, ok := m[path]; !ok || sim < cur {
		m[path] = sim
	}
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}

func pickKeep(members []string, canonical map[string]float64) string {
	best := members[0]
	bestScore := canonical[best]
	for _, m := range members[1:] {
		if canonical[m] > bestScore {
			best = m
			bestScore = canonical[m]
		}
	}
	return best
}
