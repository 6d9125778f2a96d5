package services

import (
	"sort"
	"strings"
	"time"

	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/ports/driving"
)

var _ driving.LinkGraphService = (*LinkGraphService)(nil)

// LinkGraphService computes the derived link graph and its analyses (C6).
// Every method here is a pure function of an already-loaded ForwardIndex;
// nothing is mutated or persisted.
type LinkGraphService struct{}

// NewLinkGraphService constructs a LinkGraphService.
func NewLinkGraphService() *LinkGraphService {
	return &LinkGraphService{}
}

// Build constructs the directed link graph: one edge per distinct target a
// document reaches through resolved relative-path or identifier references.
func (s *LinkGraphService) Build(idx *domain.ForwardIndex) *domain.Graph {
	paths := sortedPaths(idx)
	graph := &domain.Graph{
		Nodes:     paths,
		Edges:     make(map[string][]string, len(paths)),
		Backlinks: make(map[string][]string, len(paths)),
	}

	for _, p := range paths {
		doc := idx.Files[p]
		targets := make(map[string]struct{})
		for _, ref := range doc.References {
			target, ok := s.resolveTarget(idx, ref)
			if !ok || target == p {
				continue
			}
			targets[target] = struct{}{}
		}

		var sortedTargets []string
		for t := range targets {
			sortedTargets = append(sortedTargets, t)
		}
		sort.Strings(sortedTargets)
		if len(sortedTargets) > 0 {
			graph.Edges[p] = sortedTargets
		}
		for _, t := range sortedTargets {
			graph.Backlinks[t] = append(graph.Backlinks[t], p)
		}
	}

	for t := range graph.Backlinks {
		sort.Strings(graph.Backlinks[t])
	}
	return graph
}

// resolveTarget resolves a single reference to a document path, whether it
// was already resolved at index time (relative-path) or must be resolved
// on demand against the identifier table (identifier).
func (s *LinkGraphService) resolveTarget(idx *domain.ForwardIndex, ref domain.Reference) (string, bool) {
	switch ref.Kind {
	case domain.RefRelativePath:
		if ref.ResolvedPath == "" {
			return "", false
		}
		return ref.ResolvedPath, true
	case domain.RefIdentifier:
		padded := padIdentifier(ref.Target, idx.IdentifierWidth)
		path, ok := idx.Identifiers[padded]
		return path, ok
	default:
		return "", false
	}
}

// Backlinks returns the sorted set of documents with a resolved reference
// to path.
func (s *LinkGraphService) Backlinks(idx *domain.ForwardIndex, path string) []string {
	graph := s.Build(idx)
	return graph.Backlinks[path]
}

// Orphans returns documents with no inbound resolved reference, optionally
// excluding paths that contain any of the given substrings.
func (s *LinkGraphService) Orphans(idx *domain.ForwardIndex, exclude []string) []string {
	graph := s.Build(idx)
	var out []string
	for _, p := range graph.Nodes {
		if len(graph.Backlinks[p]) > 0 {
			continue
		}
		if matchesAny(p, exclude) {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func matchesAny(path string, substrs []string) bool {
	for _, s := range substrs {
		if s != "" && strings.Contains(path, s) {
			return true
		}
	}
	return false
}

// BrokenLinks reports every relative-path reference that failed to
// resolve, plus anchor-validation failures for references that did
// resolve a target document but named a non-existent section.
func (s *LinkGraphService) BrokenLinks(idx *domain.ForwardIndex) []domain.BrokenLink {
	var out []domain.BrokenLink

	for _, p := range sortedPaths(idx) {
		doc := idx.Files[p]
		for _, ref := range doc.References {
			if ref.Kind != domain.RefRelativePath {
				continue
			}
			if ref.Broken {
				out = append(out, domain.BrokenLink{
					SourcePath: p,
					SourceLine: ref.SourceLine,
					RawTarget:  ref.Target,
					Reason:     ref.BrokenReason,
				})
				continue
			}
			if ref.Anchor == "" {
				continue
			}
			target, ok := idx.Files[ref.ResolvedPath]
			if !ok {
				continue
			}
			if !anchorExists(target, ref.Anchor) {
				out = append(out, domain.BrokenLink{
					SourcePath: p,
					SourceLine: ref.SourceLine,
					RawTarget:  ref.Target + "#" + ref.Anchor,
					Reason:     domain.ReasonMissingAnchor,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SourcePath != out[j].SourcePath {
			return out[i].SourcePath < out[j].SourcePath
		}
		return out[i].SourceLine < out[j].SourceLine
	})
	return out
}

// anchorExists reports whether any of target's heading slugs matches anchor
// (the anchor is slugified here before the comparison).
func anchorExists(target *domain.Document, anchor string) bool {
	want := slugify(anchor)
	for _, sec := range target.Sections {
		if sec.Level == 0 {
			continue
		}
		if slugify(sec.Heading) == want {
			return true
		}
	}
	return false
}

// Canonicality scores every document per spec.md §4.6.
func (s *LinkGraphService) Canonicality(idx *domain.ForwardIndex, graph *domain.Graph) []domain.CanonicalityScore {
	if graph == nil {
		graph = s.Build(idx)
	}

	now := time.Now()
	var out []domain.CanonicalityScore
	for _, p := range sortedPaths(idx) {
		doc := idx.Files[p]
		typ := InferDocType(p)
		ageDays := now.Sub(doc.ModifiedAt).Hours() / 24
		input := domain.CanonicalityInput{
			Path:         p,
			Type:         typ,
			InboundCount: len(graph.Backlinks[p]),
			AgeDays:      ageDays,
		}
		out = append(out, domain.CanonicalityScore{
			Path:  p,
			Type:  typ,
			Score: canonicalityScore(input),
		})
	}
	return out
}

var canonicalFilenames = []string{"README", "INDEX", "GUIDE", "RUNBOOK", "PLAN"}

func canonicalityScore(in domain.CanonicalityInput) float64 {
	base := docTypeWeight[in.Type]

	segments := strings.Count(strings.Trim(in.Path, "/"), "/") + 1
	depthPen := 0.1 * float64(segments)
	if depthPen > 0.5 {
		depthPen = 0.5
	}

	fnameBoost := 0.0
	base0 := strings.ToUpper(baseNameNoExt(in.Path))
	for _, c := range canonicalFilenames {
		if base0 == c {
			fnameBoost = 0.3
			break
		}
	}
	if fnameBoost == 0 && strings.HasPrefix(base0, "ADR-") {
		fnameBoost = 0.3
	}

	linkBoost := 0.05 * float64(in.InboundCount)
	if linkBoost > 0.3 {
		linkBoost = 0.3
	}

	agePen := 0.0
	if in.AgeDays > 180 {
		agePen = 0.2
	}

	score := base + fnameBoost + linkBoost - depthPen - agePen
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func baseNameNoExt(p string) string {
	base := p
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

// Stale returns documents at least days old with inbound_count <=
// minInlinks, sorted by path.
func (s *LinkGraphService) Stale(idx *domain.ForwardIndex, graph *domain.Graph, days int, minInlinks int) []domain.StaleDoc {
	if graph == nil {
		graph = s.Build(idx)
	}

	now := time.Now()
	var out []domain.StaleDoc
	for _, p := range sortedPaths(idx) {
		doc := idx.Files[p]
		ageDays := now.Sub(doc.ModifiedAt).Hours() / 24
		inbound := len(graph.Backlinks[p])
		if ageDays >= float64(days) && inbound <= minInlinks {
			out = append(out, domain.StaleDoc{Path: p, AgeDays: ageDays, InboundCount: inbound})
		}
	}
	return out
}

// CanonicalOrphans is the intersection of canonicality >= tau and
// inbound_count = 0.
func (s *LinkGraphService) CanonicalOrphans(idx *domain.ForwardIndex, graph *domain.Graph, tau float64) []string {
	if graph == nil {
		graph = s.Build(idx)
	}

	scores := s.Canonicality(idx, graph)
	var out []string
	for _, sc := range scores {
		if sc.Score >= tau && len(graph.Backlinks[sc.Path]) == 0 {
			out = append(out, sc.Path)
		}
	}
	sort.Strings(out)
	return out
}
