package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/ports/driving"
)

const (
	defaultMaxTokens   = 8000
	defaultMaxSections = 20
	defaultDepth       = 1

	refineLambdaOverlap   = 0.6
	refineLambdaPosition  = 0.2
	refineLambdaStructure = 0.3
	refineLambdaLength    = 0.05
	refineSkipBelowTokens = 150
)

var _ driving.AssemblerService = (*AssemblerService)(nil)

// AssemblerService runs the multi-stage context assembly pipeline (C7):
// primary BM25 selection, cross-reference expansion, token budgeting,
// extractive sentence refinement, and deterministic markdown rendering.
type AssemblerService struct {
	ranking   *RankingService
	linkgraph *LinkGraphService
}

// NewAssemblerService constructs an AssemblerService wired to the ranking
// and link-graph services it composes.
func NewAssemblerService(ranking *RankingService, linkgraph *LinkGraphService) *AssemblerService {
	return &AssemblerService{ranking: ranking, linkgraph: linkgraph}
}

// xrefTarget is one deduplicated cross-reference expansion target.
type xrefTarget struct {
	path     string
	anchor   string
	docType  domain.DocType
	priority int
}

// Assemble runs the full pipeline described in spec.md §4.7.
func (s *AssemblerService) Assemble(ctx context.Context, idx *domain.ForwardIndex, query string, opts domain.AssembleOptions) (*domain.Digest, error) {
	if idx == nil {
		return nil, domain.ErrIndexMissing
	}

	terms := stemQuery(query)
	if len(terms) == 0 {
		return nil, domain.ErrEmptyQuery
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	maxSections := opts.MaxSections
	if maxSections <= 0 {
		maxSections = defaultMaxSections
	}
	depth := opts.Depth
	if depth < 0 {
		depth = 0
	}
	if depth > 2 {
		depth = 2
	}

	// Stage 1: primary selection.
	m := maxSections
	if m > 20 {
		m = 20
	}
	docs, err := s.ranking.Query(idx, query, domain.QueryOptions{TopK: m})
	if err != nil {
		return nil, err
	}

	sections, err := s.ranking.QuerySections(idx, query, docs, maxSections)
	if err != nil {
		return nil, err
	}

	graph := s.linkgraph.Build(idx)
	canonical := make(map[string]float64, len(idx.Files))
	for _, c := range s.linkgraph.Canonicality(idx, graph) {
		canonical[c.Path] = c.Score
	}

	var maxBM25 float64
	for _, sec := range sections {
		if sec.BM25 > maxBM25 {
			maxBM25 = sec.BM25
		}
	}
	for i := range sections {
		norm := 0.0
		if maxBM25 > 0 {
			norm = sections[i].BM25 / maxBM25
		}
		sections[i].Canonical = canonical[sections[i].DocPath]
		sections[i].Combined = 0.7*norm + 0.3*sections[i].Canonical
	}
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].Combined != sections[j].Combined {
			return sections[i].Combined > sections[j].Combined
		}
		if sections[i].DocPath != sections[j].DocPath {
			return sections[i].DocPath < sections[j].DocPath
		}
		return idx.Files[sections[i].DocPath].Sections[sections[i].Index].StartLine <
			idx.Files[sections[j].DocPath].Sections[sections[j].Index].StartLine
	})

	manifest := buildManifest(docs, canonical)

	// Stage 2: cross-reference expansion.
	var xrefSections []domain.ScoredSection
	if depth > 0 {
		xrefSections = s.expandCrossReferences(idx, graph, canonical, sections, terms, depth)
	}

	// Stage 3: token budgeting.
	primaryTerms := terms
	primary, primaryToks := budgetPrimary(idx, sections, maxTokens)
	xrefBudget := xrefBudgetFor(maxTokens, primaryToks)
	crossRefs := budgetXrefs(idx, xrefSections, xrefBudget)

	underflow := len(primary) == 0 && len(crossRefs) == 0

	// Stage 4: extractive refinement.
	for i := range primary {
		primary[i].Body = refineSection(primary[i].Body, primaryTerms)
	}
	for i := range crossRefs {
		crossRefs[i].Body = refineSection(crossRefs[i].Body, primaryTerms)
	}

	estimated := primaryToks
	for _, c := range crossRefs {
		estimated += estimateTokens(c.Body)
	}

	digest := &domain.Digest{
		Query:             query,
		EstimatedToks:     estimated,
		Manifest:          manifest,
		Primary:           primary,
		CrossRefs:         crossRefs,
		BudgetUnderflowed: underflow,
	}
	return digest, nil
}

func buildManifest(docs []domain.ScoredDocument, canonical map[string]float64) []domain.ManifestEntry {
	out := make([]domain.ManifestEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.ManifestEntry{
			Path:      d.Path,
			BM25:      d.Score,
			Canonical: canonical[d.Path],
		})
	}
	return out
}

// estimateTokens is the deterministic token estimator: ceil(len(text)/4),
// the same heuristic sochdb-go's context builder uses.
func estimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

func xrefBudgetFor(maxTokens, primaryToks int) int {
	a := int(0.3 * float64(maxTokens))
	b := 2000
	c := maxTokens - primaryToks
	budget := a
	if b < budget {
		budget = b
	}
	if c < budget {
		budget = c
	}
	if budget < 0 {
		budget = 0
	}
	return budget
}

// budgetPrimary walks primary sections in combined-score order, admitting
// each if it fits the remaining budget (spec.md §4.7 Stage 3). A section
// that does not fit is truncated to the remaining budget and admitted; the
// walk stops once the budget is spent.
func budgetPrimary(idx *domain.ForwardIndex, sections []domain.ScoredSection, maxTokens int) ([]domain.AssembledSection, int) {
	remaining := maxTokens
	var out []domain.AssembledSection
	used := 0

	for _, sec := range sections {
		doc, ok := idx.Files[sec.DocPath]
		if !ok || sec.Index >= len(doc.Sections) {
			continue
		}
		section := doc.Sections[sec.Index]
		body, _ := section.Body()
		toks := estimateTokens(body)

		truncated := false
		if toks > remaining {
			if remaining <= 0 {
				continue
			}
			body = truncateToBudget(body, remaining)
			truncated = true
			toks = estimateTokens(body)
		}
		if toks == 0 && body == "" {
			continue
		}

		out = append(out, domain.AssembledSection{
			DocPath:   sec.DocPath,
			Heading:   section.Heading,
			StartLine: section.StartLine,
			EndLine:   section.EndLine,
			Body:      body,
			Combined:  sec.Combined,
			CrossRef:  false,
			Truncated: truncated,
		})
		remaining -= toks
		used += toks
		if remaining <= 0 {
			break
		}
	}
	return out, used
}

// budgetXrefs walks cross-reference sections in priority (arrival) order,
// under the global xref budget and a per-document cap.
func budgetXrefs(idx *domain.ForwardIndex, sections []domain.ScoredSection, xrefBudget int) []domain.AssembledSection {
	if xrefBudget <= 0 {
		return nil
	}

	perDocCap := 600
	if xrefBudget < perDocCap {
		perDocCap = xrefBudget
	}

	remaining := xrefBudget
	perDocUsed := make(map[string]int)
	var out []domain.AssembledSection

	for _, sec := range sections {
		if remaining <= 0 {
			break
		}
		doc, ok := idx.Files[sec.DocPath]
		if !ok || sec.Index >= len(doc.Sections) {
			continue
		}
		docBudget := perDocCap - perDocUsed[sec.DocPath]
		if docBudget <= 0 {
			continue
		}
		budget := remaining
		if docBudget < budget {
			budget = docBudget
		}

		section := doc.Sections[sec.Index]
		body, _ := section.Body()
		toks := estimateTokens(body)

		truncated := false
		if toks > budget {
			if budget <= 0 {
				continue
			}
			body = truncateToBudget(body, budget)
			truncated = true
			toks = estimateTokens(body)
		}
		if body == "" {
			continue
		}

		out = append(out, domain.AssembledSection{
			DocPath:   sec.DocPath,
			Heading:   section.Heading,
			StartLine: section.StartLine,
			EndLine:   section.EndLine,
			Body:      body,
			Combined:  sec.Combined,
			CrossRef:  true,
			Truncated: truncated,
		})
		remaining -= toks
		perDocUsed[sec.DocPath] += toks
	}
	return out
}

var sentenceBoundaryRe = regexp.MustCompile(`[.!?]["')\]]?\s+`)

// truncateToBudget cuts text at the last sentence boundary before the
// budget's character line (4 chars/token). When that window holds no
// sentence boundary, the text is cut at the character line itself, which
// can fall mid-sentence.
func truncateToBudget(text string, budgetTokens int) string {
	limit := budgetTokens * 4
	if limit >= len(text) {
		return text
	}
	window := text[:limit]

	locs := sentenceBoundaryRe.FindAllStringIndex(window, -1)
	if len(locs) == 0 {
		return strings.TrimRight(window, " \t")
	}
	last := locs[len(locs)-1]
	return strings.TrimRight(text[:last[1]], " \t\n")
}

// expandCrossReferences implements Stage 2: collects references originating
// within primary sections, dedupes by (target, anchor), classifies and
// prioritizes targets, and selects sections from each per spec.md §4.7.
func (s *AssemblerService) expandCrossReferences(
	idx *domain.ForwardIndex, graph *domain.Graph, canonical map[string]float64,
	primary []domain.ScoredSection, terms []string, depth int,
) []domain.ScoredSection {
	seen := make(map[string]bool)
	frontier := primary
	var out []domain.ScoredSection

	for level := 0; level < depth; level++ {
		targets := collectTargets(idx, frontier, seen)
		if len(targets) == 0 {
			break
		}
		sortTargets(targets, graph, canonical)

		var nextFrontier []domain.ScoredSection
		for _, t := range targets {
			picked := pickSectionsForTarget(s.ranking, idx, t, terms)
			out = append(out, picked...)
			if level+1 < depth {
				nextFrontier = append(nextFrontier, picked...)
			}
		}
		frontier = nextFrontier
	}
	return out
}

// collectTargets gathers resolved relative-path and identifier references
// originating in the given sections, deduplicated by (target path, anchor).
func collectTargets(idx *domain.ForwardIndex, sections []domain.ScoredSection, seen map[string]bool) []xrefTarget {
	var targets []xrefTarget
	for _, sec := range sections {
		doc, ok := idx.Files[sec.DocPath]
		if !ok || sec.Index >= len(doc.Sections) {
			continue
		}
		section := doc.Sections[sec.Index]
		for _, ref := range doc.References {
			if ref.SourceLine < section.StartLine || ref.SourceLine >= section.EndLine {
				continue
			}
			if ref.Kind != domain.RefRelativePath && ref.Kind != domain.RefIdentifier {
				continue
			}

			var targetPath, anchor string
			switch ref.Kind {
			case domain.RefRelativePath:
				if ref.Broken || ref.ResolvedPath == "" {
					continue
				}
				targetPath = ref.ResolvedPath
				anchor = ref.Anchor
			case domain.RefIdentifier:
				padded := padIdentifier(ref.Target, idx.IdentifierWidth)
				p, ok := idx.Identifiers[padded]
				if !ok {
					continue
				}
				targetPath = p
			}
			if targetPath == doc.Path {
				continue
			}
			key := targetPath + "#" + anchor
			if seen[key] {
				continue
			}
			seen[key] = true

			typ := InferDocType(targetPath)
			targets = append(targets, xrefTarget{
				path:     targetPath,
				anchor:   anchor,
				docType:  typ,
				priority: xrefPriority(typ),
			})
		}
	}
	return targets
}

// xrefPriority implements "ADR > architecture/design > runbook/ops > other".
func xrefPriority(t domain.DocType) int {
	switch t {
	case domain.DocTypeADR:
		return 3
	case domain.DocTypeArchitecture:
		return 2
	case domain.DocTypeRunbook:
		return 1
	default:
		return 0
	}
}

func sortTargets(targets []xrefTarget, graph *domain.Graph, canonical map[string]float64) {
	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].priority != targets[j].priority {
			return targets[i].priority > targets[j].priority
		}
		si := 0.5*canonical[targets[i].path] + 0.5*math.Log1p(float64(len(graph.Backlinks[targets[i].path])))
		sj := 0.5*canonical[targets[j].path] + 0.5*math.Log1p(float64(len(graph.Backlinks[targets[j].path])))
		if si != sj {
			return si > sj
		}
		return targets[i].path < targets[j].path
	})
}

var adrHeadingKeywords = []string{"context", "decision", "consequence", "rationale", "motivation", "summary"}
var runbookHeadingKeywords = []string{"deploy", "restart", "rollback", "monitor", "alert", "troubleshoot"}

// pickSectionsForTarget selects sections from one cross-reference target
// document per the doc-type-specific rules in spec.md §4.7 Stage 2.
func pickSectionsForTarget(ranking *RankingService, idx *domain.ForwardIndex, t xrefTarget, terms []string) []domain.ScoredSection {
	doc, ok := idx.Files[t.path]
	if !ok || len(doc.Sections) == 0 {
		return nil
	}

	if t.anchor != "" {
		want := slugify(t.anchor)
		for i, sec := range doc.Sections {
			if sec.Level != 0 && slugify(sec.Heading) == want {
				return []domain.ScoredSection{{DocPath: t.path, Index: i}}
			}
		}
	}

	switch t.docType {
	case domain.DocTypeADR:
		var picked []domain.ScoredSection
		for i, sec := range doc.Sections {
			if len(picked) >= 3 {
				break
			}
			lower := strings.ToLower(sec.Heading)
			for _, kw := range adrHeadingKeywords {
				if strings.Contains(lower, kw) {
					picked = append(picked, domain.ScoredSection{DocPath: t.path, Index: i})
					break
				}
			}
		}
		if len(picked) == 0 {
			picked = append(picked, domain.ScoredSection{DocPath: t.path, Index: 0})
		}
		return picked

	case domain.DocTypeArchitecture:
		picked := ranking.QueryDocSections(idx, terms, t.path, 3)
		if len(picked) == 0 {
			picked = []domain.ScoredSection{{DocPath: t.path, Index: 0}}
		}
		return picked

	case domain.DocTypeRunbook:
		var picked []domain.ScoredSection
		for i, sec := range doc.Sections {
			if len(picked) >= 2 {
				break
			}
			lower := strings.ToLower(sec.Heading)
			for _, kw := range runbookHeadingKeywords {
				if strings.Contains(lower, kw) {
					picked = append(picked, domain.ScoredSection{DocPath: t.path, Index: i})
					break
				}
			}
		}
		return picked

	default:
		return []domain.ScoredSection{{DocPath: t.path, Index: 0}}
	}
}

// refineSection implements Stage 4: sentence-level extractive scoring.
// Sections at or below refineSkipBelowTokens tokens pass through unchanged.
func refineSection(body string, queryTerms []string) string {
	if estimateTokens(body) <= refineSkipBelowTokens {
		return body
	}

	sentences := splitSentences(body)
	if len(sentences) <= 1 {
		return body
	}

	termSet := make(map[string]struct{}, len(queryTerms))
	for _, t := range queryTerms {
		termSet[t] = struct{}{}
	}

	scores := make([]float64, len(sentences))
	keepAlways := make([]bool, len(sentences))
	for i, sent := range sentences {
		overlap := queryOverlap(sent, termSet)
		position := 1.0 - float64(i)/float64(len(sentences))
		structural := 0.0
		if isStructural(sent) {
			structural = 1
			keepAlways[i] = true
		}
		lengthPenalty := math.Min(1.0, float64(len(sent))/400.0)

		scores[i] = refineLambdaOverlap*overlap +
			refineLambdaPosition*position +
			refineLambdaStructure*structural -
			refineLambdaLength*lengthPenalty
	}

	median := medianOf(scores)

	var kept []string
	for i, sent := range sentences {
		if keepAlways[i] || scores[i] >= median {
			kept = append(kept, sent)
		}
	}
	return strings.Join(kept, " ")
}

func queryOverlap(sentence string, terms map[string]struct{}) float64 {
	if len(terms) == 0 {
		return 0
	}
	words := strings.Fields(strings.ToLower(sentence))
	hit := 0
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()[]")
		if _, ok := terms[w]; ok {
			hit++
			continue
		}
	}
	return float64(hit) / float64(len(terms))
}

var listMarkerRe = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+`)

func isStructural(sentence string) bool {
	if strings.Contains(sentence, "`") {
		return true
	}
	return listMarkerRe.MatchString(sentence)
}

func splitSentences(text string) []string {
	var out []string
	locs := sentenceBoundaryRe.FindAllStringIndex(text, -1)
	start := 0
	for _, loc := range locs {
		out = append(out, strings.TrimSpace(text[start:loc[1]]))
		start = loc[1]
	}
	if start < len(text) {
		rest := strings.TrimSpace(text[start:])
		if rest != "" {
			out = append(out, rest)
		}
	}
	return out
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Render produces the deterministic markdown digest described in spec.md
// §4.7 Stage 5. It is a pure function of an already-assembled Digest.
func Render(d *domain.Digest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Context: %s\n\n", d.Query)
	fmt.Fprintf(&b, "_estimated tokens: %d_\n\n", d.EstimatedToks)

	if len(d.Manifest) > 0 {
		b.WriteString("## Sources\n\n")
		for _, m := range d.Manifest {
			fmt.Fprintf(&b, "- `%s` (bm25=%.3f, canonical=%.3f)\n", m.Path, m.BM25, m.Canonical)
		}
		b.WriteString("\n")
	}

	for _, sec := range d.Primary {
		renderSection(&b, sec)
	}

	if len(d.CrossRefs) > 0 {
		b.WriteString("## Cross-Referenced Documents\n\n")
		for _, sec := range d.CrossRefs {
			renderSection(&b, sec)
		}
	}

	if d.BudgetUnderflowed {
		b.WriteString("_no section fit within the token budget_\n")
	}

	return b.String()
}

func renderSection(b *strings.Builder, sec domain.AssembledSection) {
	heading := sec.Heading
	if heading == "" {
		heading = "(untitled)"
	}
	fmt.Fprintf(b, "### %s\n", heading)
	fmt.Fprintf(b, "_source: %s:%d-%d_\n\n", sec.DocPath, sec.StartLine, sec.EndLine)
	b.WriteString(sec.Body)
	if sec.Truncated {
		b.WriteString(" […]")
	}
	b.WriteString("\n\n")
}
