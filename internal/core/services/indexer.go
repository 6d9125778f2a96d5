package services

import (
	"context"
	"math"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/basalt-docs/docdex/internal/analyzer"
	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/ports/driving"
	"github.com/basalt-docs/docdex/internal/fingerprint"
	"github.com/basalt-docs/docdex/internal/logger"
)

var _ driving.IndexerService = (*IndexerService)(nil)

// IndexerService walks a directory tree and builds a domain.ForwardIndex
// (C3). It is the only core service that touches the filesystem.
type IndexerService struct{}

// NewIndexerService constructs an IndexerService.
func NewIndexerService() *IndexerService {
	return &IndexerService{}
}

// fileOutcome is a single worker's result: either a parsed Document or a
// skipped-file report.
type fileOutcome struct {
	relPath string
	doc     *domain.Document
	skipErr error
}

// Build walks opts.Root, analyzing accepted files with a bounded worker
// pool, then aggregates corpus statistics and resolves relative-path
// references (spec.md §4.3).
func (s *IndexerService) Build(ctx context.Context, opts driving.BuildOptions) (*domain.ForwardIndex, *domain.Stats, error) {
	start := time.Now()

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > 8 {
		workers = 8
	}

	files, err := walkTree(opts.Root, extensions, opts.Excludes)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("indexer: %d candidate files under %s", len(files), opts.Root)

	outcomes := make([]fileOutcome, len(files))

	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-gctx.Done():
				return nil
			default:
			}

			doc, err := analyzeFile(opts.Root, f)
			if err != nil {
				logger.Warn("indexer: skipping %s: %v", f.relPath, err)
				outcomes[i] = fileOutcome{relPath: f.relPath, skipErr: err}
				return nil
			}
			outcomes[i] = fileOutcome{relPath: f.relPath, doc: doc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Aggregation happens in a single pass over the (already sorted-by-path)
	// outcomes slice, so it is fully deterministic regardless of worker
	// completion order.
	fwd := &domain.ForwardIndex{
		Files:       make(map[string]*domain.Document, len(outcomes)),
		Identifiers: make(map[string]string),
	}
	docFreq := make(map[string]int)
	var rawIdentifiers []string
	skipped := 0

	for _, o := range outcomes {
		if o.doc == nil {
			skipped++
			continue
		}
		fwd.Files[o.relPath] = o.doc
		for term := range o.doc.TermFreq {
			docFreq[term]++
		}
		if id, ok := identifierFromPath(o.relPath); ok {
			rawIdentifiers = append(rawIdentifiers, id)
		}
	}

	n := float64(len(fwd.Files))
	var totalLen int
	for _, doc := range fwd.Files {
		totalLen += doc.Length
	}
	if len(fwd.Files) > 0 {
		fwd.AvgDocLength = float64(totalLen) / n
	}

	fwd.IDF = computeIDF(docFreq, n)

	fwd.IdentifierWidth = identifierWidth(rawIdentifiers)
	for path, doc := range fwd.Files {
		if id, ok := identifierFromPath(path); ok {
			fwd.Identifiers[padIdentifier(id, fwd.IdentifierWidth)] = path
			doc.Identifier = padIdentifier(id, fwd.IdentifierWidth)
		}
	}

	resolveReferences(fwd)

	fwd.Version = domain.CurrentIndexVersion
	fwd.IndexedAt = time.Now().UTC()

	stats := &domain.Stats{
		Version:       fwd.Version,
		DocumentCount: len(fwd.Files),
		AvgDocLength:  fwd.AvgDocLength,
		IndexedAt:     fwd.IndexedAt,
		BuildDuration: time.Since(start),
		SkippedFiles:  skipped,
	}

	return fwd, stats, nil
}

// computeIDF implements spec.md §3 invariant 3:
// idf(t) = ln((N - df + 0.5)/(df + 0.5) + 1).
func computeIDF(docFreq map[string]int, n float64) map[string]float64 {
	idf := make(map[string]float64, len(docFreq))
	for term, df := range docFreq {
		dff := float64(df)
		idf[term] = logNatural((n-dff+0.5)/(dff+0.5) + 1)
	}
	return idf
}

// analyzeFile reads and analyzes one accepted file into a domain.Document.
func analyzeFile(root string, f walkResult) (*domain.Document, error) {
	raw, err := os.ReadFile(f.absPath)
	if err != nil {
		return nil, err
	}

	result := analyzer.Analyze(raw)

	doc := &domain.Document{
		Path:       f.relPath,
		SizeBytes:  f.info.Size(),
		LineCount:  len(result.Lines),
		ModifiedAt: f.info.ModTime(),
		Sections:   result.Sections,
		TermFreq:   result.TermFreq,
		Length:     result.Length,
		References: result.References,
	}
	doc.SimHash = fingerprint.SimHashFromCounts(result.TermFreq)
	doc.MinHash = fingerprint.MinHash(result.AllTokens, fingerprint.DefaultMinHashSize)

	for i := range doc.Sections {
		body, _ := doc.Sections[i].Body()
		freq, _ := analyzer.TermFrequencies(strings.Split(body, "\n"))
		doc.Sections[i].SimHash = fingerprint.SimHashFromCounts(freq)
	}

	_ = root
	return doc, nil
}

// resolveReferences resolves every relative-path reference in place,
// against the already-built ForwardIndex (spec.md §4.3 step 6).
func resolveReferences(fwd *domain.ForwardIndex) {
	paths := make([]string, 0, len(fwd.Files))
	for p := range fwd.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		doc := fwd.Files[p]
		for i := range doc.References {
			ref := &doc.References[i]
			if ref.Kind != domain.RefRelativePath {
				continue
			}
			if ref.Target == "" {
				// Bare "#anchor" link: resolves to the source document itself,
				// not a placeholder. Anchor validity is checked separately
				// against this doc's own sections (see LinkGraphService.BrokenLinks).
				ref.ResolvedPath = p
				continue
			}
			if isPlaceholderTarget(ref.Target) {
				ref.Broken = true
				ref.BrokenReason = domain.ReasonPlaceholder
				continue
			}
			resolved := resolveRelativePath(p, ref.Target)
			if _, ok := fwd.Files[resolved]; ok {
				ref.ResolvedPath = resolved
				continue
			}
			ref.Broken = true
			ref.BrokenReason = domain.ReasonMissingFile
		}
	}
}

var placeholderTargets = map[string]struct{}{
	"url":  {},
	"text": {},
	"todo": {},
	"link": {},
	"tbd":  {},
}

func isPlaceholderTarget(target string) bool {
	lower := strings.ToLower(strings.TrimSpace(target))
	if _, ok := placeholderTargets[lower]; ok {
		return true
	}
	return strings.HasPrefix(lower, "/path/to/") ||
		strings.HasPrefix(lower, "../path/to/") ||
		strings.Contains(lower, "replace-me")
}

func logNatural(x float64) float64 {
	return math.Log(x)
}
