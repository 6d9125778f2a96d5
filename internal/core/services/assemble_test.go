package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

func sectionWithBody(heading string, level, start, end int, body string) domain.Section {
	sec := domain.Section{Heading: heading, Level: level, StartLine: start, EndLine: end}
	sec.SetBody(body)
	return sec
}

func newAssembleIndex() *domain.ForwardIndex {
	retrySec := sectionWithBody("Retry Budgets", 1, 1, 4, "Retry budgets bound how many attempts a client makes before giving up.")
	doc := &domain.Document{
		Path:     "runbook/retries.md",
		Sections: []domain.Section{retrySec},
		TermFreq: map[string]int{"retri": 4, "budget": 2},
		Length:   6,
	}
	idx := &domain.ForwardIndex{
		Files:        map[string]*domain.Document{doc.Path: doc},
		AvgDocLength: 6,
		IDF:          map[string]float64{"retri": 1.2, "budget": 1.0},
	}
	return idx
}

func TestAssemblerService_Assemble_ReturnsPrimarySections(t *testing.T) {
	idx := newAssembleIndex()
	svc := NewAssemblerService(NewRankingService(), NewLinkGraphService())

	digest, err := svc.Assemble(context.Background(), idx, "retry budgets", domain.AssembleOptions{})
	require.NoError(t, err)

	require.NotEmpty(t, digest.Primary)
	assert.Equal(t, "runbook/retries.md", digest.Primary[0].DocPath)
	assert.False(t, digest.BudgetUnderflowed)
}

func TestAssemblerService_Assemble_EmptyQueryErrors(t *testing.T) {
	idx := newAssembleIndex()
	svc := NewAssemblerService(NewRankingService(), NewLinkGraphService())

	_, err := svc.Assemble(context.Background(), idx, "   ", domain.AssembleOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestAssemblerService_Assemble_NilIndexErrors(t *testing.T) {
	svc := NewAssemblerService(NewRankingService(), NewLinkGraphService())
	_, err := svc.Assemble(context.Background(), nil, "retry", domain.AssembleOptions{})
	assert.ErrorIs(t, err, domain.ErrIndexMissing)
}

func TestAssemblerService_Assemble_NoMatchingTermsUnderflows(t *testing.T) {
	idx := newAssembleIndex()
	svc := NewAssemblerService(NewRankingService(), NewLinkGraphService())

	digest, err := svc.Assemble(context.Background(), idx, "unrelatedterm", domain.AssembleOptions{})
	require.NoError(t, err)
	assert.True(t, digest.BudgetUnderflowed)
	assert.Empty(t, digest.Primary)
}

func TestAssemblerService_Assemble_ExpandsCrossReferences(t *testing.T) {
	primarySec := sectionWithBody("Overview", 1, 1, 4, "retry logic lives here, see the architecture doc for rationale")
	primarySec2 := primarySec
	primaryDoc := &domain.Document{
		Path:     "adr/ADR-001-retries.md",
		Sections: []domain.Section{primarySec2},
		TermFreq: map[string]int{"retri": 3},
		Length:   3,
		References: []domain.Reference{
			{Kind: domain.RefRelativePath, Target: "../architecture/overview.md", ResolvedPath: "architecture/overview.md", SourceLine: 1},
		},
	}
	// Design actually discusses retries (matches the query); Glossary is a
	// long wall of unrelated terms with a much higher raw token count. A
	// raw-token-count proxy would pick Glossary first; query-restricted
	// BM25 must pick Design and drop Glossary (zero matching terms).
	archSecDesign := sectionWithBody("Design", 1, 1, 4, "retry retry retry architecture rationale")
	archSecGlossary := sectionWithBody("Glossary", 2, 5, 40,
		"alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima "+
			"mike november oscar papa quebec romeo sierra tango uniform victor "+
			"whiskey xray yankee zulu alpha bravo charlie delta echo foxtrot golf")
	archDoc := &domain.Document{
		Path:     "architecture/overview.md",
		Sections: []domain.Section{archSecDesign, archSecGlossary},
		TermFreq: map[string]int{"retri": 3},
		Length:   3,
	}

	idx := &domain.ForwardIndex{
		Files: map[string]*domain.Document{
			primaryDoc.Path: primaryDoc,
			archDoc.Path:    archDoc,
		},
		AvgDocLength: 3,
		IDF:          map[string]float64{"retri": 1.0},
	}

	svc := NewAssemblerService(NewRankingService(), NewLinkGraphService())
	digest, err := svc.Assemble(context.Background(), idx, "retry", domain.AssembleOptions{Depth: 1})
	require.NoError(t, err)

	require.NotEmpty(t, digest.CrossRefs)
	assert.Equal(t, "architecture/overview.md", digest.CrossRefs[0].DocPath)
	assert.Equal(t, "Design", digest.CrossRefs[0].Heading)
	for _, sec := range digest.CrossRefs {
		assert.NotEqual(t, "Glossary", sec.Heading, "raw-token-count proxy would wrongly surface the unrelated Glossary section")
	}
}

func TestRender_ProducesDeterministicMarkdown(t *testing.T) {
	digest := &domain.Digest{
		Query:         "retry",
		EstimatedToks: 42,
		Manifest:      []domain.ManifestEntry{{Path: "a.md", BM25: 1.5, Canonical: 0.8}},
		Primary: []domain.AssembledSection{
			{DocPath: "a.md", Heading: "Retry", StartLine: 1, EndLine: 4, Body: "body text"},
		},
	}

	out := Render(digest)
	assert.True(t, strings.HasPrefix(out, "# Context: retry\n\n"))
	assert.Contains(t, out, "## Sources")
	assert.Contains(t, out, "### Retry")
	assert.Contains(t, out, "body text")
}
