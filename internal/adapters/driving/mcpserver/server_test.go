package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/services"
)

func testIndex() *domain.ForwardIndex {
	sec := domain.Section{Heading: "Retry", Level: 1, StartLine: 1, EndLine: 3}
	sec.SetBody("retry logic lives here")
	doc := &domain.Document{
		Path:     "runbook/retry.md",
		Sections: []domain.Section{sec},
		TermFreq: map[string]int{"retri": 2},
		Length:   2,
	}
	return &domain.ForwardIndex{
		Files:        map[string]*domain.Document{doc.Path: doc},
		AvgDocLength: 2,
		IDF:          map[string]float64{"retri": 1.0},
	}
}

func TestNewServer_RejectsMissingIndex(t *testing.T) {
	_, err := NewServer(&Ports{Ranking: services.NewRankingService(), Assembler: services.NewAssemblerService(services.NewRankingService(), services.NewLinkGraphService())})
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestServer_HandleQuery_ReturnsRankedHits(t *testing.T) {
	idx := testIndex()
	ranking := services.NewRankingService()
	linkgraph := services.NewLinkGraphService()
	s, err := NewServer(&Ports{
		Ranking:   ranking,
		Assembler: services.NewAssemblerService(ranking, linkgraph),
		Index:     idx,
	})
	require.NoError(t, err)

	_, out, err := s.handleQuery(context.Background(), nil, QueryInput{Query: "retry"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "runbook/retry.md", out.Results[0].Path)
}

func TestServer_HandleAssemble_ReturnsRenderedDigest(t *testing.T) {
	idx := testIndex()
	ranking := services.NewRankingService()
	linkgraph := services.NewLinkGraphService()
	s, err := NewServer(&Ports{
		Ranking:   ranking,
		Assembler: services.NewAssemblerService(ranking, linkgraph),
		Index:     idx,
	})
	require.NoError(t, err)

	_, out, err := s.handleAssemble(context.Background(), nil, AssembleInput{Query: "retry"})
	require.NoError(t, err)
	assert.Contains(t, out.Digest, "# Context: retry")
	assert.NotEmpty(t, out.Manifest)
}
