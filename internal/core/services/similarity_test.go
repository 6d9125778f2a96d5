package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/fingerprint"
)

func docWithTokens(path string, tokens []string) *domain.Document {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return &domain.Document{
		Path:     path,
		TermFreq: tf,
		Length:   len(tokens),
		SimHash:  fingerprint.SimHashFromCounts(tf),
		MinHash:  fingerprint.MinHash(tokens, fingerprint.DefaultMinHashSize),
	}
}

func TestSimilarityService_Duplicates_FindsNearIdenticalDocs(t *testing.T) {
	tokens := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	idx := &domain.ForwardIndex{Files: map[string]*domain.Document{
		"a.md": docWithTokens("a.md", tokens),
		"b.md": docWithTokens("b.md", tokens),
		"c.md": docWithTokens("c.md", []string{"unrelated", "words", "only", "here", "now"}),
	}}

	svc := NewSimilarityService()
	pairs, err := svc.Duplicates(idx, 0.5)
	require.NoError(t, err)

	require.Len(t, pairs, 1)
	assert.Equal(t, "a.md", pairs[0].A)
	assert.Equal(t, "b.md", pairs[0].B)
	assert.InDelta(t, 1.0, pairs[0].Similarity, 0.01)
}

func TestSimilarityService_Duplicates_NilIndexErrors(t *testing.T) {
	svc := NewSimilarityService()
	_, err := svc.Duplicates(nil, 0.5)
	assert.ErrorIs(t, err, domain.ErrIndexMissing)
}

func TestSimilarityService_Duplicates_BelowThresholdExcluded(t *testing.T) {
	idx := &domain.ForwardIndex{Files: map[string]*domain.Document{
		"a.md": docWithTokens("a.md", []string{"alpha", "beta"}),
		"b.md": docWithTokens("b.md", []string{"gamma", "delta"}),
	}}

	svc := NewSimilarityService()
	pairs, err := svc.Duplicates(idx, 0.9)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestSimilarityService_SectionClusters_GroupsAcrossMinFiles(t *testing.T) {
	secA := domain.Section{Heading: "Setup", Level: 1}
	secA.SimHash = fingerprint.SimHashFromCounts(map[string]int{"install": 3, "run": 2})
	secB := domain.Section{Heading: "Setup", Level: 1}
	secB.SimHash = fingerprint.SimHashFromCounts(map[string]int{"install": 3, "run": 2})

	idx := &domain.ForwardIndex{Files: map[string]*domain.Document{
		"a.md": {Path: "a.md", Sections: []domain.Section{secA}},
		"b.md": {Path: "b.md", Sections: []domain.Section{secB}},
	}}

	svc := NewSimilarityService()
	clusters, err := svc.SectionClusters(idx, 0.99, 2)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, "Setup", clusters[0].Label)
	assert.Len(t, clusters[0].Sections, 2)
}

func TestSimilarityService_SectionClusters_DropsClustersBelowMinFiles(t *testing.T) {
	sec := domain.Section{Heading: "Solo", Level: 1}
	idx := &domain.ForwardIndex{Files: map[string]*domain.Document{
		"a.md": {Path: "a.md", Sections: []domain.Section{sec}},
	}}

	svc := NewSimilarityService()
	clusters, err := svc.SectionClusters(idx, 0.5, 2)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}
