package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

func TestConsolidationService_Suggest_GroupsDuplicatesAndPicksCanonicalKeep(t *testing.T) {
	tokens := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	idx := &domain.ForwardIndex{Files: map[string]*domain.Document{
		"README.md":      docWithTokens("README.md", tokens),
		"archived/old.md": docWithTokens("archived/old.md", tokens),
	}}
	idx.Files["README.md"].ModifiedAt = time.Now()
	idx.Files["archived/old.md"].ModifiedAt = time.Now()

	svc := NewConsolidationService(NewSimilarityService(), NewLinkGraphService())
	groups, err := svc.Suggest(idx, 0.5)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, "README.md", groups[0].KeepPath)
	assert.Equal(t, []string{"archived/old.md"}, groups[0].MergePaths)
}

func TestConsolidationService_Suggest_NoDuplicatesYieldsNoGroups(t *testing.T) {
	idx := &domain.ForwardIndex{Files: map[string]*domain.Document{
		"a.md": docWithTokens("a.md", []string{"alpha", "beta"}),
		"b.md": docWithTokens("b.md", []string{"gamma", "delta"}),
	}}

	svc := NewConsolidationService(NewSimilarityService(), NewLinkGraphService())
	groups, err := svc.Suggest(idx, 0.9)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestConsolidationService_Suggest_TransitivelyClustersThreeWay(t *testing.T) {
	tokens := []string{"one", "two", "three", "four", "five"}
	idx := &domain.ForwardIndex{Files: map[string]*domain.Document{
		"a.md": docWithTokens("a.md", tokens),
		"b.md": docWithTokens("b.md", tokens),
		"c.md": docWithTokens("c.md", tokens),
	}}

	svc := NewConsolidationService(NewSimilarityService(), NewLinkGraphService())
	groups, err := svc.Suggest(idx, 0.5)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].MergePaths, 2)
}
