package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_SegmentsSectionsByHeading(t *testing.T) {
	raw := []byte("intro line\n\n# First\nbody one\n\n## Second\nbody two\n")
	result := Analyze(raw)

	require.Len(t, result.Sections, 3)
	assert.Equal(t, 0, result.Sections[0].Level)
	assert.Equal(t, "First", result.Sections[1].Heading)
	assert.Equal(t, 1, result.Sections[1].Level)
	assert.Equal(t, "Second", result.Sections[2].Heading)
	assert.Equal(t, 2, result.Sections[2].Level)
}

func TestAnalyze_NoHeadingsProducesOnePrelude(t *testing.T) {
	result := Analyze([]byte("just some text\nno headings here\n"))

	require.Len(t, result.Sections, 1)
	assert.Equal(t, 0, result.Sections[0].Level)
	assert.Equal(t, 1, result.Sections[0].StartLine)
}

func TestAnalyze_HeadingTokensWeightedDouble(t *testing.T) {
	result := Analyze([]byte("# Retry Budgets\n\nRetry logic lives here.\n"))

	// "retri" (stemmed) appears once in the heading (weight 2) and once in
	// the body (weight 1) = 3.
	assert.Equal(t, 3, result.TermFreq["retri"])
}

func TestAnalyze_SkipsFencedCodeSpans(t *testing.T) {
	result := Analyze([]byte("# Title\n\n```\nskippedtoken\n```\n\nregulartoken\n"))

	assert.NotContains(t, result.TermFreq, "skippedtoken")
	assert.Contains(t, result.TermFreq, "regulartoken")
}

func TestAnalyze_ExtractsReferences(t *testing.T) {
	result := Analyze([]byte("# Title\n\nSee [the guide](../guide.md#setup) for details.\n"))

	require.Len(t, result.References, 1)
	assert.Equal(t, "../guide.md", result.References[0].Target)
	assert.Equal(t, "setup", result.References[0].Anchor)
}

func TestTermFrequencies_SharedByOnDemandSectionAnalysis(t *testing.T) {
	lines := []string{"# Heading Term", "body term here"}
	freq, tokens := TermFrequencies(lines)

	assert.Greater(t, freq["term"], 0)
	assert.NotEmpty(t, tokens)
}
