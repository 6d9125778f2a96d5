package bodycache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

func TestHydrate_ReadsSectionBodyFromDisk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("prelude\n# Heading\nline two\nline three\n"), 0o644))

	loader, err := New(root)
	require.NoError(t, err)

	doc := &domain.Document{
		Path: "a.md",
		Sections: []domain.Section{
			{Level: 0, StartLine: 1, EndLine: 2},
			{Heading: "Heading", Level: 1, StartLine: 2, EndLine: 5},
		},
	}

	require.NoError(t, loader.Hydrate(doc))

	prelude, ok := doc.Sections[0].Body()
	require.True(t, ok)
	assert.Equal(t, "prelude", prelude)

	body, ok := doc.Sections[1].Body()
	require.True(t, ok)
	assert.Contains(t, body, "line two")
	assert.Contains(t, body, "line three")
}

func TestHydrate_CachesByPathAndStartLine(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o644))

	loader, err := New(root)
	require.NoError(t, err)

	doc := &domain.Document{Path: "a.md", Sections: []domain.Section{{StartLine: 1, EndLine: 2}}}
	require.NoError(t, loader.Hydrate(doc))

	// Mutate the underlying file; a cached read should not observe it.
	require.NoError(t, os.WriteFile(path, []byte("changed\n"), 0o644))

	doc2 := &domain.Document{Path: "a.md", Sections: []domain.Section{{StartLine: 1, EndLine: 2}}}
	require.NoError(t, loader.Hydrate(doc2))

	body, _ := doc2.Sections[0].Body()
	assert.Equal(t, "one", body)
}

func TestHydrate_MissingFile(t *testing.T) {
	root := t.TempDir()
	loader, err := New(root)
	require.NoError(t, err)

	doc := &domain.Document{Path: "missing.md", Sections: []domain.Section{{StartLine: 1, EndLine: 1}}}

	assert.Error(t, loader.Hydrate(doc))
}
