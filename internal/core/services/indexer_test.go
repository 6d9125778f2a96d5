package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/basalt-docs/docdex/internal/core/ports/driving"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIndexerService_Build_IndexesAcceptedExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# A\n\nhello world\n")
	writeFile(t, root, "b.txt", "plain text body\n")
	writeFile(t, root, "ignored.png", "not text")

	svc := NewIndexerService()
	fwd, stats, err := svc.Build(context.Background(), driving.BuildOptions{Root: root})
	require.NoError(t, err)

	require.Equal(t, 2, stats.DocumentCount)
	require.Contains(t, fwd.Files, "a.md")
	require.Contains(t, fwd.Files, "b.txt")
	require.NotContains(t, fwd.Files, "ignored.png")
}

func TestIndexerService_Build_ExcludesMatchingPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.md", "kept\n")
	writeFile(t, root, "vendor/dep.md", "excluded\n")

	svc := NewIndexerService()
	fwd, _, err := svc.Build(context.Background(), driving.BuildOptions{Root: root, Excludes: []string{"vendor"}})
	require.NoError(t, err)

	require.Contains(t, fwd.Files, "keep.md")
	require.NotContains(t, fwd.Files, "vendor/dep.md")
}

func TestIndexerService_Build_ResolvesRelativePathReferences(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# A\n\nsee [b](./b.md) for more\n")
	writeFile(t, root, "b.md", "# B\n\nbody\n")

	svc := NewIndexerService()
	fwd, _, err := svc.Build(context.Background(), driving.BuildOptions{Root: root})
	require.NoError(t, err)

	a := fwd.Files["a.md"]
	require.Len(t, a.References, 1)
	require.False(t, a.References[0].Broken)
	require.Equal(t, "b.md", a.References[0].ResolvedPath)
}

func TestIndexerService_Build_ResolvesSamePageAnchorToSelf(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# A\n\nsee the [background](#background) section below\n\n## Background\n\nbody\n")

	svc := NewIndexerService()
	fwd, _, err := svc.Build(context.Background(), driving.BuildOptions{Root: root})
	require.NoError(t, err)

	a := fwd.Files["a.md"]
	require.Len(t, a.References, 1)
	require.False(t, a.References[0].Broken)
	require.Equal(t, "a.md", a.References[0].ResolvedPath)
	require.Equal(t, "background", a.References[0].Anchor)
}

func TestIndexerService_Build_MarksMissingFileAsBroken(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# A\n\nsee [gone](./missing.md)\n")

	svc := NewIndexerService()
	fwd, _, err := svc.Build(context.Background(), driving.BuildOptions{Root: root})
	require.NoError(t, err)

	a := fwd.Files["a.md"]
	require.Len(t, a.References, 1)
	require.True(t, a.References[0].Broken)
}

func TestIndexerService_Build_ComputesAvgDocLength(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "one two three\n")
	writeFile(t, root, "b.md", "four five\n")

	svc := NewIndexerService()
	fwd, stats, err := svc.Build(context.Background(), driving.BuildOptions{Root: root})
	require.NoError(t, err)
	require.Greater(t, fwd.AvgDocLength, 0.0)
	require.Equal(t, fwd.AvgDocLength, stats.AvgDocLength)
}
