package jsonindex

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

func sampleIndex() *domain.ForwardIndex {
	doc := &domain.Document{
		Path:      "docs/guide.md",
		Length:    3,
		TermFreq:  map[string]int{"hello": 2, "world": 1},
		Sections: []domain.Section{
			{Heading: "", Level: 0, StartLine: 1, EndLine: 2},
			{Heading: "Intro", Level: 1, StartLine: 2, EndLine: 4},
		},
	}
	return &domain.ForwardIndex{
		Version:         domain.CurrentIndexVersion,
		IndexedAt:       time.Now().UTC(),
		Files:           map[string]*domain.Document{"docs/guide.md": doc},
		AvgDocLength:    3,
		IDF:             map[string]float64{"hello": 0.5, "world": 0.8},
		Identifiers:     map[string]string{},
		IdentifierWidth: 3,
	}
}

func writeSourceFile(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	content := "prelude line\n# Intro\nbody text here\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "guide.md"), []byte(content), 0o644))
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	indexDir := t.TempDir()
	sourceRoot := t.TempDir()
	writeSourceFile(t, sourceRoot)

	store, err := New(indexDir, sourceRoot)
	require.NoError(t, err)

	fwd := sampleIndex()
	stats := &domain.Stats{Version: domain.CurrentIndexVersion, DocumentCount: 1}

	require.NoError(t, store.Save(context.Background(), fwd, BuildReverseIndex(fwd), stats))

	loadedFwd, loadedRev, loadedStats, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, loadedStats.DocumentCount)
	assert.Contains(t, loadedRev.Terms["hello"], "docs/guide.md")
	doc := loadedFwd.Files["docs/guide.md"]
	require.NotNil(t, doc)

	body, loaded := doc.Sections[1].Body()
	assert.True(t, loaded)
	assert.Contains(t, body, "Intro")
}

func TestLoad_MissingIndex(t *testing.T) {
	indexDir := t.TempDir()
	sourceRoot := t.TempDir()

	store, err := New(indexDir, sourceRoot)
	require.NoError(t, err)

	_, _, _, err = store.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrIndexMissing)
}

func TestLoad_RebuildsMissingReverseIndex(t *testing.T) {
	indexDir := t.TempDir()
	sourceRoot := t.TempDir()
	writeSourceFile(t, sourceRoot)

	store, err := New(indexDir, sourceRoot)
	require.NoError(t, err)

	fwd := sampleIndex()
	require.NoError(t, store.Save(context.Background(), fwd, nil, nil))

	_, rev, _, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, rev.Terms["world"], "docs/guide.md")
}

func TestAcquireLock_ExclusiveAndStaleReclaim(t *testing.T) {
	dir := t.TempDir()

	unlock, err := acquireLock(dir)
	require.NoError(t, err)

	_, err = acquireLock(dir)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	require.NoError(t, unlock())

	unlock2, err := acquireLock(dir)
	require.NoError(t, err)
	require.NoError(t, unlock2())
}

func TestReclaimStaleLock_RemovesOldLock(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, lockFileName)

	stale := lockInfo{PID: 99999, Host: "old-host", AcquiredAt: time.Now().Add(-2 * time.Hour)}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	unlock, lockErr := acquireLock(dir)
	require.NoError(t, lockErr)
	require.NoError(t, unlock())
}
