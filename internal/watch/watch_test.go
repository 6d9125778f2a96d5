package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectDirs_IncludesNestedSubdirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "nested"), 0o755))

	dirs, err := collectDirs(root)
	require.NoError(t, err)

	assert.Contains(t, dirs, root)
	assert.Contains(t, dirs, filepath.Join(root, "sub"))
	assert.Contains(t, dirs, filepath.Join(root, "sub", "nested"))
}

func TestRelevantEvent_WriteCreateRemoveRenameAreRelevant(t *testing.T) {
	for _, op := range []fsnotify.Op{fsnotify.Write, fsnotify.Create, fsnotify.Remove, fsnotify.Rename} {
		assert.True(t, relevantEvent(fsnotify.Event{Op: op}), "op %s should be relevant", op)
	}
}

func TestRelevantEvent_ChmodIsNotRelevant(t *testing.T) {
	assert.False(t, relevantEvent(fsnotify.Event{Op: fsnotify.Chmod}))
}

func TestRun_PerformsInitialRebuildBeforeWatching(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	calls := 0
	rebuild := func(context.Context) error {
		calls++
		return nil
	}

	err := Run(ctx, Options{Root: root}, rebuild)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 1)
}
