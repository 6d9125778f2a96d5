package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// setupIndexedRepo writes a small document tree, builds an index for it via
// the real build command, and points the package-level flags at it. Returns
// the document root.
func setupIndexedRepo(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"),
		[]byte("# Overview\n\nThis project tracks retry budgets and backoff policy.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "runbook.md"),
		[]byte("# Runbook\n\nRestart the worker and monitor the retry queue.\n"), 0o644))

	flagRoot = root
	flagIndexDir = filepath.Join(t.TempDir(), "index")
	flagJSON = false
	flagCI = false

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, runBuild(cmd, nil))

	return root
}

func TestRunBuild_CreatesAQueryableIndex(t *testing.T) {
	setupIndexedRepo(t)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	require.NoError(t, runBuild(cmd, nil))
	require.Contains(t, out.String(), "Indexed 2 documents")
}

func TestRunQuery_FindsMatchingDocument(t *testing.T) {
	setupIndexedRepo(t)
	queryTopK = 10

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	require.NoError(t, runQuery(cmd, []string{"retry", "budgets"}))
	require.Contains(t, out.String(), "README.md")
}

func TestRunOrphans_ListsUnlinkedDocuments(t *testing.T) {
	setupIndexedRepo(t)
	orphansExclude = nil
	orphansCanonical = false

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	require.NoError(t, runOrphans(cmd, nil))
	require.Contains(t, out.String(), ".md")
}

func TestRunCheckLinks_CleanRepoReportsNoBrokenLinks(t *testing.T) {
	setupIndexedRepo(t)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.Flags().StringSlice("ci-reasons", checkLinksCICodes, "")
	cmd.SetOut(&out)
	require.NoError(t, runCheckLinks(cmd, nil))
	require.Contains(t, out.String(), "No broken links.")
}

func TestRunAssemble_ProducesADigest(t *testing.T) {
	setupIndexedRepo(t)
	assembleMaxTokens = 0
	assembleMaxSections = 0
	assembleDepth = -1

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	require.NoError(t, runAssemble(cmd, []string{"retry"}))
	require.Contains(t, out.String(), "# Context: retry")
}
