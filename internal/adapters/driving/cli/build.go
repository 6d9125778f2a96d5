package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/basalt-docs/docdex/internal/adapters/driven/storage/jsonindex"
	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/ports/driving"
	"github.com/basalt-docs/docdex/internal/logger"
)

var buildWorkers int

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Index the document tree under --root",
	Long:  `Performs a full rebuild of the index: every document is re-read and re-analyzed.`,
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "worker pool size (default min(8, CPU count))")
	buildCmd.Flags().StringSlice("ext", nil, "file extensions to index (default md,txt,rst)")
	buildCmd.Flags().StringSlice("exclude", nil, "gitignore-style exclude patterns")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	unlock, err := store.Lock(cmd.Context())
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck

	exts, _ := cmd.Flags().GetStringSlice("ext")
	if len(exts) == 0 {
		exts = profile.Extensions
	}
	excl, _ := cmd.Flags().GetStringSlice("exclude")
	if len(excl) == 0 {
		excl = profile.Exclude
	}

	opts := driving.BuildOptions{
		Root:       flagRoot,
		Extensions: exts,
		Excludes:   excl,
		Workers:    buildWorkers,
	}

	logger.Info("building index for %s", flagRoot)
	start := time.Now()
	fwd, stats, err := indexerService.Build(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	stats.BuildDuration = time.Since(start)

	rev := jsonindex.BuildReverseIndex(fwd)
	if err := store.Save(cmd.Context(), fwd, rev, stats); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	return printJSONOrPlain(cmd, stats, func(cmd *cobra.Command) error {
		return reportBuildStats(cmd, stats)
	})
}

func reportBuildStats(cmd *cobra.Command, stats *domain.Stats) error {
	cmd.Printf("Indexed %d documents in %s\n", stats.DocumentCount, stats.BuildDuration.Round(time.Millisecond))
	cmd.Printf("  avg doc length: %.1f\n", stats.AvgDocLength)
	if stats.SkippedFiles > 0 {
		cmd.Printf("  skipped files:  %d\n", stats.SkippedFiles)
	}
	return nil
}
