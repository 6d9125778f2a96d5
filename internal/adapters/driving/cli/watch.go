package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/basalt-docs/docdex/internal/adapters/driven/storage/jsonindex"
	"github.com/basalt-docs/docdex/internal/core/ports/driving"
	"github.com/basalt-docs/docdex/internal/watch"
)

var watchIntervalSeconds float64

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the index on every filesystem change under --root",
	Long:  `Runs an initial build, then watches --root and triggers a full rebuild (never incremental) on every debounced burst of changes.`,
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Float64Var(&watchIntervalSeconds, "min-interval", 1, "minimum seconds between rebuilds")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) error {
		unlock, err := store.Lock(ctx)
		if err != nil {
			return err
		}
		defer unlock() //nolint:errcheck

		fwd, stats, err := indexerService.Build(ctx, driving.BuildOptions{Root: flagRoot})
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		rev := jsonindex.BuildReverseIndex(fwd)
		return store.Save(ctx, fwd, rev, stats)
	}

	opts := watch.Options{
		Root:     flagRoot,
		Debounce: rate.Every(durationFromSeconds(watchIntervalSeconds)),
	}
	return watch.Run(cmd.Context(), opts, rebuild)
}

func durationFromSeconds(s float64) time.Duration {
	if s <= 0 {
		s = 1
	}
	return time.Duration(s * float64(time.Second))
}
