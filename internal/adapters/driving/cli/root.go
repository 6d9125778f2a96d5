// Package cli implements docdex's command surface: one subcommand per row
// of spec.md's command table, plus watch and mcp. Every command loads an
// already-built index from disk and runs a pure core operation over it;
// build and watch are the only commands that write the index.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/basalt-docs/docdex/internal/adapters/driven/storage/jsonindex"
	"github.com/basalt-docs/docdex/internal/config"
	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/ports/driven"
	"github.com/basalt-docs/docdex/internal/core/services"
	"github.com/basalt-docs/docdex/internal/logger"
)

var (
	flagRoot     string
	flagIndexDir string
	flagProfile  string
	flagConfig   string
	flagJSON     bool
	flagVerbose  bool
	flagCI       bool
)

// Services are stateless and wired once at package init; they hold no
// config and need no lifecycle.
var (
	indexerService       = services.NewIndexerService()
	rankingService       = services.NewRankingService()
	similarityService    = services.NewSimilarityService()
	linkGraphService     = services.NewLinkGraphService()
	assemblerService     = services.NewAssemblerService(rankingService, linkGraphService)
	consolidationService = services.NewConsolidationService(similarityService, linkGraphService)
)

// profile holds the resolved configuration for the current invocation,
// populated by rootCmd's PersistentPreRunE.
var profile config.Profile

var rootCmd = &cobra.Command{
	Use:   "docdex",
	Short: "Deterministic documentation indexer and context assembler",
	Long: `docdex indexes a tree of Markdown/text documents, ranks them with BM25,
detects near-duplicates, derives a link graph, and assembles token-budgeted
context digests suitable as input to a downstream reasoning system.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadProfile,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", ".", "document root to index/query")
	rootCmd.PersistentFlags().StringVar(&flagIndexDir, "index-dir", ".docdex-index", "directory holding the on-disk index")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "named profile from the config file")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to .docdex.toml (default: searched upward from --root)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "print progress to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagCI, "ci", false, "promote selected broken-link kinds to a non-zero exit code")
}

// Execute runs the command tree. It is the sole entry point cmd/docdex
// calls.
func Execute() error {
	return rootCmd.Execute()
}

func loadProfile(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	cfgPath := flagConfig
	if cfgPath == "" {
		if found, ok := config.FindUpward(flagRoot, config.DefaultFileName); ok {
			cfgPath = found
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	p, err := cfg.Resolve(flagProfile)
	if err != nil {
		return fmt.Errorf("resolving profile: %w", err)
	}
	if p.Root != "" && !cmd.Flags().Changed("root") {
		flagRoot = p.Root
	}
	profile = p
	return nil
}

// openStore constructs the jsonindex.Store for the current invocation's
// --root/--index-dir.
func openStore() (driven.IndexStore, error) {
	root, err := filepath.Abs(flagRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	return jsonindex.New(flagIndexDir, root)
}

// loadIndex opens the store and loads the current index, the shared first
// step of every command except build.
func loadIndex(ctx context.Context) (*domain.ForwardIndex, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	fwd, _, _, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return fwd, nil
}

func printJSONOrPlain(cmd *cobra.Command, v any, plain func(cmd *cobra.Command) error) error {
	if flagJSON {
		return outputJSON(cmd, v)
	}
	return plain(cmd)
}

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
