package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basalt-docs/docdex/internal/adapters/driving/render"
	"github.com/basalt-docs/docdex/internal/core/domain"
)

var checkLinksCICodes = []string{"missing_file", "missing_anchor"}

var checkLinksCmd = &cobra.Command{
	Use:   "check-links",
	Short: "Scan for broken links",
	Args:  cobra.NoArgs,
	RunE:  runCheckLinks,
}

var backlinksCmd = &cobra.Command{
	Use:   "backlinks <path>",
	Short: "List the documents linking to a given document",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacklinks,
}

var (
	orphansExclude  []string
	orphansCanonical bool
	orphansTau      float64
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List documents with zero inbound links",
	Args:  cobra.NoArgs,
	RunE:  runOrphans,
}

var canonicalityCmd = &cobra.Command{
	Use:   "canonicality",
	Short: "Score every document's canonicality",
	Args:  cobra.NoArgs,
	RunE:  runCanonicality,
}

var (
	staleDays      int
	staleMinInlinks int
)

var staleCmd = &cobra.Command{
	Use:   "stale",
	Short: "List old, under-linked documents",
	Args:  cobra.NoArgs,
	RunE:  runStale,
}

var exportGraphCmd = &cobra.Command{
	Use:   "export-graph",
	Short: "Dump the full link graph",
	Args:  cobra.NoArgs,
	RunE:  runExportGraph,
}

var consolidationThreshold float64

var suggestConsolidationCmd = &cobra.Command{
	Use:   "suggest-consolidation",
	Short: "Suggest near-duplicate documents to merge, ranked by canonicality",
	Args:  cobra.NoArgs,
	RunE:  runSuggestConsolidation,
}

func init() {
	checkLinksCmd.Flags().StringSlice("ci-reasons", checkLinksCICodes, "broken-link reasons that fail the build in --ci mode")
	orphansCmd.Flags().StringSliceVar(&orphansExclude, "exclude", nil, "path substrings; documents whose path contains any are excluded from the orphan scan")
	orphansCmd.Flags().BoolVar(&orphansCanonical, "canonical-only", false, "report only zero-inbound documents whose canonicality is at or above --tau")
	orphansCmd.Flags().Float64Var(&orphansTau, "tau", 0.6, "canonicality threshold used with --canonical-only")
	staleCmd.Flags().IntVar(&staleDays, "days", 180, "age threshold in days")
	staleCmd.Flags().IntVar(&staleMinInlinks, "min-inlinks", 1, "documents with at most this many inbound links are flagged")
	suggestConsolidationCmd.Flags().Float64Var(&consolidationThreshold, "threshold", 0.5, "C5 duplicate-similarity threshold")

	rootCmd.AddCommand(checkLinksCmd)
	rootCmd.AddCommand(backlinksCmd)
	rootCmd.AddCommand(orphansCmd)
	rootCmd.AddCommand(canonicalityCmd)
	rootCmd.AddCommand(staleCmd)
	rootCmd.AddCommand(exportGraphCmd)
	rootCmd.AddCommand(suggestConsolidationCmd)
}

func runCheckLinks(cmd *cobra.Command, _ []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	broken := linkGraphService.BrokenLinks(fwd)

	if err := printJSONOrPlain(cmd, broken, func(cmd *cobra.Command) error {
		if len(broken) == 0 {
			cmd.Println("No broken links.")
			return nil
		}
		for _, b := range broken {
			cmd.Printf("%s:%d  %q  (%s)\n", b.SourcePath, b.SourceLine, b.RawTarget, b.Reason)
		}
		return nil
	}); err != nil {
		return err
	}

	if flagCI {
		ciReasons, _ := cmd.Flags().GetStringSlice("ci-reasons")
		if n := countMatchingReasons(broken, ciReasons); n > 0 {
			return fmt.Errorf("check-links: %d broken link(s) matching ci-reasons %v", n, ciReasons)
		}
	}
	return nil
}

func countMatchingReasons(broken []domain.BrokenLink, reasons []string) int {
	want := make(map[string]struct{}, len(reasons))
	for _, r := range reasons {
		want[r] = struct{}{}
	}
	n := 0
	for _, b := range broken {
		if _, ok := want[string(b.Reason)]; ok {
			n++
		}
	}
	return n
}

func runBacklinks(cmd *cobra.Command, args []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	links := linkGraphService.Backlinks(fwd, args[0])
	return printJSONOrPlain(cmd, links, func(cmd *cobra.Command) error {
		if len(links) == 0 {
			cmd.Println("No backlinks.")
			return nil
		}
		for _, l := range links {
			cmd.Println(l)
		}
		return nil
	})
}

func runOrphans(cmd *cobra.Command, _ []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	var orphans []string
	if orphansCanonical {
		graph := linkGraphService.Build(fwd)
		orphans = linkGraphService.CanonicalOrphans(fwd, graph, orphansTau)
	} else {
		orphans = linkGraphService.Orphans(fwd, orphansExclude)
	}

	return printJSONOrPlain(cmd, orphans, func(cmd *cobra.Command) error {
		if len(orphans) == 0 {
			cmd.Println("No orphans.")
			return nil
		}
		for _, p := range orphans {
			cmd.Println(p)
		}
		return nil
	})
}

func runCanonicality(cmd *cobra.Command, _ []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	graph := linkGraphService.Build(fwd)
	scores := linkGraphService.Canonicality(fwd, graph)
	return printJSONOrPlain(cmd, scores, func(cmd *cobra.Command) error {
		for _, s := range scores {
			cmd.Printf("%.3f  %-10s  %s\n", s.Score, s.Type, s.Path)
		}
		return nil
	})
}

func runStale(cmd *cobra.Command, _ []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	graph := linkGraphService.Build(fwd)
	stale := linkGraphService.Stale(fwd, graph, staleDays, staleMinInlinks)
	return printJSONOrPlain(cmd, stale, func(cmd *cobra.Command) error {
		if len(stale) == 0 {
			cmd.Println("No stale documents.")
			return nil
		}
		for _, s := range stale {
			cmd.Printf("%6.0fd  %d inbound  %s\n", s.AgeDays, s.InboundCount, s.Path)
		}
		return nil
	})
}

func runExportGraph(cmd *cobra.Command, _ []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	graph := linkGraphService.Build(fwd)
	return printJSONOrPlain(cmd, graph, func(cmd *cobra.Command) error {
		cmd.Println(render.DOT(graph))
		return nil
	})
}

func runSuggestConsolidation(cmd *cobra.Command, _ []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	groups, err := consolidationService.Suggest(fwd, consolidationThreshold)
	if err != nil {
		return fmt.Errorf("suggest-consolidation failed: %w", err)
	}

	return printJSONOrPlain(cmd, groups, func(cmd *cobra.Command) error {
		if len(groups) == 0 {
			cmd.Println("No consolidation candidates found.")
			return nil
		}
		for _, g := range groups {
			cmd.Printf("keep %s (similarity >= %.3f)\n", g.KeepPath, g.Similarity)
			for _, m := range g.MergePaths {
				cmd.Printf("    merge %s\n", m)
			}
		}
		return nil
	})
}
