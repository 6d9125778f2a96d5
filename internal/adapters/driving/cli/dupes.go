package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dupesThreshold float64

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Find near-duplicate document pairs",
	Args:  cobra.NoArgs,
	RunE:  runDupes,
}

var dupesSectionsMinFiles int

var dupesSectionsCmd = &cobra.Command{
	Use:   "dupes-sections",
	Short: "Cluster near-duplicate sections spanning multiple documents",
	Args:  cobra.NoArgs,
	RunE:  runDupesSections,
}

func init() {
	dupesCmd.Flags().Float64Var(&dupesThreshold, "threshold", 0.5, "similarity threshold")
	dupesSectionsCmd.Flags().Float64Var(&dupesThreshold, "threshold", 0.7, "hamming-similarity threshold")
	dupesSectionsCmd.Flags().IntVar(&dupesSectionsMinFiles, "min-files", 2, "minimum distinct documents per cluster")
	rootCmd.AddCommand(dupesCmd)
	rootCmd.AddCommand(dupesSectionsCmd)
}

func runDupes(cmd *cobra.Command, _ []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	threshold := dupesThreshold
	if !cmd.Flags().Changed("threshold") && profile.DuplicateThreshold > 0 {
		threshold = profile.DuplicateThreshold
	}

	pairs, err := similarityService.Duplicates(fwd, threshold)
	if err != nil {
		return fmt.Errorf("dupes failed: %w", err)
	}

	return printJSONOrPlain(cmd, pairs, func(cmd *cobra.Command) error {
		if len(pairs) == 0 {
			cmd.Println("No near-duplicate pairs found.")
			return nil
		}
		for _, p := range pairs {
			cmd.Printf("%.3f  %s  <->  %s\n", p.Similarity, p.A, p.B)
		}
		return nil
	})
}

func runDupesSections(cmd *cobra.Command, _ []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	threshold := dupesThreshold
	if !cmd.Flags().Changed("threshold") && profile.SectionClusterThreshold > 0 {
		threshold = profile.SectionClusterThreshold
	}
	minFiles := dupesSectionsMinFiles
	if !cmd.Flags().Changed("min-files") && profile.SectionClusterMinFiles > 0 {
		minFiles = profile.SectionClusterMinFiles
	}

	clusters, err := similarityService.SectionClusters(fwd, threshold, minFiles)
	if err != nil {
		return fmt.Errorf("dupes-sections failed: %w", err)
	}

	return printJSONOrPlain(cmd, clusters, func(cmd *cobra.Command) error {
		if len(clusters) == 0 {
			cmd.Println("No section clusters found.")
			return nil
		}
		for _, c := range clusters {
			cmd.Printf("%q (%d sections)\n", c.Label, len(c.Sections))
			for _, ref := range c.Sections {
				cmd.Printf("    %s #%d\n", ref.DocPath, ref.Index)
			}
		}
		return nil
	})
}
