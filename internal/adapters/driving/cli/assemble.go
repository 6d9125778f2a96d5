package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/services"
)

var (
	assembleMaxTokens   int
	assembleMaxSections int
	assembleDepth       int
)

var assembleCmd = &cobra.Command{
	Use:   "assemble <query>",
	Short: "Run the full context-assembly pipeline for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAssemble,
}

func init() {
	assembleCmd.Flags().IntVar(&assembleMaxTokens, "max-tokens", 0, "total token budget (default from profile, else 8000)")
	assembleCmd.Flags().IntVar(&assembleMaxSections, "max-sections", 0, "max primary sections (default from profile, else 20)")
	assembleCmd.Flags().IntVar(&assembleDepth, "depth", -1, "cross-reference expansion depth, 0-2 (default from profile, else 1)")
	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	opts := domain.AssembleOptions{
		MaxTokens:   resolveIntOption(assembleMaxTokens, profile.DefaultTokenBudget),
		MaxSections: resolveIntOption(assembleMaxSections, profile.DefaultAssembleSections),
		Depth:       resolveDepthOption(assembleDepth, profile.DefaultAssembleDepth),
	}

	query := strings.Join(args, " ")
	digest, err := assemblerService.Assemble(cmd.Context(), fwd, query, opts)
	if errors.Is(err, domain.ErrEmptyQuery) {
		digest, err = &domain.Digest{Query: query}, nil
	}
	if err != nil {
		return fmt.Errorf("assemble failed: %w", err)
	}

	return printJSONOrPlain(cmd, digest, func(cmd *cobra.Command) error {
		cmd.Println(services.Render(digest))
		return nil
	})
}

func resolveIntOption(flagValue, profileValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return profileValue
}

func resolveDepthOption(flagValue, profileValue int) int {
	if flagValue >= 0 {
		return flagValue
	}
	return profileValue
}
