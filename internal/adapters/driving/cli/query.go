package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query <terms>",
	Short: "Rank indexed documents by BM25 against a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 10, "maximum number of results")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	results, err := rankingService.Query(fwd, query, domain.QueryOptions{TopK: queryTopK})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	return printJSONOrPlain(cmd, results, func(cmd *cobra.Command) error {
		if len(results) == 0 {
			cmd.Println("No results.")
			return nil
		}
		for i, r := range results {
			cmd.Printf("%2d. %-60s %.4f\n", i+1, r.Path, r.Score)
		}
		return nil
	})
}
