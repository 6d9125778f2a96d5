package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/services"
)

var evalCmd = &cobra.Command{
	Use:   "eval <jsonl-path>",
	Short: "Run assemble over a JSONL suite and check expected substrings",
	Long: `Each line of the suite is {id, q, expect: [string], min_hits}. A case
passes when at least min_hits of the expect strings appear, case-insensitive,
somewhere in the assembled digest.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

// evalCase is one line of the eval JSONL schema (spec.md §6).
type evalCase struct {
	ID      string   `json:"id"`
	Query   string   `json:"q"`
	Expect  []string `json:"expect"`
	MinHits int      `json:"min_hits"`
}

// evalResult is the per-case verdict, reported both in JSON and plain mode.
type evalResult struct {
	RunID   string `json:"run_id"`
	ID      string `json:"id"`
	Pass    bool   `json:"pass"`
	Hits    int    `json:"hits"`
	MinHits int    `json:"min_hits"`
}

func runEval(cmd *cobra.Command, args []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening eval suite: %w", err)
	}
	defer f.Close() //nolint:errcheck

	runID := uuid.NewString()
	var results []evalResult
	failures := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var c evalCase
		if jsonErr := json.Unmarshal([]byte(line), &c); jsonErr != nil {
			return fmt.Errorf("eval: line %d: %w", lineNo, jsonErr)
		}

		digest, assembleErr := assemblerService.Assemble(cmd.Context(), fwd, c.Query, domain.AssembleOptions{})
		if assembleErr != nil {
			return fmt.Errorf("eval: case %s: %w", c.ID, assembleErr)
		}

		hits := countHits(services.Render(digest), c.Expect)
		pass := hits >= c.MinHits
		if !pass {
			failures++
		}

		results = append(results, evalResult{RunID: runID, ID: c.ID, Pass: pass, Hits: hits, MinHits: c.MinHits})
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return fmt.Errorf("reading eval suite: %w", scanErr)
	}

	if err := printJSONOrPlain(cmd, results, func(cmd *cobra.Command) error {
		for _, r := range results {
			status := "PASS"
			if !r.Pass {
				status = "FAIL"
			}
			cmd.Printf("[%s] %-20s %d/%d hits\n", status, r.ID, r.Hits, r.MinHits)
		}
		cmd.Printf("\nrun %s: %d/%d passed\n", runID, len(results)-failures, len(results))
		return nil
	}); err != nil {
		return err
	}

	if failures > 0 {
		return fmt.Errorf("eval: %d of %d case(s) failed", failures, len(results))
	}
	return nil
}

func countHits(digest string, expect []string) int {
	lower := strings.ToLower(digest)
	hits := 0
	for _, e := range expect {
		if strings.Contains(lower, strings.ToLower(e)) {
			hits++
		}
	}
	return hits
}
