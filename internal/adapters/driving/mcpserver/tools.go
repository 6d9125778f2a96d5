package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/services"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query string `json:"query" jsonschema:"the search query to rank documents against"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Results []QueryHit `json:"results"`
}

// QueryHit is one ranked document.
type QueryHit struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// AssembleInput is the input schema for the assemble tool.
type AssembleInput struct {
	Query       string `json:"query" jsonschema:"the query to assemble a context digest for"`
	MaxTokens   int    `json:"max_tokens,omitempty" jsonschema:"total token budget (default 8000)"`
	MaxSections int    `json:"max_sections,omitempty" jsonschema:"maximum primary sections (default 20)"`
	Depth       *int   `json:"depth,omitempty" jsonschema:"cross-reference expansion depth, 0-2 (default 1)"`
}

// AssembleOutput is the output schema for the assemble tool: the rendered
// markdown digest plus its manifest, so a caller can decide whether to
// re-query with a larger budget.
type AssembleOutput struct {
	Digest        string                  `json:"digest"`
	EstimatedToks int                     `json:"estimated_tokens"`
	Manifest      []domain.ManifestEntry  `json:"manifest"`
	Underflowed   bool                    `json:"budget_underflowed"`
}

// registerTools registers the two read-only tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Rank indexed documents by BM25 relevance to a query",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "assemble",
		Description: "Run the full context-assembly pipeline and return a token-budgeted markdown digest",
	}, s.handleAssemble)
}

func (s *Server) handleQuery(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = 10
	}

	results, err := s.ports.Ranking.Query(s.ports.Index, input.Query, domain.QueryOptions{TopK: topK})
	if err != nil {
		return nil, QueryOutput{}, err
	}

	out := QueryOutput{Results: make([]QueryHit, len(results))}
	for i, r := range results {
		out.Results[i] = QueryHit{Path: r.Path, Score: r.Score}
	}
	return nil, out, nil
}

func (s *Server) handleAssemble(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssembleInput,
) (*mcp.CallToolResult, AssembleOutput, error) {
	depth := 1
	if input.Depth != nil {
		depth = *input.Depth
	}
	opts := domain.AssembleOptions{
		MaxTokens:   input.MaxTokens,
		MaxSections: input.MaxSections,
		Depth:       depth,
	}

	digest, err := s.ports.Assembler.Assemble(ctx, s.ports.Index, input.Query, opts)
	if err != nil {
		return nil, AssembleOutput{}, err
	}

	out := AssembleOutput{
		Digest:        services.Render(digest),
		EstimatedToks: digest.EstimatedToks,
		Manifest:      digest.Manifest,
		Underflowed:   digest.BudgetUnderflowed,
	}
	return nil, out, nil
}
