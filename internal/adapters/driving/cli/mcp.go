package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basalt-docs/docdex/internal/adapters/driving/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve query and assemble as MCP tools over stdio",
	Long: `Starts an MCP (Model Context Protocol) server exposing the query and
assemble operations as read-only tools over stdio, for AI assistant
integration. Loads the index once at startup; run "docdex build" first.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	fwd, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	server, err := mcpserver.NewServer(&mcpserver.Ports{
		Ranking:   rankingService,
		Assembler: assemblerService,
		Index:     fwd,
	})
	if err != nil {
		return fmt.Errorf("starting mcp server: %w", err)
	}

	return server.Run(cmd.Context())
}
