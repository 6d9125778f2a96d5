// Package mcpserver exposes docdex's read-only query and assemble
// operations as MCP (Model Context Protocol) tools, so an agent can pull
// context directly over stdio instead of shelling out to the CLI. It adds
// no new core semantics: it is a thin transport over the same
// driving.RankingService/driving.AssemblerService ports the CLI uses.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/ports/driving"
)

// Version is the MCP server version docdex reports in its implementation
// handshake.
const Version = "0.1.0"

// ErrMissingIndex is returned when no ForwardIndex was supplied.
var ErrMissingIndex = errors.New("mcpserver: index is required")

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	Ranking   driving.RankingService
	Assembler driving.AssemblerService
	Index     *domain.ForwardIndex
}

func (p *Ports) validate() error {
	if p.Index == nil {
		return ErrMissingIndex
	}
	return nil
}

// Server is the MCP server for docdex.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer constructs a Server with its tools registered.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{Name: "docdex", Version: Version}
	s := &Server{ports: ports, server: mcp.NewServer(impl, nil)}
	s.registerTools()
	return s, nil
}

// Run serves the two tools over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
