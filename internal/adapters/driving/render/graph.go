// Package render formats already-computed core results for external
// consumption: Graphviz DOT text for export-graph. JSON output is handled
// directly by the CLI via encoding/json, since it needs no transformation.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

// DOT renders a domain.Graph as Graphviz "dot" source: one quoted node per
// document, one directed edge per graph edge (linked document pair). Output is
// deterministic: nodes and edges are emitted in sorted order.
func DOT(g *domain.Graph) string {
	var b strings.Builder
	b.WriteString("digraph docdex {\n")

	nodes := append([]string(nil), g.Nodes...)
	sort.Strings(nodes)
	for _, n := range nodes {
		fmt.Fprintf(&b, "  %q;\n", n)
	}

	sources := make([]string, 0, len(g.Edges))
	for src := range g.Edges {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		targets := append([]string(nil), g.Edges[src]...)
		sort.Strings(targets)
		for _, tgt := range targets {
			fmt.Fprintf(&b, "  %q -> %q;\n", src, tgt)
		}
	}

	b.WriteString("}\n")
	return b.String()
}
