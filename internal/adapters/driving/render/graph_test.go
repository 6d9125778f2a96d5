package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

func TestDOT_RendersSortedNodesAndEdges(t *testing.T) {
	graph := &domain.Graph{
		Nodes: []string{"b.md", "a.md"},
		Edges: map[string][]string{
			"a.md": {"b.md"},
		},
	}

	out := DOT(graph)

	assert.True(t, strings.HasPrefix(out, "digraph docdex {"))
	idxA := strings.Index(out, `"a.md"`)
	idxB := strings.Index(out, `"b.md"`)
	assert.True(t, idxA < idxB, "nodes should render in sorted order")
	assert.Contains(t, out, `"a.md" -> "b.md"`)
}

func TestDOT_HandlesEmptyGraph(t *testing.T) {
	out := DOT(&domain.Graph{})
	assert.Contains(t, out, "digraph docdex")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "}"))
}
