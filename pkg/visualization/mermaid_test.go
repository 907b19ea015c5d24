package visualization_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/pkg/visualization"
)

func TestMermaid_RendersNodesAndEdges(t *testing.T) {
	def := domain.Definition{
		Nodes: []domain.Node{
			{ID: "in", Type: domain.NodeTypeInput},
			{ID: "out", Type: domain.NodeTypeOutput},
		},
		Edges: []domain.Edge{{Source: "in", Target: "out"}},
	}

	out := visualization.Mermaid(def)
	require.Contains(t, out, "graph TD")
	require.Contains(t, out, `in["in (input)"]`)
	require.Contains(t, out, `out["out (output)"]`)
	require.Contains(t, out, "in --> out")
}

func TestMermaid_SanitizesIDsWithSpecialCharacters(t *testing.T) {
	def := domain.Definition{
		Nodes: []domain.Node{
			{ID: "node one", Type: domain.NodeTypeInput},
			{ID: "node-two.v1", Type: domain.NodeTypeOutput},
		},
		Edges: []domain.Edge{{Source: "node one", Target: "node-two.v1"}},
	}

	out := visualization.Mermaid(def)
	require.Contains(t, out, "node_one --> node_two_v1")
}
