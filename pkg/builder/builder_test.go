package builder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/pkg/builder"
)

func TestBuilder_FluentChain(t *testing.T) {
	def := builder.New().
		Input("in", map[string]any{}).
		Transform("up", map[string]any{"transform_type": "custom", "expression": `upper(input["msg"])`}).
		Output("out", map[string]any{}).
		Edge("in", "up").
		Edge("up", "out").
		Build()

	require.Len(t, def.Nodes, 3)
	require.Len(t, def.Edges, 2)
	require.Equal(t, domain.NodeTypeInput, def.Nodes[0].Type)
	require.Equal(t, domain.NodeTypeTransform, def.Nodes[1].Type)
	require.Equal(t, domain.NodeTypeOutput, def.Nodes[2].Type)

	node, ok := def.NodeByID("up")
	require.True(t, ok)
	require.Equal(t, "custom", node.Config["transform_type"])
}

func TestBuilder_NilConfigDefaultsToEmptyMap(t *testing.T) {
	def := builder.New().Input("in", nil).Build()
	require.NotNil(t, def.Nodes[0].Config)
	require.Empty(t, def.Nodes[0].Config)
}
