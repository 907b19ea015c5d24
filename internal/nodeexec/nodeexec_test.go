package nodeexec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowforge/dagflow/internal/domain"
)

func newTestContext(input map[string]any) *domain.Context {
	return domain.NewContext("exec-1", "wf-1", input, nil)
}

func TestInputExecutor_ExtractAndDefaults(t *testing.T) {
	runCtx := newTestContext(map[string]any{"payload": map[string]any{"name": "Alice"}})
	node := domain.Node{ID: "in", Type: domain.NodeTypeInput, Config: map[string]any{
		"extract_field": "payload",
		"defaults":      map[string]any{"role": "guest"},
	}}
	exec, err := NewInputExecutor(node.ID, node.Type)
	require.NoError(t, err)

	result := Run(context.Background(), node, exec, runCtx)
	require.Equal(t, domain.NodeStatusSuccess, result.Status)
	require.Equal(t, map[string]any{"name": "Alice", "role": "guest"}, result.Output)
}

func TestConditionExecutor_MatchesInOrder(t *testing.T) {
	runCtx := newTestContext(map[string]any{"age": float64(20)})
	node := domain.Node{ID: "cond", Type: domain.NodeTypeCondition, Config: map[string]any{
		"conditions": []any{
			map[string]any{"field": "input.age", "operator": "gte", "value": float64(18), "branch": "adult"},
			map[string]any{"field": "input.age", "operator": "lt", "value": float64(18), "branch": "minor"},
		},
	}}
	exec, err := NewConditionExecutor(node.ID, node.Type)
	require.NoError(t, err)

	result := Run(context.Background(), node, exec, runCtx)
	require.Equal(t, domain.NodeStatusSuccess, result.Status)
	out := result.Output.(map[string]any)
	require.Equal(t, "adult", out["branch"])
	require.Equal(t, 0, out["matched_condition"])
}

func TestConditionExecutor_DefaultBranch(t *testing.T) {
	runCtx := newTestContext(map[string]any{"age": float64(5)})
	node := domain.Node{ID: "cond", Type: domain.NodeTypeCondition, Config: map[string]any{
		"conditions": []any{
			map[string]any{"field": "input.age", "operator": "gte", "value": float64(18), "branch": "adult"},
		},
		"default_branch": "minor",
	}}
	exec, err := NewConditionExecutor(node.ID, node.Type)
	require.NoError(t, err)

	result := Run(context.Background(), node, exec, runCtx)
	require.Equal(t, domain.NodeStatusSuccess, result.Status)
	out := result.Output.(map[string]any)
	require.Equal(t, "minor", out["branch"])
	require.Nil(t, out["matched_condition"])
}

func TestTransformExecutor_CustomUppercase(t *testing.T) {
	runCtx := newTestContext(map[string]any{"msg": "hi"})
	inputNode := domain.Node{ID: "in", Type: domain.NodeTypeInput, Config: map[string]any{}}
	inExec, _ := NewInputExecutor(inputNode.ID, inputNode.Type)
	require.Equal(t, domain.NodeStatusSuccess, Run(context.Background(), inputNode, inExec, runCtx).Status)

	node := domain.Node{ID: "up", Type: domain.NodeTypeTransform, Config: map[string]any{
		"transform_type": "custom",
		"source_node":    "in",
		"expression":     `{"msg": upper(input["msg"]), "transformed": true}`,
	}}
	exec, err := NewTransformExecutor(node.ID, node.Type)
	require.NoError(t, err)

	result := Run(context.Background(), node, exec, runCtx)
	require.Equal(t, domain.NodeStatusSuccess, result.Status)
	require.Equal(t, map[string]interface{}{"msg": "HI", "transformed": true}, result.Output)
}

func TestTransformExecutor_Merge(t *testing.T) {
	runCtx := newTestContext(map[string]any{"x": float64(1)})
	runCtx.SetNodeOutput("a", map[string]any{"a": float64(1)})
	require.NoError(t, runCtx.SetNodeStatus("a", domain.NodeStatusRunning))
	require.NoError(t, runCtx.SetNodeStatus("a", domain.NodeStatusSuccess))
	runCtx.SetNodeOutput("b", map[string]any{"b": float64(2)})
	require.NoError(t, runCtx.SetNodeStatus("b", domain.NodeStatusRunning))
	require.NoError(t, runCtx.SetNodeStatus("b", domain.NodeStatusSuccess))

	node := domain.Node{ID: "merge", Type: domain.NodeTypeTransform, Config: map[string]any{
		"transform_type": "merge",
		"sources":        []any{"a", "b"},
	}}
	exec, err := NewTransformExecutor(node.ID, node.Type)
	require.NoError(t, err)

	result := Run(context.Background(), node, exec, runCtx)
	require.Equal(t, domain.NodeStatusSuccess, result.Status)
	require.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, result.Output)
}

func TestOutputExecutor_RawDefaultsToLastCompleted(t *testing.T) {
	runCtx := newTestContext(map[string]any{"msg": "hi"})
	runCtx.SetNodeOutput("up", map[string]any{"msg": "HI", "transformed": true})
	require.NoError(t, runCtx.SetNodeStatus("up", domain.NodeStatusRunning))
	require.NoError(t, runCtx.SetNodeStatus("up", domain.NodeStatusSuccess))

	node := domain.Node{ID: "out", Type: domain.NodeTypeOutput, Config: map[string]any{"format": "raw"}}
	exec, err := NewOutputExecutor(node.ID, node.Type)
	require.NoError(t, err)

	result := Run(context.Background(), node, exec, runCtx)
	require.Equal(t, domain.NodeStatusSuccess, result.Status)
	require.Equal(t, map[string]any{"msg": "HI", "transformed": true}, result.Output)
}

func TestRun_ValidationFailureMarksNodeFailed(t *testing.T) {
	runCtx := newTestContext(nil)
	node := domain.Node{ID: "cond", Type: domain.NodeTypeCondition, Config: map[string]any{}}
	exec, err := NewConditionExecutor(node.ID, node.Type)
	require.NoError(t, err)

	result := Run(context.Background(), node, exec, runCtx)
	require.Equal(t, domain.NodeStatusFailed, result.Status)
	status, _ := runCtx.NodeStatus("cond")
	require.Equal(t, domain.NodeStatusFailed, status)
}
