package nodeexec

import (
	"fmt"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/llmclient"
)

// Registry maps node_type to the Factory that builds its Executor,
// grounded on the teacher engine's node_type -> Factory registration
// (spec §4.3 "Executor registry").
type Registry map[domain.NodeType]Factory

// DefaultRegistry wires the five built-in node types. client backs the
// llm node; it may be nil in tests that never reach an llm node.
func DefaultRegistry(client llmclient.Client) Registry {
	return Registry{
		domain.NodeTypeInput:     NewInputExecutor,
		domain.NodeTypeCondition: NewConditionExecutor,
		domain.NodeTypeTransform: NewTransformExecutor,
		domain.NodeTypeOutput:    NewOutputExecutor,
		domain.NodeTypeLLM:       NewLLMExecutorFactory(client),
	}
}

// Build constructs an Executor for node, failing if node_type is
// unregistered (spec §4.3: "Unknown types fail the run at dispatch
// time").
func (r Registry) Build(node domain.Node) (Executor, error) {
	factory, ok := r[node.Type]
	if !ok {
		return nil, domain.NewNodeError(domain.ErrCodeEngine, node.ID, fmt.Sprintf("unknown node type %q", node.Type), nil)
	}
	return factory(node.ID, node.Type)
}
