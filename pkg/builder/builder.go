// Package builder is a fluent SDK for constructing domain.Definition
// values in Go, grounded on the teacher's pkg/builder fluent workflow
// builder, adapted to the spec's plain Node/Edge/Definition shape
// instead of the teacher's domain aggregate.
package builder

import "github.com/flowforge/dagflow/internal/domain"

// Builder accumulates nodes and edges for one Definition.
type Builder struct {
	nodes []domain.Node
	edges []domain.Edge
}

func New() *Builder {
	return &Builder{}
}

// Node appends a node of the given id/type with config.
func (b *Builder) Node(id string, nodeType domain.NodeType, config map[string]any) *Builder {
	if config == nil {
		config = map[string]any{}
	}
	b.nodes = append(b.nodes, domain.Node{ID: id, Type: nodeType, Config: config})
	return b
}

func (b *Builder) Input(id string, config map[string]any) *Builder {
	return b.Node(id, domain.NodeTypeInput, config)
}

func (b *Builder) LLM(id string, config map[string]any) *Builder {
	return b.Node(id, domain.NodeTypeLLM, config)
}

func (b *Builder) Condition(id string, config map[string]any) *Builder {
	return b.Node(id, domain.NodeTypeCondition, config)
}

func (b *Builder) Transform(id string, config map[string]any) *Builder {
	return b.Node(id, domain.NodeTypeTransform, config)
}

func (b *Builder) Output(id string, config map[string]any) *Builder {
	return b.Node(id, domain.NodeTypeOutput, config)
}

// Edge appends an edge from source to target. Self-loops and duplicate
// edges are tolerated (spec §3); only Build's cycle check rejects a
// graph.
func (b *Builder) Edge(source, target string) *Builder {
	b.edges = append(b.edges, domain.Edge{Source: source, Target: target})
	return b
}

// Build returns the accumulated Definition. It does not itself validate
// the graph — that is the engine's job at submission/execution time.
func (b *Builder) Build() domain.Definition {
	return domain.Definition{Nodes: b.nodes, Edges: b.edges}
}
