// Package engine builds, validates and schedules the DAG described by a
// domain.Definition (spec §4.3): adjacency + in-degree construction,
// DFS cycle rejection, and wave-barrier concurrent dispatch.
//
// Grounded on the teacher's internal/application/executor/graph.go
// (HasCycles/hasCyclesDFS, TopologicalSort, adjacency maps), adapted
// from uuid-keyed nodes to the spec's string node ids and simplified:
// no conditional-edge branching (the spec's condition node expresses
// branching through its own output, not through edge types), no
// fork/join edge kinds.
package engine

import (
	"fmt"

	"github.com/flowforge/dagflow/internal/domain"
)

// Graph is the built, validated adjacency view of a Definition.
type Graph struct {
	nodes      map[string]domain.Node
	order      []string // node ids in definition order, for deterministic iteration
	successors map[string][]string
	inDegree   map[string]int
}

// Build constructs the adjacency and in-degree maps and rejects
// malformed definitions: duplicate node ids, edges referencing unknown
// node ids, or any cycle (spec §4.3 "Validate").
func Build(def domain.Definition) (*Graph, error) {
	g := &Graph{
		nodes:      make(map[string]domain.Node, len(def.Nodes)),
		successors: make(map[string][]string, len(def.Nodes)),
		inDegree:   make(map[string]int, len(def.Nodes)),
	}

	for _, n := range def.Nodes {
		if _, dup := g.nodes[n.ID]; dup {
			return nil, domain.NewError(domain.ErrCodeValidation, fmt.Sprintf("duplicate node id %q", n.ID), nil)
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
		g.inDegree[n.ID] = 0
	}

	for _, e := range def.Edges {
		if _, ok := g.nodes[e.Source]; !ok {
			return nil, domain.NewError(domain.ErrCodeValidation, fmt.Sprintf("edge references unknown source node %q", e.Source), nil)
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return nil, domain.NewError(domain.ErrCodeValidation, fmt.Sprintf("edge references unknown target node %q", e.Target), nil)
		}
		// Self-loops are tolerated, not cycles (spec §3): a node can
		// never satisfy a dependency on its own completion, so folding
		// a self-edge into the adjacency/in-degree maps would either
		// deadlock the node (if it's its only predecessor) or wedge the
		// wave scheduler permanently (if it has others). Drop it as a
		// no-op instead of feeding it to the DFS.
		if e.Source == e.Target {
			continue
		}
		g.successors[e.Source] = append(g.successors[e.Source], e.Target)
		g.inDegree[e.Target]++
	}

	if g.hasCycle() {
		return nil, domain.NewError(domain.ErrCodeEngine, "circular dependency detected in workflow definition", nil)
	}

	return g, nil
}

// hasCycle runs DFS with a recursion-stack set, grounded on the
// teacher's hasCyclesDFS.
func (g *Graph) hasCycle() bool {
	visited := make(map[string]bool, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, next := range g.successors[id] {
			if onStack[next] {
				return true
			}
			if !visited[next] && visit(next) {
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] {
			if visit(id) {
				return true
			}
		}
	}
	return false
}

// ZeroInDegree returns the node ids with no remaining predecessor, in
// definition order, snapshotting the current in-degree map.
func (g *Graph) ZeroInDegree(inDegree map[string]int) []string {
	var ready []string
	for _, id := range g.order {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	return ready
}

// InitialInDegree returns a fresh copy of the graph's in-degree map, to
// be drained down by the scheduler as nodes complete.
func (g *Graph) InitialInDegree() map[string]int {
	out := make(map[string]int, len(g.inDegree))
	for k, v := range g.inDegree {
		out[k] = v
	}
	return out
}

func (g *Graph) Node(id string) (domain.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Graph) Successors(id string) []string {
	return g.successors[id]
}

func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

func (g *Graph) NodeIDs() []string {
	return g.order
}
