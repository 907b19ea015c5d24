package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/nodeexec"
)

// Config tunes the scheduler without changing its semantics. Grounded
// on the teacher's EngineConfig.MaxParallelNodes; unlike the teacher,
// there is no retry/circuit-breaker configuration here — spec §7 is
// explicit that the core never retries a failed node.
type Config struct {
	// MaxParallelNodes bounds how many nodes of one wave run at once.
	// Zero means unbounded (the whole wave dispatches concurrently,
	// matching spec §4.3 step 2 literally).
	MaxParallelNodes int

	// OnNodeComplete, if set, is invoked after every node that finishes
	// successfully (BFF_BASE_URL callback hook, spec §6). It runs on its
	// own goroutine and its outcome never affects the run, matching the
	// teacher's "callback errors don't affect workflow execution" rule.
	OnNodeComplete func(runCtx *domain.Context, node domain.Node, result domain.NodeResult)
}

// Engine builds, validates and runs a Definition against a Context,
// per the wave-barrier algorithm of spec §4.3.
type Engine struct {
	registry nodeexec.Registry
	config   Config
}

func NewEngine(registry nodeexec.Registry, config Config) *Engine {
	return &Engine{registry: registry, config: config}
}

// Execute runs def against runCtx to completion, honoring ctx
// cancellation and control's pause/resume gate at wave boundaries. It
// returns the run's terminal output (spec §4.3 "Terminal output") or
// the first node/engine error encountered.
func (e *Engine) Execute(ctx context.Context, def domain.Definition, runCtx *domain.Context, control *Control) (any, error) {
	graph, err := Build(def)
	if err != nil {
		return nil, err
	}

	inDegree := graph.InitialInDegree()
	ready := graph.ZeroInDegree(inDegree)

	if len(ready) == 0 && graph.NodeCount() > 0 {
		return nil, domain.NewError(domain.ErrCodeEngine, "no start nodes: every node has a predecessor", nil)
	}

	for len(ready) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewError(domain.ErrCodeCancellation, "execution stopped", err)
		}
		if control != nil {
			if err := control.WaitIfPaused(ctx); err != nil {
				return nil, domain.NewError(domain.ErrCodeCancellation, "execution stopped while paused", err)
			}
		}

		wave := ready
		ready = nil

		results := e.runWave(ctx, graph, wave, runCtx)

		var firstFailure error
		for _, res := range results {
			if res.Status != domain.NodeStatusSuccess {
				if firstFailure == nil {
					firstFailure = res.Err
					if firstFailure == nil {
						firstFailure = fmt.Errorf("%s", res.ErrorMessage)
					}
				}
				continue
			}
			for _, next := range graph.Successors(res.NodeID) {
				inDegree[next]--
				if inDegree[next] == 0 {
					ready = append(ready, next)
				}
			}
		}

		if firstFailure != nil {
			return nil, domain.NewError(domain.ErrCodeNodeExecution, "node failure aborted the run", firstFailure)
		}

		sort.Strings(ready) // deterministic order among independent successors (spec §8: unconstrained, but stable is friendlier for tests)
	}

	return e.terminalOutput(def, runCtx), nil
}

// runWave dispatches every member of wave concurrently (bounded by
// MaxParallelNodes if set) and awaits the whole wave as a barrier
// before returning (spec §4.3 steps 2-3).
func (e *Engine) runWave(ctx context.Context, graph *Graph, wave []string, runCtx *domain.Context) []domain.NodeResult {
	var sem chan struct{}
	if e.config.MaxParallelNodes > 0 {
		sem = make(chan struct{}, e.config.MaxParallelNodes)
	}

	results := make([]domain.NodeResult, len(wave))
	var wg sync.WaitGroup
	for i, nodeID := range wave {
		node, _ := graph.Node(nodeID)
		wg.Add(1)
		go func(i int, node domain.Node) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			results[i] = e.runNode(ctx, node, runCtx)
		}(i, node)
	}
	wg.Wait()
	return results
}

func (e *Engine) runNode(ctx context.Context, node domain.Node, runCtx *domain.Context) domain.NodeResult {
	executor, err := e.registry.Build(node)
	if err != nil {
		runCtx.AppendLog(domain.LogLevelError, node.ID, err.Error(), nil)
		_ = runCtx.SetNodeStatus(node.ID, domain.NodeStatusFailed)
		return domain.NodeResult{NodeID: node.ID, Status: domain.NodeStatusFailed, ErrorMessage: err.Error(), Err: err}
	}
	result := nodeexec.Run(ctx, node, executor, runCtx)
	if result.Status == domain.NodeStatusSuccess && e.config.OnNodeComplete != nil {
		go e.config.OnNodeComplete(runCtx, node, result)
	}
	return result
}

// terminalOutput implements spec §4.3 "Terminal output": the single
// output-type node's result if the definition has one, otherwise a map
// of every executed node's output keyed by id.
func (e *Engine) terminalOutput(def domain.Definition, runCtx *domain.Context) any {
	for _, n := range def.Nodes {
		if n.Type == domain.NodeTypeOutput {
			if output, ok := runCtx.NodeOutput(n.ID); ok {
				return output
			}
		}
	}
	return runCtx.NodeOutputs()
}
