// Package nodeexec implements the node-executor template of spec §4.2:
// a shared lifecycle (validate -> resolve -> execute -> record) wrapping
// five typed variants (input, llm, condition, transform, output).
package nodeexec

import (
	"context"
	"time"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/resolver"
)

// Executor is the narrow per-type contract: validate a node's raw
// config, then execute it against already-resolved config and the run's
// Context. Implementations never touch node statuses or write output
// directly — the Run template is the only caller and the only place
// that does so (spec §4.2).
type Executor interface {
	Validate(config map[string]any) error
	Execute(ctx context.Context, resolved map[string]any, runCtx *domain.Context) (any, error)
}

// Factory builds an Executor for a given node id/type. The engine is
// constructed with a node_type -> Factory registry (spec §4.3); unknown
// types fail the run at dispatch time.
type Factory func(nodeID string, nodeType domain.NodeType) (Executor, error)

// Run applies the shared lifecycle template around executor for node,
// against runCtx. It is the single point where timing, status and
// logging are recorded (spec §4.2 steps 1-5).
func Run(ctx context.Context, node domain.Node, executor Executor, runCtx *domain.Context) domain.NodeResult {
	start := time.Now()

	if err := runCtx.SetNodeStatus(node.ID, domain.NodeStatusRunning); err != nil {
		return domain.NodeResult{NodeID: node.ID, Status: domain.NodeStatusFailed, ErrorMessage: err.Error(), Err: err}
	}
	runCtx.AppendLog(domain.LogLevelInfo, node.ID, "node started", nil)

	if err := executor.Validate(node.Config); err != nil {
		return fail(runCtx, node.ID, start, err)
	}

	resolved := resolver.ResolveConfig(node.Config, runCtx.Variables())

	output, err := executor.Execute(ctx, resolved, runCtx)
	elapsed := time.Since(start)
	if err != nil {
		return fail(runCtx, node.ID, start, err)
	}

	runCtx.SetNodeOutput(node.ID, output)
	if serr := runCtx.SetNodeStatus(node.ID, domain.NodeStatusSuccess); serr != nil {
		return fail(runCtx, node.ID, start, serr)
	}
	runCtx.AppendLog(domain.LogLevelInfo, node.ID, "node succeeded", nil)

	return domain.NodeResult{NodeID: node.ID, Status: domain.NodeStatusSuccess, Output: output, ExecutionTime: elapsed}
}

func fail(runCtx *domain.Context, nodeID string, start time.Time, err error) domain.NodeResult {
	runCtx.AppendLog(domain.LogLevelError, nodeID, err.Error(), nil)
	_ = runCtx.SetNodeStatus(nodeID, domain.NodeStatusFailed)
	return domain.NodeResult{
		NodeID:        nodeID,
		Status:        domain.NodeStatusFailed,
		ErrorMessage:  err.Error(),
		Err:           err,
		ExecutionTime: time.Since(start),
	}
}
