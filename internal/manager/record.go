package manager

import (
	"context"
	"sync"
	"time"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/engine"
)

// record is the Manager's internal per-execution bookkeeping (spec
// §4.4's `record` shape), separate from domain.Context: status lives
// here, once, as the source of truth; the Context's own status is a
// mirror used only for log/observer purposes (§9 "Run-status
// derivation").
type record struct {
	mu sync.RWMutex

	executionID string
	workflowID  string

	status       domain.RunStatus
	inputData    map[string]any
	outputData   any
	errorMessage string
	startedAt    *time.Time
	completedAt  *time.Time
	currentNode  string
	progress     float64

	totalNodes int

	runCtx  *domain.Context
	control *engine.Control
	cancel  context.CancelFunc
	done    chan struct{}
}

// StatusView is the read-only snapshot returned by GetStatus.
type StatusView struct {
	ExecutionID string           `json:"execution_id"`
	WorkflowID  string           `json:"workflow_id"`
	Status      domain.RunStatus `json:"status"`
	CurrentNode string           `json:"current_node,omitempty"`
	Progress    float64          `json:"progress"`
	Message     string           `json:"message,omitempty"`
	Output      any              `json:"output,omitempty"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

func (r *record) snapshot() StatusView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return StatusView{
		ExecutionID: r.executionID,
		WorkflowID:  r.workflowID,
		Status:      r.status,
		CurrentNode: r.currentNode,
		Progress:    r.progress,
		Message:     r.errorMessage,
		Output:      r.outputData,
		StartedAt:   r.startedAt,
		CompletedAt: r.completedAt,
	}
}

func (r *record) setStatus(s domain.RunStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = s
	now := time.Now().UTC()
	switch s {
	case domain.RunStatusRunning:
		if r.startedAt == nil {
			r.startedAt = &now
		}
	default:
		if s.IsTerminal() && r.completedAt == nil {
			r.completedAt = &now
		}
	}
}

func (r *record) getStatus() domain.RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func (r *record) setOutput(output any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputData = output
}

func (r *record) setError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorMessage = message
}

func (r *record) noteNodeStatus(nodeID string, status domain.NodeStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status == domain.NodeStatusRunning {
		r.currentNode = nodeID
	}
	if status == domain.NodeStatusSuccess || status == domain.NodeStatusFailed || status == domain.NodeStatusSkipped {
		if r.totalNodes > 0 {
			done := 0
			for _, s := range r.runCtx.NodeStatuses() {
				if s == domain.NodeStatusSuccess || s == domain.NodeStatusFailed || s == domain.NodeStatusSkipped {
					done++
				}
			}
			r.progress = float64(done) / float64(r.totalNodes)
		}
	}
}
