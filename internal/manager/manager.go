// Package manager implements the Execution Manager of spec §4.4: it
// owns running executions, exposes submit/get_status/get_logs/
// stop/pause/resume, and drives the engine in the background.
//
// Grounded on the teacher's ObserverManager fan-out shape
// (internal/infrastructure/monitoring/observer.go) redesigned per
// spec §9 into a bounded queue, and on the background-goroutine-per-
// execution usage implicit in the teacher's
// WorkflowEngine.ExecuteWorkflow call sites.
package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/engine"
	"github.com/flowforge/dagflow/internal/monitoring"
)

// DefinitionStore persists workflow Definitions keyed by workflow id
// (SPEC_FULL §2 row 11). Implemented by internal/storage.BunStore;
// optional — a Manager with no store skips persistence entirely.
type DefinitionStore interface {
	Save(ctx context.Context, workflowID string, def domain.Definition) error
}

// Manager owns every execution's record, indexed by execution id.
type Manager struct {
	mu      sync.RWMutex
	records map[string]*record

	engine *engine.Engine
	hub    *monitoring.Hub
	store  DefinitionStore
}

func New(eng *engine.Engine, hub *monitoring.Hub) *Manager {
	if hub == nil {
		hub = monitoring.NewHub(0)
	}
	return &Manager{records: make(map[string]*record), engine: eng, hub: hub}
}

// SetDefinitionStore wires the optional Postgres-backed definition
// store. A nil store (the default) disables persistence.
func (m *Manager) SetDefinitionStore(store DefinitionStore) {
	m.store = store
}

// Submit validates the definition's shape, persists it (if a
// DefinitionStore is wired), creates a pending record, and spawns the
// background task that runs it (spec §4.4 "submit").
func (m *Manager) Submit(executionID, workflowID string, def domain.Definition, inputData map[string]any) (StatusView, error) {
	if _, err := engine.Build(def); err != nil {
		return StatusView{}, err
	}

	if m.store != nil && workflowID != "" {
		if err := m.store.Save(context.Background(), workflowID, def); err != nil {
			return StatusView{}, fmt.Errorf("manager: persist definition: %w", err)
		}
	}

	observer := monitoring.NewQueueObserver(256)
	runCtx := domain.NewContext(executionID, workflowID, inputData, observer)
	runCtx.SetStatus(domain.RunStatusPending)

	ctx, cancel := context.WithCancel(context.Background())
	rec := &record{
		executionID: executionID,
		workflowID:  workflowID,
		status:      domain.RunStatusPending,
		inputData:   inputData,
		totalNodes:  len(def.Nodes),
		runCtx:      runCtx,
		control:     engine.NewControl(),
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	m.mu.Lock()
	m.records[executionID] = rec
	m.mu.Unlock()

	finished := make(chan struct{})
	go m.drain(executionID, observer, finished)
	go m.run(ctx, rec, def, finished)

	return rec.snapshot(), nil
}

func (m *Manager) run(ctx context.Context, rec *record, def domain.Definition, finished chan struct{}) {
	defer close(rec.done)
	defer close(finished)

	rec.setStatus(domain.RunStatusRunning)
	rec.runCtx.SetStatus(domain.RunStatusRunning)

	output, err := m.engine.Execute(ctx, def, rec.runCtx, rec.control)
	if err != nil {
		// A node that honors cancellation fails with ctx's error, which the
		// engine reports as a node failure; a cancelled ctx still means stop.
		if derr, ok := err.(*domain.Error); (ok && derr.Code == domain.ErrCodeCancellation) || ctx.Err() != nil {
			rec.setStatus(domain.RunStatusStopped)
			rec.runCtx.SetStatus(domain.RunStatusStopped)
			return
		}
		rec.setError(err.Error())
		rec.setStatus(domain.RunStatusFailed)
		rec.runCtx.SetStatus(domain.RunStatusFailed)
		return
	}

	rec.setOutput(output)
	rec.runCtx.SetOutput(output)
	rec.setStatus(domain.RunStatusCompleted)
	rec.runCtx.SetStatus(domain.RunStatusCompleted)
}

// drain relays events from one execution's QueueObserver into the
// Manager's record (current_node/progress) and the live-stream Hub,
// until the run finishes and the channel is caught up.
func (m *Manager) drain(executionID string, observer *monitoring.QueueObserver, finished chan struct{}) {
	rec, ok := m.get(executionID)
	if !ok {
		return
	}
	for {
		select {
		case ev := <-observer.Events():
			if ev.Kind == domain.EventNodeStatus {
				rec.noteNodeStatus(ev.NodeID, ev.Status)
			}
			m.hub.Publish(executionID, ev)
		case <-finished:
			m.drainRemaining(executionID, rec, observer)
			return
		}
	}
}

func (m *Manager) drainRemaining(executionID string, rec *record, observer *monitoring.QueueObserver) {
	for {
		select {
		case ev := <-observer.Events():
			if ev.Kind == domain.EventNodeStatus {
				rec.noteNodeStatus(ev.NodeID, ev.Status)
			}
			m.hub.Publish(executionID, ev)
		default:
			return
		}
	}
}

func (m *Manager) get(executionID string) (*record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[executionID]
	return rec, ok
}

// GetStatus returns a snapshot of the execution's record.
func (m *Manager) GetStatus(executionID string) (StatusView, bool) {
	rec, ok := m.get(executionID)
	if !ok {
		return StatusView{}, false
	}
	return rec.snapshot(), true
}

// GetLogs returns the execution's logs, optionally filtered by level
// and tail-limited.
func (m *Manager) GetLogs(executionID string, level domain.LogLevel, limit int) ([]domain.LogEntry, bool) {
	rec, ok := m.get(executionID)
	if !ok {
		return nil, false
	}
	return rec.runCtx.Logs(level, limit), true
}

// Stop cancels the background task and awaits its termination; the
// background task records the run as stopped. Idempotent; returns false
// if the execution is unknown (spec §4.4 "stop").
func (m *Manager) Stop(executionID string) bool {
	rec, ok := m.get(executionID)
	if !ok {
		return false
	}
	rec.cancel()
	<-rec.done
	return true
}

// Pause is only valid from running (spec §4.4 "pause").
func (m *Manager) Pause(executionID string) bool {
	rec, ok := m.get(executionID)
	if !ok || rec.getStatus() != domain.RunStatusRunning {
		return false
	}
	rec.control.Pause()
	rec.setStatus(domain.RunStatusPaused)
	return true
}

// Resume is only valid from paused (spec §4.4 "resume").
func (m *Manager) Resume(executionID string) bool {
	rec, ok := m.get(executionID)
	if !ok || rec.getStatus() != domain.RunStatusPaused {
		return false
	}
	rec.control.Resume()
	rec.setStatus(domain.RunStatusRunning)
	return true
}

// Subscribe exposes the live observer stream for an execution id, used
// by the websocket transport.
func (m *Manager) Subscribe(executionID string) (<-chan domain.Event, func(), bool) {
	if _, ok := m.get(executionID); !ok {
		return nil, nil, false
	}
	ch, unsubscribe, ok := m.hub.Subscribe(executionID)
	return ch, unsubscribe, ok
}
