package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/engine"
	"github.com/flowforge/dagflow/internal/llmclient"
	"github.com/flowforge/dagflow/internal/nodeexec"
)

// slowClient honors cancellation: it waits out its delay or returns
// early if ctx is done, matching spec §5 "nodes that honor
// cancellation... terminate promptly".
type slowClient struct{ delay time.Duration }

func (c slowClient) Generate(ctx context.Context, model, prompt string, stream bool, params llmclient.Params) (string, error) {
	select {
	case <-time.After(c.delay):
		return "done", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newTestManager(client llmclient.Client) *Manager {
	eng := engine.NewEngine(nodeexec.DefaultRegistry(client), engine.Config{})
	return New(eng, nil)
}

func TestManager_LinearRunCompletes(t *testing.T) {
	m := newTestManager(nil)
	def := domain.Definition{
		Nodes: []domain.Node{
			{ID: "in", Type: domain.NodeTypeInput, Config: map[string]any{}},
			{ID: "out", Type: domain.NodeTypeOutput, Config: map[string]any{"source_node": "in", "format": "raw"}},
		},
		Edges: []domain.Edge{{Source: "in", Target: "out"}},
	}
	initial, err := m.Submit("exec-1", "wf-1", def, map[string]any{"msg": "hi"})
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusPending, initial.Status)

	require.Eventually(t, func() bool {
		view, _ := m.GetStatus("exec-1")
		return view.Status.IsTerminal()
	}, time.Second, time.Millisecond)

	view, ok := m.GetStatus("exec-1")
	require.True(t, ok)
	require.Equal(t, domain.RunStatusCompleted, view.Status)
	require.Equal(t, map[string]any{"msg": "hi"}, view.Output)
}

func TestManager_StopMidRun(t *testing.T) {
	m := newTestManager(slowClient{delay: 500 * time.Millisecond})
	def := domain.Definition{
		Nodes: []domain.Node{
			{ID: "slow", Type: domain.NodeTypeLLM, Config: map[string]any{"model": "m", "prompt": "p"}},
		},
	}
	_, err := m.Submit("exec-2", "wf-1", def, nil)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.True(t, m.Stop("exec-2"))

	view, ok := m.GetStatus("exec-2")
	require.True(t, ok)
	require.Equal(t, domain.RunStatusStopped, view.Status)
	require.NotNil(t, view.CompletedAt)
}

func TestManager_UnknownExecution(t *testing.T) {
	m := newTestManager(nil)
	_, ok := m.GetStatus("missing")
	require.False(t, ok)
	require.False(t, m.Stop("missing"))
	require.False(t, m.Pause("missing"))
	require.False(t, m.Resume("missing"))
}

// fakeDefinitionStore is an in-process stand-in for storage.BunStore,
// used to verify Submit wires persistence without requiring Postgres.
type fakeDefinitionStore struct {
	mu    sync.Mutex
	saved map[string]domain.Definition
	err   error
}

func (f *fakeDefinitionStore) Save(_ context.Context, workflowID string, def domain.Definition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = map[string]domain.Definition{}
	}
	f.saved[workflowID] = def
	return nil
}

func TestManager_SubmitPersistsDefinitionWhenStoreWired(t *testing.T) {
	m := newTestManager(nil)
	store := &fakeDefinitionStore{}
	m.SetDefinitionStore(store)

	def := domain.Definition{
		Nodes: []domain.Node{{ID: "in", Type: domain.NodeTypeInput, Config: map[string]any{}}},
	}
	_, err := m.Submit("exec-store", "wf-store", def, nil)
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Contains(t, store.saved, "wf-store")
}

func TestManager_SubmitFailsWhenStorePersistenceFails(t *testing.T) {
	m := newTestManager(nil)
	store := &fakeDefinitionStore{err: errors.New("connection refused")}
	m.SetDefinitionStore(store)

	def := domain.Definition{
		Nodes: []domain.Node{{ID: "in", Type: domain.NodeTypeInput, Config: map[string]any{}}},
	}
	_, err := m.Submit("exec-store-fail", "wf-store-fail", def, nil)
	require.Error(t, err)
}

func TestManager_PauseOnlyValidFromRunning(t *testing.T) {
	m := newTestManager(slowClient{delay: 200 * time.Millisecond})
	def := domain.Definition{
		Nodes: []domain.Node{{ID: "slow", Type: domain.NodeTypeLLM, Config: map[string]any{"model": "m", "prompt": "p"}}},
	}
	_, err := m.Submit("exec-3", "wf-1", def, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		view, _ := m.GetStatus("exec-3")
		return view.Status == domain.RunStatusRunning
	}, time.Second, time.Millisecond)

	require.True(t, m.Pause("exec-3"))
	require.False(t, m.Pause("exec-3")) // already paused, not running
	require.True(t, m.Resume("exec-3"))
	require.False(t, m.Resume("exec-3")) // already running, not paused

	m.Stop("exec-3")
}
