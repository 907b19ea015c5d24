package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/dagflow/internal/llmclient"
)

// slowClient delays its response long enough for a test to subscribe to
// the live stream before the run completes.
type slowClient struct{ delay time.Duration }

func (c slowClient) Generate(ctx context.Context, model, prompt string, stream bool, params llmclient.Params) (string, error) {
	select {
	case <-time.After(c.delay):
		return "ok", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestHandleStream_UnknownExecutionRejected(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/execute/does-not-exist/stream"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	if resp != nil {
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
}

func TestHandleStream_DeliversNodeStatusEvents(t *testing.T) {
	srv := newTestServerWithClient(slowClient{delay: 300 * time.Millisecond})
	defer srv.Close()

	body, err := json.Marshal(map[string]any{
		"execution_id": "exec-stream",
		"workflow_id":  "wf-1",
		"definition": map[string]any{
			"nodes": []map[string]any{
				{"id": "in", "type": "input", "data": map[string]any{"config": map[string]any{}}},
				{"id": "think", "type": "llm", "data": map[string]any{"config": map[string]any{"model": "test-model", "prompt": "hi"}}},
				{"id": "out", "type": "output", "data": map[string]any{"config": map[string]any{}}},
			},
			"edges": []map[string]any{
				{"source": "in", "target": "think"},
				{"source": "think", "target": "out"},
			},
		},
		"input_data": map[string]any{"msg": "hi"},
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/v1/execute", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/execute/exec-stream/stream"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = ws.ReadMessage()
	require.NoError(t, err)
}
