package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/engine"
	"github.com/flowforge/dagflow/internal/httpapi"
	"github.com/flowforge/dagflow/internal/llmclient"
	"github.com/flowforge/dagflow/internal/logging"
	"github.com/flowforge/dagflow/internal/manager"
	"github.com/flowforge/dagflow/internal/monitoring"
	"github.com/flowforge/dagflow/internal/nodeexec"
)

func newTestServer() *httptest.Server {
	return newTestServerWithClient(nil)
}

func newTestServerWithClient(client llmclient.Client) *httptest.Server {
	registry := nodeexec.DefaultRegistry(client)
	eng := engine.NewEngine(registry, engine.Config{})
	mgr := manager.New(eng, monitoring.NewHub(0))
	logger := logging.Setup("error", false)
	return httptest.NewServer(httpapi.NewServer(mgr, logger))
}

func TestHandleSubmit_AndStatus(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	body, err := json.Marshal(map[string]any{
		"execution_id": "exec-1",
		"workflow_id":  "wf-1",
		"definition": domain.WireDefinition{
			Nodes: []domain.WireNode{
				{ID: "in", Type: "input", Data: domain.WireNodeData{Config: map[string]any{}}},
				{ID: "out", Type: "output", Data: domain.WireNodeData{Config: map[string]any{}}},
			},
			Edges: []domain.WireEdge{{Source: "in", Target: "out"}},
		},
		"input_data": map[string]any{"msg": "hi"},
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/v1/execute", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var view manager.StatusView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	require.Equal(t, "exec-1", view.ExecutionID)

	statusResp, err := http.Get(srv.URL + "/api/v1/execute/exec-1/status")
	require.NoError(t, err)
	defer statusResp.Body.Close()
	require.Equal(t, http.StatusOK, statusResp.StatusCode)
}

func TestHandleStatus_UnknownExecution(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/execute/does-not-exist/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "unknown execution", body["detail"])
}

func TestHandleSubmit_MalformedBody(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/execute", "application/json", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlePauseResume_GuardsAgainstWrongState(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/execute/unknown/pause", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleHealthAndBanner(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	healthResp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer healthResp.Body.Close()
	require.Equal(t, http.StatusOK, healthResp.StatusCode)

	bannerResp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer bannerResp.Body.Close()
	require.Equal(t, http.StatusOK, bannerResp.StatusCode)
}
