// Package callback posts best-effort node-completion notifications to an
// external BFF endpoint (spec §6's BFF_BASE_URL / BFF_CALLBACK_ENABLED
// config vars), grounded on the teacher's executor/callback.go
// HTTPCallbackProcessor. A callback failure never affects execution —
// callers only log the error.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NodeCompletion is the payload posted after a node finishes successfully.
type NodeCompletion struct {
	ExecutionID   string        `json:"execution_id"`
	WorkflowID    string        `json:"workflow_id"`
	NodeID        string        `json:"node_id"`
	NodeType      string        `json:"node_type"`
	Output        any           `json:"output"`
	ExecutionTime time.Duration `json:"execution_time_ms"`
	CompletedAt   time.Time     `json:"completed_at"`
}

// Notifier posts NodeCompletion payloads to a configured endpoint.
type Notifier interface {
	Notify(ctx context.Context, completion NodeCompletion) error
}

// HTTPNotifier POSTs the completion payload as JSON to a fixed base URL,
// appended with "/node-complete".
type HTTPNotifier struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPNotifier builds a Notifier targeting baseURL. Returns nil if
// baseURL is empty, signalling "no callback configured".
func NewHTTPNotifier(baseURL string, timeout time.Duration) *HTTPNotifier {
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPNotifier{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, completion NodeCompletion) error {
	payload, err := json.Marshal(completion)
	if err != nil {
		return fmt.Errorf("callback: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/node-complete", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("callback: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("callback: send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback: non-success status %d", resp.StatusCode)
	}
	return nil
}
