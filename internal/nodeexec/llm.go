package nodeexec

import (
	"context"
	"fmt"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/llmclient"
	"github.com/flowforge/dagflow/internal/resolver"
)

// LLMExecutor implements the llm node of spec §4.2.5.
type LLMExecutor struct {
	client llmclient.Client
}

// NewLLMExecutorFactory closes over a shared Client so the engine's
// node_type -> Factory registry can construct one LLMExecutor per node
// without re-dialing for every node.
func NewLLMExecutorFactory(client llmclient.Client) Factory {
	return func(nodeID string, nodeType domain.NodeType) (Executor, error) {
		return &LLMExecutor{client: client}, nil
	}
}

func (e *LLMExecutor) Validate(config map[string]any) error {
	if model, _ := config["model"].(string); model == "" {
		return fmt.Errorf("llm node: model is required")
	}
	if prompt, _ := config["prompt"].(string); prompt == "" {
		return fmt.Errorf("llm node: prompt is required")
	}
	if t, ok := config["temperature"]; ok {
		f, _ := toFloat(t)
		if f < 0 || f > 2 {
			return fmt.Errorf("llm node: temperature must be within [0, 2]")
		}
	}
	if mt, ok := config["max_tokens"]; ok {
		f, _ := toFloat(mt)
		if f <= 0 {
			return fmt.Errorf("llm node: max_tokens must be > 0")
		}
	}
	return nil
}

func (e *LLMExecutor) Execute(ctx context.Context, resolved map[string]any, runCtx *domain.Context) (any, error) {
	model, _ := resolved["model"].(string)
	promptTmpl, _ := resolved["prompt"].(string)
	prompt := resolver.Resolve(promptTmpl, runCtx.Variables())
	stream, _ := resolved["stream"].(bool)

	var params llmclient.Params
	if v, ok := resolved["temperature"]; ok {
		if f, ok := toFloat(v); ok {
			params.Temperature = &f
		}
	}
	if v, ok := resolved["max_tokens"]; ok {
		if f, ok := toFloat(v); ok {
			n := int(f)
			params.MaxTokens = &n
		}
	}
	if v, ok := resolved["top_p"]; ok {
		if f, ok := toFloat(v); ok {
			params.TopP = &f
		}
	}
	if v, ok := resolved["top_k"]; ok {
		if f, ok := toFloat(v); ok {
			n := int(f)
			params.TopK = &n
		}
	}

	if e.client == nil {
		return nil, fmt.Errorf("llm node: no model client configured")
	}

	text, err := e.client.Generate(ctx, model, prompt, stream, params)
	if err != nil {
		return nil, fmt.Errorf("llm node: %w", err)
	}
	return text, nil
}
