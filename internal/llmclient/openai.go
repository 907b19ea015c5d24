package llmclient

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient adapts an OpenAI-compatible chat-completions backend to
// the Client contract, grounded on the teacher's direct dependency on
// github.com/sashabaranov/go-openai (internal/application/executor's
// OpenAICompletionConfig). Selected instead of OllamaClient when
// OPENAI_API_KEY is set.
type OpenAIClient struct {
	inner *openai.Client
}

func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{inner: openai.NewClientWithConfig(cfg)}
}

func (c *OpenAIClient) Generate(ctx context.Context, model, prompt string, stream bool, params Params) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = float32(*params.Temperature)
	}
	if params.MaxTokens != nil {
		req.MaxTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = float32(*params.TopP)
	}

	if !stream {
		resp, err := c.inner.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("openai: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("openai: empty response")
		}
		return resp.Choices[0].Message.Content, nil
	}

	req.Stream = true
	streamResp, err := c.inner.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer streamResp.Close()

	var out string
	for {
		chunk, err := streamResp.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("openai: stream: %w", err)
		}
		if len(chunk.Choices) > 0 {
			out += chunk.Choices[0].Delta.Content
		}
	}
	return out, nil
}
