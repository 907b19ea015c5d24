// Package llmclient implements the narrow external-model contract of
// spec §6 consumed by the llm node, with two concrete backends: an
// Ollama HTTP client and an OpenAI-compatible adapter.
package llmclient

import "context"

// Params carries the optional generation parameters named in spec
// §4.2.5.
type Params struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
	TopK        *int
}

// Client is the contract the llm node depends on:
// generate(model, prompt, stream, params...) -> string. Streaming
// backends concatenate their chunks internally; the core never
// surfaces partial output (spec §1 Non-goals).
type Client interface {
	Generate(ctx context.Context, model, prompt string, stream bool, params Params) (string, error)
}
