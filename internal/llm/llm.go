package llm

import (
	"context"
	"fmt"
)

// Provider is a chat-capable LLM endpoint. Each Complete call is a fresh,
// stateless single-turn conversation.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Pinger is implemented by providers that can verify auth and connectivity
// with a lightweight call.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries per-provider settings resolved from config and flags.
type Options struct {
	Model   string
	BaseURL string

	// Ollama sampling knobs.
	Temperature float64
	Seed        int
	NumCtx      int
}

// DefaultModel returns the model a provider falls back to when neither
// flags nor config name one. Archived responses are keyed by provider and
// model, so callers must record the resolved name, never "".
func DefaultModel(name string) string {
	switch name {
	case "openai":
		return openAIDefaultModel
	case "gemini":
		return geminiDefaultModel
	case "ollama":
		return ollamaDefaultModel
	}
	return ""
}

// New returns a provider by name: openai, gemini, or ollama.
func New(ctx context.Context, name string, opts Options) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAIClient(opts.BaseURL, opts.Model), nil
	case "gemini":
		return NewGeminiClient(ctx, opts.Model)
	case "ollama":
		return NewOllamaClient(opts), nil
	}
	return nil, fmt.Errorf("unknown provider %q (want openai, gemini, or ollama)", name)
}
