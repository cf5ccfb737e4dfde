package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ollamaDefaultBaseURL = "http://localhost:11434"
	ollamaDefaultModel   = "llama3"
)

// OllamaClient talks to a locally running Ollama server via /api/chat,
// one fresh single-turn chat per call.
type OllamaClient struct {
	BaseURL     string
	Model       string
	Temperature float64
	Seed        int
	NumCtx      int
	HTTPClient  *http.Client
}

func NewOllamaClient(opts Options) *OllamaClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = ollamaDefaultModel
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.3
	}
	seed := opts.Seed
	if seed == 0 {
		seed = 42
	}
	numCtx := opts.NumCtx
	if numCtx == 0 {
		numCtx = 8192
	}
	return &OllamaClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Model:       model,
		Temperature: temperature,
		Seed:        seed,
		NumCtx:      numCtx,
		HTTPClient:  &http.Client{Timeout: 3 * time.Minute},
	}
}

func (c *OllamaClient) Name() string { return "ollama" }

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error"`
}

func (c *OllamaClient) Complete(ctx context.Context, system, user string) (string, error) {
	var messages []ollamaMessage
	if system != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: system})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: user})

	data, err := json.Marshal(ollamaChatRequest{
		Model:    c.Model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": c.Temperature,
			"seed":        c.Seed,
			"num_ctx":     c.NumCtx,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var res ollamaChatResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if res.Error != "" {
		return "", fmt.Errorf("API error: %s", res.Error)
	}
	return strings.TrimSpace(res.Message.Content), nil
}

// Ping checks that the Ollama server answers its tags endpoint.
func (c *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tags endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
