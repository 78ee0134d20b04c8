package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Completer abstracts the external language-model chat capability. Callers
// provide a system instruction and user content; implementations return the
// completion text or an error. The RewriteService treats every error the
// same way, so implementations do not retry.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts CompleteOptions) (string, error)
}

// CompleteOptions carries per-call sampling parameters
type CompleteOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

var ErrEmptyCompletion = errors.New("model returned empty completion")

// OllamaClient talks to a local Ollama server over its chat API
type OllamaClient struct {
	url    string
	model  string
	client *http.Client
}

// NewOllamaClient creates a client for the given chat endpoint and model
func NewOllamaClient(url, model string) *OllamaClient {
	if url == "" {
		url = "http://127.0.0.1:11434/api/chat"
	}
	return &OllamaClient{
		url:    url,
		model:  model,
		client: &http.Client{},
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ollamaMessage        `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// Complete sends a two-message chat request and returns the assistant text.
// The caller's context carries the timeout.
func (c *OllamaClient) Complete(ctx context.Context, system, user string, opts CompleteOptions) (string, error) {
	options := map[string]interface{}{
		"temperature": opts.Temperature,
	}
	if opts.TopP > 0 {
		options["top_p"] = opts.TopP
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}

	reqBody := ollamaChatRequest{
		Model: c.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  false,
		Options: options,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error: %d - %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Error != "" {
		return "", fmt.Errorf("ollama API error: %s", apiResp.Error)
	}

	out := strings.TrimSpace(apiResp.Message.Content)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

// GeminiCompleter implements Completer against the Gemini API
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter creates a Gemini-backed completer
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

// Complete generates a single completion with the given system instruction
func (c *GeminiCompleter) Complete(ctx context.Context, system, user string, opts CompleteOptions) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	m.SetTemperature(float32(opts.Temperature))
	if opts.TopP > 0 {
		m.SetTopP(float32(opts.TopP))
	}
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}

	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

// Close releases the underlying Gemini client
func (c *GeminiCompleter) Close() error {
	return c.client.Close()
}
