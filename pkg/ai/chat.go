package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatMessage is one turn in a tutor conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResult carries the upstream reply plus opaque usage metadata.
type ChatResult struct {
	Reply string
	Usage map[string]any
}

// ChatClientConfig configures the completion endpoint.
type ChatClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ChatClient calls an OpenAI-compatible chat completion API. Request and
// response bodies are treated as opaque JSON beyond the fields read here.
type ChatClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewChatClient constructs a chat completion client.
func NewChatClient(cfg ChatClientConfig) *ChatClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &ChatClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Usage map[string]any `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the conversation and returns the assistant reply.
func (c *ChatClient) Complete(ctx context.Context, messages []ChatMessage) (*ChatResult, error) {
	payload, err := json.Marshal(chatCompletionRequest{Model: c.model, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call chat completion: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if parsed.Error != nil {
			return nil, fmt.Errorf("chat completion %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return nil, fmt.Errorf("chat completion returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return &ChatResult{Reply: parsed.Choices[0].Message.Content, Usage: parsed.Usage}, nil
}
