package client

import (
	"context"
	"fmt"
	"strings"
)

// ReasoningClient talks to an OpenAI-compatible chat completions endpoint
type ReasoningClient struct {
	*baseClient
	apiKey string
	model  string
}

// NewReasoningClient creates a reasoning client. An empty key leaves it unconfigured.
func NewReasoningClient(baseURL, apiKey, model string, opts Options) *ReasoningClient {
	return &ReasoningClient{
		baseClient: newBaseClient("reasoning", baseURL, opts),
		apiKey:     apiKey,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Configured reports whether an API key is set
func (c *ReasoningClient) Configured() bool {
	return c.apiKey != ""
}

// Complete sends a system instruction and a user prompt and returns the
// first choice's content, which is requested as a JSON object.
func (c *ReasoningClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   800,
	}
	req.ResponseFormat.Type = "json_object"

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp chatResponse
	if err := c.postJSON(ctx, "/chat/completions", headers, req, &resp); err != nil {
		return "", fmt.Errorf("reasoning request failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: reasoning response had no content", ErrMalformed)
	}

	return resp.Choices[0].Message.Content, nil
}
