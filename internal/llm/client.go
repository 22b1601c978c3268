// Package llm provides chat-completion clients for the resolution
// pipeline. The OpenAI client speaks the OpenAI-compatible
// chat-completions protocol, which also covers local runtimes and
// proxies that expose the same surface.
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

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// =============================================================================
// OPENAI-COMPATIBLE CLIENT
// =============================================================================

// OpenAIClient implements types.LLMClient against an OpenAI-compatible
// chat-completions endpoint.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Config holds configuration for the OpenAI client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
		Timeout: 120 * time.Second,
	}
}

// NewOpenAIClient creates a new client with default config.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new client with custom config.
func NewOpenAIClientWithConfig(config Config) *OpenAIClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}
	return &OpenAIClient{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Complete sends a prompt and returns the completion.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system message.
func (c *OpenAIClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.send(ctx, chatRequest{
		Model:       c.model,
		Messages:    buildMessages(systemPrompt, userPrompt),
		MaxTokens:   4096,
		Temperature: 0.1, // Low temperature for structured output
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CompleteStructured sends a prompt with a JSON schema the reply must
// conform to, and returns the raw JSON string.
func (c *OpenAIClient) CompleteStructured(ctx context.Context, systemPrompt, userPrompt string, schema map[string]interface{}) (string, error) {
	resp, err := c.send(ctx, chatRequest{
		Model:       c.model,
		Messages:    buildMessages(systemPrompt, userPrompt),
		MaxTokens:   4096,
		Temperature: 0.1,
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   "response",
				Strict: true,
				Schema: schema,
			},
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CompleteWithTools sends a prompt with tool definitions and returns
// both the text reply and any tool invocations the model requested.
func (c *OpenAIClient) CompleteWithTools(ctx context.Context, systemPrompt, userPrompt string, tools []types.ToolDefinition) (*types.LLMToolResponse, error) {
	specs := make([]toolSpec, len(tools))
	for i, tool := range tools {
		specs[i] = toolSpec{
			Type: "function",
			Function: toolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		}
	}

	resp, err := c.send(ctx, chatRequest{
		Model:       c.model,
		Messages:    buildMessages(systemPrompt, userPrompt),
		MaxTokens:   4096,
		Temperature: 0.1,
		Tools:       specs,
	})
	if err != nil {
		return nil, err
	}

	choice := resp.Choices[0]
	result := &types.LLMToolResponse{
		Text:       strings.TrimSpace(choice.Message.Content),
		StopReason: choice.FinishReason,
		Usage: types.UsageMetadata{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}

	for _, call := range choice.Message.ToolCalls {
		input := make(map[string]interface{})
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
				logging.Get(logging.CategoryAPI).Warn("Discarding tool call %s with malformed arguments: %v", call.Function.Name, err)
				continue
			}
		}
		result.ToolCalls = append(result.ToolCalls, types.ToolCall{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: input,
		})
	}

	return result, nil
}

// send posts a chat request with retry on rate limiting and returns a
// response guaranteed to hold at least one choice.
func (c *OpenAIClient) send(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	timer := logging.StartTimer(logging.CategoryAPI, "chat completion")
	defer timer.Stop()

	// Retry loop for 429 errors
	maxRetries := 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s, 4s
			select {
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			logging.API("Rate limited, retry %d/%d", i+1, maxRetries)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var chatResp chatResponse
		if err := json.Unmarshal(body, &chatResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		if chatResp.Error != nil {
			return nil, fmt.Errorf("API error: %s", chatResp.Error.Message)
		}

		if len(chatResp.Choices) == 0 {
			return nil, fmt.Errorf("no completion returned")
		}

		logging.APIDebug("Completion ok: model=%s, tokens=%d", chatResp.Model, chatResp.Usage.TotalTokens)
		return &chatResp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func buildMessages(systemPrompt, userPrompt string) []ChatMessage {
	messages := make([]ChatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: userPrompt})
	return messages
}

// SetModel changes the model used for completions.
func (c *OpenAIClient) SetModel(model string) {
	c.model = model
}

// GetModel returns the current model.
func (c *OpenAIClient) GetModel() string {
	return c.model
}
