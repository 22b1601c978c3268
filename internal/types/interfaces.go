package types

import (
	"context"
)

// LLMClient defines the interface for LLM interactions.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// CompleteWithTools sends a prompt with tool definitions and returns the
	// response together with any tool calls the model requested. This is what
	// the agentic refinement loop runs on.
	CompleteWithTools(ctx context.Context, systemPrompt, userPrompt string, tools []ToolDefinition) (*LLMToolResponse, error)
}

// ToolDefinition describes a tool that the LLM can invoke.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"` // JSON Schema for parameters
}

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	ID    string                 `json:"id"`    // Unique ID for this tool use
	Name  string                 `json:"name"`  // Tool name to invoke
	Input map[string]interface{} `json:"input"` // Tool arguments
}

// UsageMetadata captures token usage metrics from the LLM.
type UsageMetadata struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// LLMToolResponse contains both text response and tool calls from the LLM.
type LLMToolResponse struct {
	Text       string        `json:"text"`        // Text response (may be empty if only tool calls)
	ToolCalls  []ToolCall    `json:"tool_calls"`  // Tool invocations requested by LLM
	StopReason string        `json:"stop_reason"` // "stop", "tool_calls", etc.
	Usage      UsageMetadata `json:"usage"`       // Token usage metrics
}

// StructuredCompleter is an optional interface for LLM clients that support
// schema-constrained structured output. Use type assertion to check:
//
//	if sc, ok := client.(types.StructuredCompleter); ok {
//	    raw, err := sc.CompleteStructured(ctx, system, user, schema)
//	}
//
// Clients without native schema enforcement fall back to prompt-enforced JSON
// through the plain Complete path.
type StructuredCompleter interface {
	// CompleteStructured sends a prompt constrained to the given JSON schema
	// and returns the raw JSON text of the response.
	CompleteStructured(ctx context.Context, systemPrompt, userPrompt string, schema map[string]interface{}) (string, error)
}
