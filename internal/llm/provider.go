package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over the AI services the engine calls.
// Both question generation and answer evaluation go through Generate
// with a schema-constrained request.
type Provider interface {
	// Generate sends a prompt and returns a structured response. When
	// the request carries a Schema, the returned Content is JSON that
	// has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes a single outbound AI call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Generation and evaluation are both
	// single-turn, so this is normally one user message.
	Messages []Message

	// Schema, when set, instructs the provider to use its native
	// structured-output mechanism and validates the result.
	Schema *Schema

	// MaxTokens bounds the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero when unset.
	Temperature float64
}

// Message is a single conversation entry.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema the response must conform to.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case, e.g. "interview-question-set".
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the generated output. With a Schema it is the
	// validated JSON object; without one it is raw text.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
