package evaluate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prepdesk/prepdesk/internal/llm"
	"github.com/prepdesk/prepdesk/internal/session"
)

// LLMEvaluator implements Evaluator using the LLM provider.
type LLMEvaluator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMEvaluator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMEvaluator {
	return &LLMEvaluator{provider: provider, config: cfg}
}

// evaluationOutput is the raw LLM response before clamping.
type evaluationOutput struct {
	Score        int      `json:"score"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Feedback     string   `json:"feedback"`
}

// Evaluate returns structured feedback for the given answer.
func (e *LLMEvaluator) Evaluate(ctx context.Context, input Input) (*session.Evaluation, error) {
	ctx = llm.WithPurpose(ctx, "answer-eval")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input)},
		},
		Schema:      EvaluationSchema,
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
	}

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM evaluation failed: %w", err)
	}

	var raw evaluationOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	return &session.Evaluation{
		Score:        clampScore(raw.Score),
		Strengths:    raw.Strengths,
		Improvements: raw.Improvements,
		Feedback:     raw.Feedback,
	}, nil
}

// clampScore bounds a score to [0, 100]. Schema validation already
// enforces this for conforming providers, the clamp covers the mock
// and any provider running without schema support.
func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
