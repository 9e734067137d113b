package questiongen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prepdesk/prepdesk/internal/llm"
	"github.com/prepdesk/prepdesk/internal/session"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// questionSetOutput is the raw LLM response before validation.
type questionSetOutput struct {
	Questions []struct {
		Prompt        string `json:"prompt"`
		InterviewType string `json:"interview_type"`
		Difficulty    string `json:"difficulty"`
	} `json:"questions"`
}

// Generate produces the question list for the given input.
func (g *LLMGenerator) Generate(ctx context.Context, input Input) ([]*session.Question, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input)},
		},
		Schema:      QuestionSetSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionSetOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if len(raw.Questions) < input.Count {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("provider returned %d questions, requested %d", len(raw.Questions), input.Count),
		}
	}

	// Models occasionally pad the set. Extras are dropped rather than
	// surfaced, the request count is the contract with the caller.
	if len(raw.Questions) > input.Count {
		raw.Questions = raw.Questions[:input.Count]
	}

	questions := make([]*session.Question, 0, len(raw.Questions))
	for i, rq := range raw.Questions {
		qType, err := session.ParseInterviewType(rq.InterviewType)
		if err != nil {
			qType = input.Type
		}
		questions = append(questions, &session.Question{
			ID:         fmt.Sprintf("q%d", i+1),
			Prompt:     rq.Prompt,
			Type:       qType,
			Difficulty: session.Difficulty(rq.Difficulty),
		})
	}
	return questions, nil
}
