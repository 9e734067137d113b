package evaluate

import (
	"context"

	"github.com/prepdesk/prepdesk/internal/session"
)

// Evaluator scores a candidate's answer to one interview question.
type Evaluator interface {
	// Evaluate returns structured feedback for the given answer.
	Evaluate(ctx context.Context, input Input) (*session.Evaluation, error)
}

// Input holds the question and answer under evaluation.
type Input struct {
	// Question is the prompt that was asked.
	Question string

	// Type is the interview category of the question.
	Type session.InterviewType

	// Difficulty of the question, if set.
	Difficulty session.Difficulty

	// TargetRole the candidate is practicing for. Optional.
	TargetRole string

	// Answer is the candidate's full answer text.
	Answer string
}

// Config controls the behavior of the LLMEvaluator.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	// Evaluation runs cool so repeated grading stays consistent.
	Temperature float64
}

// DefaultConfig returns recommended evaluation defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.2,
	}
}
