package evaluate

import "github.com/prepdesk/prepdesk/internal/llm"

// EvaluationSchema defines the JSON schema for LLM answer evaluation
// responses.
var EvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Structured feedback on one interview answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     100,
				"description": "Overall answer quality from 0 (no answer) to 100 (excellent)",
			},
			"strengths": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Specific things the candidate did well, 1-4 items",
			},
			"improvements": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Specific, actionable ways to improve the answer, 1-4 items",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "A short paragraph of overall feedback addressed to the candidate",
			},
		},
		"required":             []any{"score", "strengths", "improvements", "feedback"},
		"additionalProperties": false,
	},
}
