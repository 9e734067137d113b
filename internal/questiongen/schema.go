package questiongen

import "github.com/prepdesk/prepdesk/internal/llm"

// QuestionSetSchema defines the JSON schema for LLM question
// generation responses.
var QuestionSetSchema = &llm.Schema{
	Name:        "interview-question-set",
	Description: "An ordered set of interview practice questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"description": "The generated questions, in the order they should be asked",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"prompt": map[string]any{
							"type":        "string",
							"description": "The question exactly as an interviewer would ask it",
						},
						"interview_type": map[string]any{
							"type":        "string",
							"enum":        []any{"behavioral", "technical", "case_study", "system_design", "coding", "general"},
							"description": "The category this question belongs to",
						},
						"difficulty": map[string]any{
							"type":        "string",
							"enum":        []any{"easy", "medium", "hard"},
							"description": "Difficulty relative to the target role",
						},
					},
					"required":             []any{"prompt", "interview_type", "difficulty"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
