package questiongen

import "github.com/prepdesk/prepdesk/internal/session"

// Input holds all context needed to generate a question set.
type Input struct {
	// Type is the interview format the questions should follow.
	Type session.InterviewType

	// Difficulty is the requested difficulty. Empty means the
	// generator picks a mix appropriate for the role.
	Difficulty session.Difficulty

	// TargetRole is the position the candidate is practicing for,
	// e.g. "Senior Backend Engineer". Optional.
	TargetRole string

	// TargetCompany is the company the candidate is targeting.
	// Optional; used to flavor the questions.
	TargetCompany string

	// Count is the number of questions to generate.
	Count int
}

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns recommended generation defaults. The token
// budget scales with question count at request time, this is the base.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.8,
	}
}
