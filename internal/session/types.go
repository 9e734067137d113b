package session

import "fmt"

// InterviewType classifies a practice session and its questions.
type InterviewType string

const (
	TypeBehavioral   InterviewType = "behavioral"
	TypeTechnical    InterviewType = "technical"
	TypeCaseStudy    InterviewType = "case_study"
	TypeSystemDesign InterviewType = "system_design"
	TypeCoding       InterviewType = "coding"
	TypeGeneral      InterviewType = "general"
)

// Valid reports whether t is one of the known interview types.
func (t InterviewType) Valid() bool {
	switch t {
	case TypeBehavioral, TypeTechnical, TypeCaseStudy, TypeSystemDesign, TypeCoding, TypeGeneral:
		return true
	}
	return false
}

// ParseInterviewType parses a wire-format interview type string.
func ParseInterviewType(s string) (InterviewType, error) {
	t := InterviewType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown interview type: %q", s)
	}
	return t, nil
}

// Difficulty is an optional question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty. The empty string is
// valid: difficulty is optional throughout.
func (d Difficulty) Valid() bool {
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// MinQuestions and MaxQuestions bound the requested question count for
// a single session.
const (
	MinQuestions = 1
	MaxQuestions = 50
)

// Config describes a session the caller wants to run. It carries no
// engine state; nothing happens until generation succeeds and the
// resulting questions are handed to a Machine.
type Config struct {
	Title         string        `json:"title"`
	Type          InterviewType `json:"interview_type"`
	Difficulty    Difficulty    `json:"difficulty,omitempty"`
	TargetRole    string        `json:"target_role,omitempty"`
	TargetCompany string        `json:"target_company,omitempty"`
	QuestionCount int           `json:"question_count"`
}

// Validate rejects configurations before any outbound call is made.
func (c Config) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("unknown interview type: %q", c.Type)
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty: %q", c.Difficulty)
	}
	if c.QuestionCount < MinQuestions || c.QuestionCount > MaxQuestions {
		return fmt.Errorf("question count must be between %d and %d, got %d", MinQuestions, MaxQuestions, c.QuestionCount)
	}
	return nil
}

// Session is one interview-practice run. The ID is assigned by the
// persistence layer on creation and is empty while in flight.
type Session struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Type          InterviewType `json:"interview_type"`
	Difficulty    Difficulty    `json:"difficulty,omitempty"`
	TargetRole    string        `json:"target_role,omitempty"`
	TargetCompany string        `json:"target_company,omitempty"`
	QuestionCount int           `json:"question_count"`

	// Score is the final aggregate score (0-100). Nil until at least
	// one question has been evaluated and the session has ended.
	Score *float64 `json:"score,omitempty"`

	// DurationSecs is the total active duration, set when the session ends.
	DurationSecs int `json:"duration_secs"`
}

// Question is a single prompt plus the candidate's answer and its
// evaluation. Ordering within a session is significant; the slice
// position defines the sequence.
type Question struct {
	ID         string        `json:"id"`
	Prompt     string        `json:"prompt"`
	Type       InterviewType `json:"interview_type"`
	Difficulty Difficulty    `json:"difficulty,omitempty"`

	// Answer is the candidate's most recent answer. Empty until submitted.
	Answer string `json:"answer,omitempty"`

	// Evaluation is set if and only if an evaluation call completed
	// successfully for this question. Re-evaluation replaces it; no
	// history is kept.
	Evaluation *Evaluation `json:"evaluation,omitempty"`

	// TimeSpentSecs is the time from when the question became current
	// to when the evaluated answer was submitted. A revisit restarts
	// the clock; only the latest visit is recorded.
	TimeSpentSecs int `json:"time_spent_secs"`
}

// Answered reports whether the candidate has submitted a non-empty answer.
func (q *Question) Answered() bool {
	return q.Answer != ""
}

// Evaluation is structured AI feedback for one answer. Immutable once
// attached except by wholesale replacement on re-evaluation.
type Evaluation struct {
	Score        int      `json:"score"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Feedback     string   `json:"feedback"`
}

// QuestionUpdate is a partial update merged into a question by id.
// Nil fields are left untouched.
type QuestionUpdate struct {
	Answer        *string
	Evaluation    *Evaluation
	TimeSpentSecs *int
}
