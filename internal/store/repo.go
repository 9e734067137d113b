// Package store implements the persistence collaborators behind the
// practice engine: durable sessions and questions, plus an event log
// of every AI request. The in-memory question store inside the engine
// mirrors these records, it never replaces them.
package store

import (
	"context"
	"time"

	"github.com/prepdesk/prepdesk/internal/session"
)

// SessionRecord is the durable form of a practice session.
type SessionRecord struct {
	ID            string
	UserID        string
	Title         string
	Type          string
	Difficulty    string
	TargetRole    string
	TargetCompany string
	QuestionCount int
	Status        string // "populated", "active", "ended", "failed"
	Score         *float64
	DurationSecs  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuestionRecord is the durable form of one question within a session.
// Position preserves the generated ordering.
type QuestionRecord struct {
	ID            string
	SessionID     string
	Position      int
	Prompt        string
	Type          string
	Difficulty    string
	Answer        string
	EvalScore     *int
	EvalStrengths []string
	EvalImprove   []string
	EvalFeedback  string
	TimeSpentSecs int
}

// SessionPatch is a partial session update. Nil fields are untouched.
type SessionPatch struct {
	Status       *string
	Score        *float64
	DurationSecs *int
}

// QuestionPatch is a partial question update. Nil fields are untouched.
type QuestionPatch struct {
	Answer        *string
	Evaluation    *session.Evaluation
	TimeSpentSecs *int
}

// LLMEventData captures one AI request for the event log.
type LLMEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a persisted AI request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMEventData
}

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit int // max results (0 = unlimited)
}

// LLMEventRepo is the narrow append interface the AI middleware needs.
type LLMEventRepo interface {
	AppendLLMEvent(ctx context.Context, data LLMEventData) error
}

// Repository is the persistence contract the engine's workspace layer
// depends on. Implementations: SQLite for single-node deployments,
// Postgres for the hosted platform.
type Repository interface {
	LLMEventRepo

	CreateSession(ctx context.Context, rec *SessionRecord) (string, error)
	UpdateSession(ctx context.Context, id string, patch SessionPatch) error
	GetSession(ctx context.Context, id string) (*SessionRecord, error)
	ListSessions(ctx context.Context, userID string) ([]*SessionRecord, error)

	CreateQuestion(ctx context.Context, rec *QuestionRecord) error
	UpdateQuestion(ctx context.Context, sessionID, questionID string, patch QuestionPatch) error
	ListQuestions(ctx context.Context, sessionID string) ([]*QuestionRecord, error)

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]*LLMEvent, error)
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	Ping(ctx context.Context) error
	Close() error
}
