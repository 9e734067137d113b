package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Repository on a pgx connection pool. Used
// by the hosted platform where several API replicas share a database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to Postgres and runs migrations.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		interview_type TEXT NOT NULL,
		difficulty TEXT NOT NULL DEFAULT '',
		target_role TEXT NOT NULL DEFAULT '',
		target_company TEXT NOT NULL DEFAULT '',
		question_count INTEGER NOT NULL,
		status TEXT NOT NULL,
		score DOUBLE PRECISION,
		duration_secs INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, created_at);

	CREATE TABLE IF NOT EXISTS questions (
		session_id TEXT NOT NULL REFERENCES sessions(id),
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		interview_type TEXT NOT NULL,
		difficulty TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		eval_score INTEGER,
		eval_strengths TEXT[] NOT NULL DEFAULT '{}',
		eval_improvements TEXT[] NOT NULL DEFAULT '{}',
		eval_feedback TEXT NOT NULL DEFAULT '',
		time_spent_secs INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (session_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_questions_session ON questions(session_id, position);

	CREATE TABLE IF NOT EXISTS llm_events (
		id BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	);`)
	return err
}

func (s *PostgresStore) CreateSession(ctx context.Context, rec *SessionRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, title, interview_type, difficulty,
			target_role, target_company, question_count, status, score,
			duration_secs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.UserID, rec.Title, rec.Type, rec.Difficulty,
		rec.TargetRole, rec.TargetCompany, rec.QuestionCount, rec.Status, rec.Score,
		rec.DurationSecs, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return rec.ID, nil
}

func (s *PostgresStore) UpdateSession(ctx context.Context, id string, patch SessionPatch) error {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now()}

	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if patch.Score != nil {
		args = append(args, *patch.Score)
		sets = append(sets, fmt.Sprintf("score = $%d", len(args)))
	}
	if patch.DurationSecs != nil {
		args = append(args, *patch.DurationSecs)
		sets = append(sets, fmt.Sprintf("duration_secs = $%d", len(args)))
	}
	args = append(args, id)

	_, err := s.pool.Exec(ctx,
		fmt.Sprintf("UPDATE sessions SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, interview_type, difficulty, target_role,
		       target_company, question_count, status, score, duration_secs,
		       created_at, updated_at
		FROM sessions WHERE id = $1`, id)

	rec, err := scanPgSession(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (s *PostgresStore) ListSessions(ctx context.Context, userID string) ([]*SessionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, interview_type, difficulty, target_role,
		       target_company, question_count, status, score, duration_secs,
		       created_at, updated_at
		FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []*SessionRecord
	for rows.Next() {
		rec, err := scanPgSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanPgSession(row pgx.Row) (*SessionRecord, error) {
	var rec SessionRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Type, &rec.Difficulty,
		&rec.TargetRole, &rec.TargetCompany, &rec.QuestionCount, &rec.Status,
		&rec.Score, &rec.DurationSecs, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PostgresStore) CreateQuestion(ctx context.Context, rec *QuestionRecord) error {
	strengths := rec.EvalStrengths
	if strengths == nil {
		strengths = []string{}
	}
	improve := rec.EvalImprove
	if improve == nil {
		improve = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO questions (session_id, id, position, prompt, interview_type,
			difficulty, answer, eval_score, eval_strengths, eval_improvements,
			eval_feedback, time_spent_secs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.SessionID, rec.ID, rec.Position, rec.Prompt, rec.Type,
		rec.Difficulty, rec.Answer, rec.EvalScore, strengths, improve,
		rec.EvalFeedback, rec.TimeSpentSecs,
	)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateQuestion(ctx context.Context, sessionID, questionID string, patch QuestionPatch) error {
	var sets []string
	var args []any

	if patch.Answer != nil {
		args = append(args, *patch.Answer)
		sets = append(sets, fmt.Sprintf("answer = $%d", len(args)))
	}
	if patch.Evaluation != nil {
		ev := patch.Evaluation
		args = append(args, ev.Score)
		sets = append(sets, fmt.Sprintf("eval_score = $%d", len(args)))
		args = append(args, ev.Strengths)
		sets = append(sets, fmt.Sprintf("eval_strengths = $%d", len(args)))
		args = append(args, ev.Improvements)
		sets = append(sets, fmt.Sprintf("eval_improvements = $%d", len(args)))
		args = append(args, ev.Feedback)
		sets = append(sets, fmt.Sprintf("eval_feedback = $%d", len(args)))
	}
	if patch.TimeSpentSecs != nil {
		args = append(args, *patch.TimeSpentSecs)
		sets = append(sets, fmt.Sprintf("time_spent_secs = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, sessionID, questionID)

	_, err := s.pool.Exec(ctx,
		fmt.Sprintf("UPDATE questions SET %s WHERE session_id = $%d AND id = $%d",
			strings.Join(sets, ", "), len(args)-1, len(args)),
		args...)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListQuestions(ctx context.Context, sessionID string) ([]*QuestionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT session_id, id, position, prompt, interview_type, difficulty,
		       answer, eval_score, eval_strengths, eval_improvements,
		       eval_feedback, time_spent_secs
		FROM questions WHERE session_id = $1 ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []*QuestionRecord
	for rows.Next() {
		var rec QuestionRecord
		err := rows.Scan(&rec.SessionID, &rec.ID, &rec.Position, &rec.Prompt,
			&rec.Type, &rec.Difficulty, &rec.Answer, &rec.EvalScore,
			&rec.EvalStrengths, &rec.EvalImprove, &rec.EvalFeedback, &rec.TimeSpentSecs)
		if err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AppendLLMEvent(ctx context.Context, data LLMEventData) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO llm_events (timestamp, provider, model, purpose, input_tokens,
			output_tokens, latency_ms, success, error_message, request_body, response_body)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		time.Now(), data.Provider, data.Model, data.Purpose, data.InputTokens,
		data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
		data.RequestBody, data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("insert llm event: %w", err)
	}
	return nil
}

func (s *PostgresStore) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]*LLMEvent, error) {
	query := `
		SELECT id, timestamp, provider, model, purpose, input_tokens,
		       output_tokens, latency_ms, success, error_message,
		       request_body, response_body
		FROM llm_events ORDER BY id DESC`
	var args []any
	if opts.Limit > 0 {
		query += " LIMIT $1"
		args = append(args, opts.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var out []*LLMEvent
	for rows.Next() {
		var e LLMEvent
		err := rows.Scan(&e.ID, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
			&e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
		if err != nil {
			return nil, fmt.Errorf("scan llm event row: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, timestamp, provider, model, purpose, input_tokens,
		       output_tokens, latency_ms, success, error_message,
		       request_body, response_body
		FROM llm_events WHERE id = $1`, id)

	var e LLMEvent
	err := row.Scan(&e.ID, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan llm event row: %w", err)
	}
	return &e, nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
