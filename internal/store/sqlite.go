package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and migrates) a SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := EnsureDir(dbPath); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

// applyPragmas configures SQLite for single-writer server use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
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
		score REAL,
		duration_secs INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
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
		eval_strengths TEXT NOT NULL DEFAULT '[]',
		eval_improvements TEXT NOT NULL DEFAULT '[]',
		eval_feedback TEXT NOT NULL DEFAULT '',
		time_spent_secs INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (session_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_questions_session ON questions(session_id, position);

	CREATE TABLE IF NOT EXISTS llm_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_llm_events_time ON llm_events(timestamp);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context, rec *SessionRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, title, interview_type, difficulty,
			target_role, target_company, question_count, status, score,
			duration_secs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Title, rec.Type, rec.Difficulty,
		rec.TargetRole, rec.TargetCompany, rec.QuestionCount, rec.Status, rec.Score,
		rec.DurationSecs, now.Unix(), now.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return rec.ID, nil
}

func (s *SQLiteStore) UpdateSession(ctx context.Context, id string, patch SessionPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().Unix()}

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Score != nil {
		sets = append(sets, "score = ?")
		args = append(args, *patch.Score)
	}
	if patch.DurationSecs != nil {
		sets = append(sets, "duration_secs = ?")
		args = append(args, *patch.DurationSecs)
	}
	args = append(args, id)

	_, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, interview_type, difficulty, target_role,
		       target_company, question_count, status, score, duration_secs,
		       created_at, updated_at
		FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

func (s *SQLiteStore) ListSessions(ctx context.Context, userID string) ([]*SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, interview_type, difficulty, target_role,
		       target_company, question_count, status, score, duration_secs,
		       created_at, updated_at
		FROM sessions WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []*SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	var rec SessionRecord
	var score sql.NullFloat64
	var createdAt, updatedAt int64

	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Type, &rec.Difficulty,
		&rec.TargetRole, &rec.TargetCompany, &rec.QuestionCount, &rec.Status,
		&score, &rec.DurationSecs, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if score.Valid {
		rec.Score = &score.Float64
	}
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}

func (s *SQLiteStore) CreateQuestion(ctx context.Context, rec *QuestionRecord) error {
	strengths, improve, err := marshalEvalLists(rec.EvalStrengths, rec.EvalImprove)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions (session_id, id, position, prompt, interview_type,
			difficulty, answer, eval_score, eval_strengths, eval_improvements,
			eval_feedback, time_spent_secs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.ID, rec.Position, rec.Prompt, rec.Type,
		rec.Difficulty, rec.Answer, rec.EvalScore, strengths, improve,
		rec.EvalFeedback, rec.TimeSpentSecs,
	)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateQuestion(ctx context.Context, sessionID, questionID string, patch QuestionPatch) error {
	var sets []string
	var args []any

	if patch.Answer != nil {
		sets = append(sets, "answer = ?")
		args = append(args, *patch.Answer)
	}
	if patch.Evaluation != nil {
		strengths, improve, err := marshalEvalLists(patch.Evaluation.Strengths, patch.Evaluation.Improvements)
		if err != nil {
			return err
		}
		sets = append(sets, "eval_score = ?", "eval_strengths = ?", "eval_improvements = ?", "eval_feedback = ?")
		args = append(args, patch.Evaluation.Score, strengths, improve, patch.Evaluation.Feedback)
	}
	if patch.TimeSpentSecs != nil {
		sets = append(sets, "time_spent_secs = ?")
		args = append(args, *patch.TimeSpentSecs)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, sessionID, questionID)

	_, err := s.db.ExecContext(ctx,
		"UPDATE questions SET "+strings.Join(sets, ", ")+" WHERE session_id = ? AND id = ?", args...)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListQuestions(ctx context.Context, sessionID string) ([]*QuestionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, id, position, prompt, interview_type, difficulty,
		       answer, eval_score, eval_strengths, eval_improvements,
		       eval_feedback, time_spent_secs
		FROM questions WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []*QuestionRecord
	for rows.Next() {
		var rec QuestionRecord
		var evalScore sql.NullInt64
		var strengths, improve string

		err := rows.Scan(&rec.SessionID, &rec.ID, &rec.Position, &rec.Prompt,
			&rec.Type, &rec.Difficulty, &rec.Answer, &evalScore,
			&strengths, &improve, &rec.EvalFeedback, &rec.TimeSpentSecs)
		if err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}

		if evalScore.Valid {
			v := int(evalScore.Int64)
			rec.EvalScore = &v
		}
		if err := json.Unmarshal([]byte(strengths), &rec.EvalStrengths); err != nil {
			return nil, fmt.Errorf("decode strengths: %w", err)
		}
		if err := json.Unmarshal([]byte(improve), &rec.EvalImprove); err != nil {
			return nil, fmt.Errorf("decode improvements: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func marshalEvalLists(strengths, improve []string) (string, string, error) {
	if strengths == nil {
		strengths = []string{}
	}
	if improve == nil {
		improve = []string{}
	}
	sb, err := json.Marshal(strengths)
	if err != nil {
		return "", "", fmt.Errorf("encode strengths: %w", err)
	}
	ib, err := json.Marshal(improve)
	if err != nil {
		return "", "", fmt.Errorf("encode improvements: %w", err)
	}
	return string(sb), string(ib), nil
}

func (s *SQLiteStore) AppendLLMEvent(ctx context.Context, data LLMEventData) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_events (timestamp, provider, model, purpose, input_tokens,
			output_tokens, latency_ms, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), data.Provider, data.Model, data.Purpose, data.InputTokens,
		data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
		data.RequestBody, data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("insert llm event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]*LLMEvent, error) {
	query := `
		SELECT id, timestamp, provider, model, purpose, input_tokens,
		       output_tokens, latency_ms, success, error_message,
		       request_body, response_body
		FROM llm_events ORDER BY id DESC`
	var args []any
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var out []*LLMEvent
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, provider, model, purpose, input_tokens,
		       output_tokens, latency_ms, success, error_message,
		       request_body, response_body
		FROM llm_events WHERE id = ?`, id)
	return scanLLMEvent(row)
}

func scanLLMEvent(row rowScanner) (*LLMEvent, error) {
	var e LLMEvent
	var ts int64
	err := row.Scan(&e.ID, &ts, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens,
		&e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage,
		&e.RequestBody, &e.ResponseBody)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan llm event row: %w", err)
	}
	e.Timestamp = time.Unix(ts, 0)
	return &e, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
