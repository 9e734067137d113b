// Package workspace coordinates live practice sessions: it drives the
// session machine, calls out to question generation and answer
// evaluation, and keeps the persistence layer in sync with the
// in-memory state.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prepdesk/prepdesk/internal/evaluate"
	"github.com/prepdesk/prepdesk/internal/questiongen"
	"github.com/prepdesk/prepdesk/internal/session"
	"github.com/prepdesk/prepdesk/internal/store"
)

var (
	// ErrNotFound means no live session with the given id exists.
	ErrNotFound = errors.New("session not found")

	// ErrGenerationInFlight means the user already has a session
	// being generated; the duplicate request is rejected, not queued.
	ErrGenerationInFlight = errors.New("question generation already in flight")
)

// Workspace owns every live session machine in the process.
type Workspace struct {
	repo   store.Repository
	gen    questiongen.Generator
	eval   evaluate.Evaluator
	logger *slog.Logger

	mu         sync.Mutex
	live       map[string]*session.Machine
	generating map[string]bool // keyed by user id
}

// New creates a Workspace around the given collaborators.
func New(repo store.Repository, gen questiongen.Generator, eval evaluate.Evaluator, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{
		repo:       repo,
		gen:        gen,
		eval:       eval,
		logger:     logger,
		live:       make(map[string]*session.Machine),
		generating: make(map[string]bool),
	}
}

// Snapshot is a point-in-time view of one session, safe to serialize.
type Snapshot struct {
	Session   session.Session     `json:"session"`
	State     string              `json:"state"`
	Cursor    int                 `json:"cursor"`
	Questions []*session.Question `json:"questions"`
}

// Create validates the config, generates the question set, persists
// the session, and installs a populated machine. Only one generation
// per user runs at a time; a second request fails fast with
// ErrGenerationInFlight instead of stacking provider calls.
func (w *Workspace) Create(ctx context.Context, userID string, cfg session.Config) (*Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.generating[userID] {
		w.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	w.generating[userID] = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.generating, userID)
		w.mu.Unlock()
	}()

	questions, err := w.gen.Generate(ctx, questiongen.Input{
		Type:          cfg.Type,
		Difficulty:    cfg.Difficulty,
		TargetRole:    cfg.TargetRole,
		TargetCompany: cfg.TargetCompany,
		Count:         cfg.QuestionCount,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	sess := session.Session{
		Title:         cfg.Title,
		Type:          cfg.Type,
		Difficulty:    cfg.Difficulty,
		TargetRole:    cfg.TargetRole,
		TargetCompany: cfg.TargetCompany,
		QuestionCount: len(questions),
	}

	id, err := w.repo.CreateSession(ctx, &store.SessionRecord{
		UserID:        userID,
		Title:         sess.Title,
		Type:          string(sess.Type),
		Difficulty:    string(sess.Difficulty),
		TargetRole:    sess.TargetRole,
		TargetCompany: sess.TargetCompany,
		QuestionCount: sess.QuestionCount,
		Status:        "populated",
	})
	if err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	sess.ID = id

	for i, q := range questions {
		if err := w.repo.CreateQuestion(ctx, &store.QuestionRecord{
			SessionID:  id,
			ID:         q.ID,
			Position:   i,
			Prompt:     q.Prompt,
			Type:       string(q.Type),
			Difficulty: string(q.Difficulty),
		}); err != nil {
			// Mark the half-written session so listings do not offer it
			// as a usable one. Cleanup is best effort.
			failed := "failed"
			if merr := w.repo.UpdateSession(ctx, id, store.SessionPatch{Status: &failed}); merr != nil {
				w.logger.Warn("marking failed session", "session", id, "error", merr)
			}
			return nil, fmt.Errorf("persist question %s: %w", q.ID, err)
		}
	}

	m := session.New(w.logger)
	m.Populate(sess, questions)

	w.mu.Lock()
	w.live[id] = m
	snap := snapshot(m)
	w.mu.Unlock()

	w.logger.Info("session created",
		"session_id", id,
		"interview_type", sess.Type,
		"questions", len(questions))
	return snap, nil
}

// Activate starts the session's clock and makes the first question current.
func (w *Workspace) Activate(ctx context.Context, id string) (*Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, ok := w.live[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.Activate() {
		if err := w.setStatus(ctx, id, "active"); err != nil {
			w.logger.Warn("failed to persist session status", "session_id", id, "error", err)
		}
	}
	return snapshot(m), nil
}

// SubmitAnswer records the answer with the elapsed time for the
// current visit, then evaluates it. The answer and time are committed
// before the provider call, so an evaluation failure never loses what
// the candidate typed. Returns the evaluation, nil when evaluation
// failed but the answer was stored.
func (w *Workspace) SubmitAnswer(ctx context.Context, sessionID, questionID, answer string) (*session.Evaluation, error) {
	w.mu.Lock()
	m, ok := w.live[sessionID]
	if !ok {
		w.mu.Unlock()
		return nil, ErrNotFound
	}

	q := m.Question(questionID)
	if q == nil {
		w.mu.Unlock()
		return nil, fmt.Errorf("question %q: %w", questionID, ErrNotFound)
	}

	// The timer tracks only the question under the cursor. Elapsed is
	// read under the lock so the recorded time belongs to this
	// submission, and a submit for any other question (a stale client,
	// say) keeps its answer but records no time.
	var spent *int
	if cur := m.Current(); cur != nil && cur.ID == questionID {
		s := m.ElapsedSeconds()
		spent = &s
	}
	if !m.UpdateQuestion(questionID, session.QuestionUpdate{
		Answer:        &answer,
		TimeSpentSecs: spent,
	}) {
		w.mu.Unlock()
		return nil, fmt.Errorf("session %s is not active", sessionID)
	}
	input := evaluate.Input{
		Question:   q.Prompt,
		Type:       q.Type,
		Difficulty: q.Difficulty,
		TargetRole: m.Session().TargetRole,
		Answer:     answer,
	}
	w.mu.Unlock()

	if err := w.repo.UpdateQuestion(ctx, sessionID, questionID, store.QuestionPatch{
		Answer:        &answer,
		TimeSpentSecs: spent,
	}); err != nil {
		w.logger.Warn("failed to persist answer", "session_id", sessionID, "question_id", questionID, "error", err)
	}

	ev, err := w.eval.Evaluate(ctx, input)
	if err != nil {
		w.logger.Warn("answer evaluation failed",
			"session_id", sessionID,
			"question_id", questionID,
			"error", err)
		return nil, nil
	}

	w.mu.Lock()
	m.UpdateQuestion(questionID, session.QuestionUpdate{Evaluation: ev})
	w.mu.Unlock()

	if err := w.repo.UpdateQuestion(ctx, sessionID, questionID, store.QuestionPatch{
		Evaluation: ev,
	}); err != nil {
		w.logger.Warn("failed to persist evaluation", "session_id", sessionID, "question_id", questionID, "error", err)
	}
	return ev, nil
}

// Advance moves the session cursor to the next or previous question.
func (w *Workspace) Advance(id string, dir session.Direction) (*Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, ok := w.live[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.Advance(dir)
	return snapshot(m), nil
}

// JumpTo moves the session cursor to an arbitrary question index.
func (w *Workspace) JumpTo(id string, index int) (*Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, ok := w.live[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.JumpTo(index)
	return snapshot(m), nil
}

// End finalizes the session: the machine computes the stats, and the
// final score, duration, and status are written through. Ending a
// session that is not active (a double end, or one never activated)
// is a no-op that reports the current statistics without touching the
// persisted record.
func (w *Workspace) End(ctx context.Context, id string) (*session.Stats, error) {
	w.mu.Lock()
	m, ok := w.live[id]
	if !ok {
		w.mu.Unlock()
		return nil, ErrNotFound
	}
	stats := m.End()
	sess := m.Session()
	if stats == nil {
		current := m.Stats()
		w.mu.Unlock()
		return &current, nil
	}
	w.mu.Unlock()

	status := "ended"
	if err := w.repo.UpdateSession(ctx, id, store.SessionPatch{
		Status:       &status,
		Score:        sess.Score,
		DurationSecs: &sess.DurationSecs,
	}); err != nil {
		w.logger.Warn("failed to persist session result", "session_id", id, "error", err)
	}

	w.logger.Info("session ended",
		"session_id", id,
		"answered", stats.Answered,
		"evaluated", stats.Evaluated,
		"completion_pct", stats.CompletionPercent)
	return stats, nil
}

// Reset discards the live machine. The persisted record keeps
// whatever state it reached; only the in-memory session is dropped.
func (w *Workspace) Reset(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, ok := w.live[id]
	if !ok {
		return ErrNotFound
	}
	m.Reset()
	delete(w.live, id)
	return nil
}

// Get returns a snapshot of a live session.
func (w *Workspace) Get(id string) (*Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, ok := w.live[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(m), nil
}

// Stats folds the session's current question store into statistics.
// Usable at any point in the session, not only at the end.
func (w *Workspace) Stats(id string) (*session.Stats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, ok := w.live[id]
	if !ok {
		return nil, ErrNotFound
	}
	stats := m.Stats()
	return &stats, nil
}

// Elapsed returns the whole seconds spent on the current question.
// Feeds the timer stream; the authoritative per-question time is
// still captured at submission.
func (w *Workspace) Elapsed(id string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, ok := w.live[id]
	if !ok {
		return 0, ErrNotFound
	}
	return m.ElapsedSeconds(), nil
}

// List returns the user's persisted sessions, newest first.
func (w *Workspace) List(ctx context.Context, userID string) ([]*store.SessionRecord, error) {
	return w.repo.ListSessions(ctx, userID)
}

func (w *Workspace) setStatus(ctx context.Context, id, status string) error {
	return w.repo.UpdateSession(ctx, id, store.SessionPatch{Status: &status})
}

// snapshot deep-copies the machine's state. Handlers serialize the
// result after the workspace lock is released, so nothing in it may
// alias the live question structs. Must be called with w.mu held.
func snapshot(m *session.Machine) *Snapshot {
	sess := m.Session()
	if sess.Score != nil {
		score := *sess.Score
		sess.Score = &score
	}

	live := m.Questions()
	questions := make([]*session.Question, len(live))
	for i, q := range live {
		cp := *q
		if q.Evaluation != nil {
			ev := *q.Evaluation
			ev.Strengths = append([]string(nil), q.Evaluation.Strengths...)
			ev.Improvements = append([]string(nil), q.Evaluation.Improvements...)
			cp.Evaluation = &ev
		}
		questions[i] = &cp
	}

	return &Snapshot{
		Session:   sess,
		State:     m.State().String(),
		Cursor:    m.Cursor(),
		Questions: questions,
	}
}
