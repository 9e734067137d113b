package session

import (
	"log/slog"
	"time"
)

// State is the lifecycle state of a practice session.
type State int

const (
	StateEmpty State = iota
	StatePopulated
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// Direction selects which way Advance moves the cursor.
type Direction int

const (
	Next Direction = iota
	Previous
)

// Machine is the session state machine. It exclusively owns the
// question store and cursor for the lifetime of one session; all
// mutations of question records go through UpdateQuestion or Populate.
//
// Every operation that is invalid in the current state is a silent
// no-op with a debug log, never an error. Rapid double-clicks from the
// workspace UI must not crash or corrupt a session, and a no-op
// overwrites nothing.
//
// Machine performs no I/O and is not safe for concurrent use; the
// workspace layer serializes access.
type Machine struct {
	logger *slog.Logger
	now    func() time.Time

	state     State
	session   Session
	questions []*Question
	cursor    int
	timer     *Timer
	startedAt time.Time
}

// New creates a Machine in the Empty state. A nil logger falls back to
// slog.Default.
func New(logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Machine{
		logger: logger,
		now:    time.Now,
		state:  StateEmpty,
		timer:  NewTimer(),
	}
	m.timer.now = m.now
	return m
}

// setClock replaces the machine's time source, for tests. The timer
// shares the same source so elapsed readings and session duration
// always come from one clock.
func (m *Machine) setClock(now func() time.Time) {
	m.now = now
	m.timer.now = now
}

// State returns the current lifecycle state.
func (m *Machine) State() State { return m.state }

// Session returns a copy of the session record.
func (m *Machine) Session() Session { return m.session }

// Cursor returns the index of the currently displayed question.
func (m *Machine) Cursor() int { return m.cursor }

// Len returns the number of questions in the store.
func (m *Machine) Len() int { return len(m.questions) }

// Questions returns the ordered question records. Callers must treat
// the result as read-only; mutations go through UpdateQuestion.
func (m *Machine) Questions() []*Question { return m.questions }

// Current returns the question under the cursor, or nil when the
// store is empty.
func (m *Machine) Current() *Question {
	if m.cursor < 0 || m.cursor >= len(m.questions) {
		return nil
	}
	return m.questions[m.cursor]
}

// Question returns the question with the given id, or nil.
func (m *Machine) Question(id string) *Question {
	for _, q := range m.questions {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// ElapsedSeconds returns the timer's whole-second reading for the
// current question. This is the value captured at answer submission.
func (m *Machine) ElapsedSeconds() int { return m.timer.ElapsedSeconds() }

// Populate installs the session record and its ordered questions,
// transitioning Empty -> Populated. Any other starting state is a no-op.
func (m *Machine) Populate(sess Session, questions []*Question) bool {
	if m.state != StateEmpty {
		m.invalid("populate")
		return false
	}
	m.session = sess
	m.questions = questions
	m.cursor = 0
	m.state = StatePopulated
	return true
}

// Activate starts the session: Populated -> Active, cursor to the
// first question, timer running.
func (m *Machine) Activate() bool {
	if m.state != StatePopulated {
		m.invalid("activate")
		return false
	}
	m.state = StateActive
	m.cursor = 0
	m.startedAt = m.now()
	m.timer.Start()
	return true
}

// UpdateQuestion merges upd into the question with the given id.
// Valid in Active state only; an unknown id indicates a stale caller
// reference and is swallowed. Updates arriving out of request order
// are fine: each targets a disjoint id, last writer wins per question.
func (m *Machine) UpdateQuestion(id string, upd QuestionUpdate) bool {
	if m.state != StateActive {
		m.invalid("update-question")
		return false
	}
	q := m.Question(id)
	if q == nil {
		m.logger.Debug("update for unknown question id", "question_id", id)
		return false
	}
	if upd.Answer != nil {
		q.Answer = *upd.Answer
	}
	if upd.Evaluation != nil {
		q.Evaluation = upd.Evaluation
	}
	if upd.TimeSpentSecs != nil {
		q.TimeSpentSecs = *upd.TimeSpentSecs
	}
	return true
}

// Advance moves the cursor one position, clamped to the store bounds.
// At either boundary it is a no-op. A successful move restarts the
// timer, so the newly current question begins at zero elapsed.
func (m *Machine) Advance(dir Direction) bool {
	if m.state != StateActive {
		m.invalid("advance")
		return false
	}
	next := m.cursor
	switch dir {
	case Next:
		next++
	case Previous:
		next--
	}
	if next < 0 || next >= len(m.questions) {
		return false
	}
	m.cursor = next
	m.timer.Start()
	return true
}

// JumpTo sets the cursor directly. Out-of-range indexes are rejected
// silently, mirroring the tolerant boundary policy of Advance.
func (m *Machine) JumpTo(index int) bool {
	if m.state != StateActive {
		m.invalid("jump")
		return false
	}
	if index < 0 || index >= len(m.questions) {
		m.logger.Debug("jump index out of range", "index", index, "len", len(m.questions))
		return false
	}
	m.cursor = index
	m.timer.Start()
	return true
}

// End stops the timer, folds the question store into final statistics,
// and transitions Active -> Ended. Ended is terminal until Reset.
// Returns nil when called outside Active.
func (m *Machine) End() *Stats {
	if m.state != StateActive {
		m.invalid("end")
		return nil
	}
	m.timer.Stop()
	stats := Aggregate(m.questions)
	if stats.Evaluated > 0 {
		score := stats.AverageScore
		m.session.Score = &score
	}
	m.session.DurationSecs = int(m.now().Sub(m.startedAt) / time.Second)
	m.state = StateEnded
	return &stats
}

// Reset clears everything and returns to Empty. Valid from any state;
// a new session always begins from an empty machine.
func (m *Machine) Reset() {
	m.session = Session{}
	m.questions = nil
	m.cursor = 0
	m.timer = NewTimer()
	m.timer.now = m.now
	m.startedAt = time.Time{}
	m.state = StateEmpty
}

// Stats folds the current question store into derived statistics.
func (m *Machine) Stats() Stats {
	return Aggregate(m.questions)
}

func (m *Machine) invalid(op string) {
	m.logger.Debug("ignoring invalid session transition", "op", op, "state", m.state.String())
}
