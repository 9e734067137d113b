package session

import "time"

// Timer tracks elapsed time for the currently active question.
//
// The authoritative time-spent value for a question is read once,
// synchronously, when the answer is submitted. Display code may poll
// ElapsedSeconds on its own cadence; that never feeds back into
// recorded timing data.
type Timer struct {
	now     func() time.Time
	ref     time.Time
	running bool
	frozen  time.Duration
}

// NewTimer creates a stopped timer with zero elapsed time.
func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// Start records the current instant as the new reference. A prior
// reference is discarded; elapsed time never carries over between
// questions.
func (t *Timer) Start() {
	t.ref = t.now()
	t.running = true
	t.frozen = 0
}

// Stop freezes the elapsed value. Further Elapsed calls return the
// frozen value until Start is called again.
func (t *Timer) Stop() {
	if t.running {
		t.frozen = t.now().Sub(t.ref)
		t.running = false
	}
}

// Elapsed returns the time since the reference instant, or the frozen
// value if the timer is stopped.
func (t *Timer) Elapsed() time.Duration {
	if t.running {
		return t.now().Sub(t.ref)
	}
	return t.frozen
}

// ElapsedSeconds returns Elapsed truncated to whole seconds.
func (t *Timer) ElapsedSeconds() int {
	return int(t.Elapsed() / time.Second)
}

// Running reports whether the timer is ticking.
func (t *Timer) Running() bool {
	return t.running
}
