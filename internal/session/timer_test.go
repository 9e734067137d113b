package session

import (
	"testing"
	"time"
)

// fakeClock returns a timer plus a function that moves its clock forward.
func fakeClock() (*Timer, func(d time.Duration)) {
	current := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	t := NewTimer()
	t.now = func() time.Time { return current }
	return t, func(d time.Duration) { current = current.Add(d) }
}

func TestTimer_ElapsedWholeSeconds(t *testing.T) {
	timer, advance := fakeClock()
	timer.Start()

	advance(2500 * time.Millisecond)
	if got := timer.ElapsedSeconds(); got != 2 {
		t.Errorf("ElapsedSeconds = %d, want 2 (truncated)", got)
	}
}

func TestTimer_StopFreezes(t *testing.T) {
	timer, advance := fakeClock()
	timer.Start()
	advance(5 * time.Second)
	timer.Stop()
	advance(1 * time.Hour)

	if got := timer.ElapsedSeconds(); got != 5 {
		t.Errorf("ElapsedSeconds = %d, want 5 (frozen at stop)", got)
	}
	if timer.Running() {
		t.Error("Running = true after Stop")
	}
}

func TestTimer_RestartDiscardsPriorReference(t *testing.T) {
	timer, advance := fakeClock()
	timer.Start()
	advance(40 * time.Second)

	timer.Start()
	if got := timer.ElapsedSeconds(); got != 0 {
		t.Errorf("ElapsedSeconds after restart = %d, want 0 (no carry-over)", got)
	}

	advance(3 * time.Second)
	if got := timer.ElapsedSeconds(); got != 3 {
		t.Errorf("ElapsedSeconds = %d, want 3", got)
	}
}

func TestTimer_NeverStarted(t *testing.T) {
	timer, _ := fakeClock()
	if got := timer.ElapsedSeconds(); got != 0 {
		t.Errorf("ElapsedSeconds on fresh timer = %d, want 0", got)
	}
}

func TestTimer_StopWhenStoppedKeepsValue(t *testing.T) {
	timer, advance := fakeClock()
	timer.Start()
	advance(7 * time.Second)
	timer.Stop()
	timer.Stop()
	if got := timer.ElapsedSeconds(); got != 7 {
		t.Errorf("ElapsedSeconds = %d, want 7", got)
	}
}
