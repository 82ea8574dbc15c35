package service

import (
	"log"
	"sync"
	"time"
)

// SessionTimer accumulates play minutes for one signed-in student.
// A background goroutine adds a pending minute every tick interval and
// flushes the whole pending balance to the progress store. A failed
// flush keeps the balance so the next tick retries the full amount;
// nothing is lost and nothing is double-counted.
type SessionTimer struct {
	store     ProgressStore
	studentID int64
	idleLimit time.Duration

	mu       sync.Mutex
	pending  int
	lastBeat time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newSessionTimer(store ProgressStore, studentID int64, idleLimit time.Duration) *SessionTimer {
	return &SessionTimer{
		store:     store,
		studentID: studentID,
		idleLimit: idleLimit,
		lastBeat:  time.Now(),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (t *SessionTimer) run(tickInterval time.Duration) {
	defer close(t.doneCh)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if t.tick(time.Now()) {
				return
			}
		case <-t.stopCh:
			t.flush()
			return
		}
	}
}

// tick adds one pending minute and flushes. It reports whether the
// timer went idle and should shut down.
func (t *SessionTimer) tick(now time.Time) bool {
	t.mu.Lock()
	t.pending++
	idle := t.idleLimit > 0 && now.Sub(t.lastBeat) > t.idleLimit
	t.mu.Unlock()

	t.flush()
	return idle
}

// flush writes the full pending balance to the store and clears it on
// success. On failure the balance stays for the next attempt.
func (t *SessionTimer) flush() {
	t.mu.Lock()
	delta := t.pending
	t.mu.Unlock()
	if delta == 0 {
		return
	}

	if err := t.store.AccrueMinutes(t.studentID, delta, false); err != nil {
		log.Printf("timer flush failed for student %d (keeping %d pending minutes): %v", t.studentID, delta, err)
		return
	}

	t.mu.Lock()
	t.pending -= delta
	t.mu.Unlock()
}

// Heartbeat marks the student as active, deferring the idle cutoff.
func (t *SessionTimer) Heartbeat() {
	t.mu.Lock()
	t.lastBeat = time.Now()
	t.mu.Unlock()
}

// Pending returns the minutes accrued but not yet persisted.
func (t *SessionTimer) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// TimerManager owns one SessionTimer per signed-in student.
type TimerManager struct {
	store        ProgressStore
	tickInterval time.Duration
	idleLimit    time.Duration

	mu     sync.Mutex
	timers map[int64]*SessionTimer
}

// NewTimerManager creates a manager that ticks every tickInterval and
// stops timers that miss heartbeats for longer than idleLimit.
func NewTimerManager(store ProgressStore, tickInterval, idleLimit time.Duration) *TimerManager {
	return &TimerManager{
		store:        store,
		tickInterval: tickInterval,
		idleLimit:    idleLimit,
		timers:       make(map[int64]*SessionTimer),
	}
}

// Start launches a timer for the student. Starting an already-running
// timer is a no-op, so repeated sign-ins never double-count minutes.
func (m *TimerManager) Start(studentID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, running := m.timers[studentID]; running {
		return
	}
	t := newSessionTimer(m.store, studentID, m.idleLimit)
	m.timers[studentID] = t
	go func() {
		t.run(m.tickInterval)
		m.mu.Lock()
		if m.timers[studentID] == t {
			delete(m.timers, studentID)
		}
		m.mu.Unlock()
	}()
}

// Heartbeat records activity for the student. Unknown students are
// ignored; the next Start will pick them up again.
func (m *TimerManager) Heartbeat(studentID int64) {
	m.mu.Lock()
	t := m.timers[studentID]
	m.mu.Unlock()
	if t != nil {
		t.Heartbeat()
	}
}

// Stop halts the student's timer after a final flush of any pending
// minutes. Stopping an unknown student is a no-op.
func (m *TimerManager) Stop(studentID int64) {
	m.mu.Lock()
	t := m.timers[studentID]
	delete(m.timers, studentID)
	m.mu.Unlock()
	if t == nil {
		return
	}
	close(t.stopCh)
	<-t.doneCh
}

// StopAll flushes and stops every running timer. Used on shutdown.
func (m *TimerManager) StopAll() {
	m.mu.Lock()
	timers := make([]*SessionTimer, 0, len(m.timers))
	for id, t := range m.timers {
		timers = append(timers, t)
		delete(m.timers, id)
	}
	m.mu.Unlock()

	for _, t := range timers {
		close(t.stopCh)
		<-t.doneCh
	}
}
