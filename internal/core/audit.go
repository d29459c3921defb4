package core

import "sync"

// ChangeLog accumulates the changes applied by the service, in order.
type ChangeLog struct {
	mu      sync.Mutex
	changes []Change
}

// NewChangeLog returns an empty change log.
func NewChangeLog() *ChangeLog {
	return &ChangeLog{}
}

// Record appends one change to the log.
func (l *ChangeLog) Record(change Change) {
	l.mu.Lock()
	l.changes = append(l.changes, change)
	l.mu.Unlock()
}

// Changes returns a copy of every recorded change.
func (l *ChangeLog) Changes() []Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Change, len(l.changes))
	copy(out, l.changes)
	return out
}

// Reset discards every recorded change.
func (l *ChangeLog) Reset() {
	l.mu.Lock()
	l.changes = nil
	l.mu.Unlock()
}
