// Package resource provides guarded cells supporting shared and exclusive
// access, and keyed collections of such cells.
package resource

import (
	"fmt"
	"log/slog"
	"sync"
)

// Resource is a guarded cell owning a single value. Any number of readers may
// hold shared access concurrently; at most one writer holds exclusive access.
type Resource[T any] struct {
	mu     sync.RWMutex
	value  T
	logger *slog.Logger
}

// New wraps the given value into a resource.
func New[T any](value T) *Resource[T] {
	return &Resource[T]{value: value, logger: slog.Default()}
}

// WithLogger sets the logger used to report recovered writers.
func (r *Resource[T]) WithLogger(logger *slog.Logger) *Resource[T] {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Read blocks until shared access is granted and returns the read guard.
func (r *Resource[T]) Read() *ReadGuard[T] {
	r.mu.RLock()
	return &ReadGuard[T]{res: r}
}

// Write blocks until exclusive access is granted and returns the write guard.
// The guard operates on a copy of the stored value; the store only changes on
// Commit, so a writer abandoned mid-flight leaves the last committed value
// intact.
func (r *Resource[T]) Write() *WriteGuard[T] {
	r.mu.Lock()
	return &WriteGuard[T]{res: r, value: r.value}
}

// View runs fn with shared access to the stored value.
func (r *Resource[T]) View(fn func(T) error) error {
	guard := r.Read()
	defer guard.Release()
	return fn(guard.Value())
}

// Update runs fn with exclusive access to a mutable copy of the stored value,
// committing it if and only if fn returns nil. A panicking fn is recovered:
// its in-flight state is discarded, the last committed value is kept, and a
// warning is logged. This favors availability over strict isolation.
func (r *Resource[T]) Update(fn func(*T) error) (err error) {
	guard := r.Write()
	committed := false
	defer func() {
		if p := recover(); p != nil {
			guard.Rollback()
			r.logger.Warn("recovered panicked writer; keeping last committed value", "panic", fmt.Sprint(p))
			err = fmt.Errorf("writer panicked: %v", p)
			return
		}
		if !committed {
			guard.Rollback()
		}
	}()

	if err := fn(guard.Value()); err != nil {
		return err
	}
	guard.Commit()
	committed = true
	return nil
}

// ReadGuard grants shared immutable access to a resource's value.
type ReadGuard[T any] struct {
	res      *Resource[T]
	released bool
}

// Value returns the guarded value.
func (g *ReadGuard[T]) Value() T {
	return g.res.value
}

// Release gives up the shared access. Releasing twice is a no-op.
func (g *ReadGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.res.mu.RUnlock()
}

// WriteGuard grants exclusive mutable access to a copy of a resource's value.
type WriteGuard[T any] struct {
	res   *Resource[T]
	value T
	done  bool
}

// Value returns the in-guard value, mutable in place.
func (g *WriteGuard[T]) Value() *T {
	return &g.value
}

// Commit persists the in-guard value back into the resource and gives up the
// exclusive access. The guard is consumed; committing or rolling back again
// panics.
func (g *WriteGuard[T]) Commit() {
	g.consume()
	g.res.value = g.value
	g.res.mu.Unlock()
}

// Rollback discards the in-guard value, leaving the stored state untouched,
// and gives up the exclusive access. The guard is consumed.
func (g *WriteGuard[T]) Rollback() {
	g.consume()
	g.res.mu.Unlock()
}

func (g *WriteGuard[T]) consume() {
	if g.done {
		panic("resource: write guard already consumed")
	}
	g.done = true
}
