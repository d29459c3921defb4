// Package transaction declares the guard contracts through which aggregates
// are read and mutated.
package transaction

// ReadGuard grants shared, immutable access to a value. The guard must be
// released once the caller is done with it.
type ReadGuard[T any] interface {
	// Value returns the guarded value as of acquisition time.
	Value() T
	// Release gives up the shared access.
	Release()
}

// WriteGuard grants exclusive, mutable access to a value. Exactly one of
// Commit or Rollback must be invoked per guard lifetime.
type WriteGuard[T any] interface {
	// Value returns the in-guard value, mutable in place.
	Value() *T
	// Commit persists the in-guard value and gives up the exclusive access.
	Commit()
	// Rollback discards any mutation, leaving stored state untouched.
	Rollback()
}

// Tx is a transactional handle yielding read and write guards over an
// aggregate. Both acquisitions block until the underlying lock is granted.
type Tx[T any] interface {
	Read() ReadGuard[T]
	Write() WriteGuard[T]
}
