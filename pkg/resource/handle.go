package resource

import "github.com/HectorMRC/ithaca/pkg/transaction"

// Handle exposes a resource through the transactional guard contracts.
type Handle[T any] struct {
	res *Resource[T]
}

// NewHandle wraps the given resource into a transactional handle.
func NewHandle[T any](res *Resource[T]) Handle[T] {
	return Handle[T]{res: res}
}

// Read blocks until shared access is granted.
func (h Handle[T]) Read() transaction.ReadGuard[T] {
	return h.res.Read()
}

// Write blocks until exclusive access is granted.
func (h Handle[T]) Write() transaction.WriteGuard[T] {
	return h.res.Write()
}
