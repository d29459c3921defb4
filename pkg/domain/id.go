package domain

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// ID is the unique identifier of a record of type T. The type parameter is a
// phantom: it exists only so identifiers of different record kinds cannot be
// mixed up.
type ID[T any] struct {
	value uuid.UUID
}

// NewID mints a random identifier.
func NewID[T any]() ID[T] {
	return ID[T]{value: uuid.New()}
}

// ParseID parses the textual form of an identifier.
func ParseID[T any](s string) (ID[T], error) {
	value, err := uuid.Parse(s)
	if err != nil {
		return ID[T]{}, fmt.Errorf("parse id: %w", err)
	}
	return ID[T]{value: value}, nil
}

// IsZero reports whether the identifier has never been set.
func (id ID[T]) IsZero() bool {
	return id.value == uuid.Nil
}

// String returns the textual form of the identifier.
func (id ID[T]) String() string {
	return id.value.String()
}

// Compare orders identifiers by their byte representation. It reports -1, 0
// or 1 as id is less than, equal to, or greater than other.
func (id ID[T]) Compare(other ID[T]) int {
	return bytes.Compare(id.value[:], other.value[:])
}

// MarshalText encodes the identifier as its textual form.
func (id ID[T]) MarshalText() ([]byte, error) {
	return []byte(id.value.String()), nil
}

// UnmarshalText decodes the identifier from its textual form.
func (id *ID[T]) UnmarshalText(text []byte) error {
	value, err := uuid.Parse(string(text))
	if err != nil {
		return fmt.Errorf("parse id: %w", err)
	}
	id.value = value
	return nil
}
