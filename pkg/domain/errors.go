package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Typed errors below match these
// through errors.Is so callers can branch without unpacking.
var (
	// ErrNotFound reports a lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists reports a duplicate create.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConstraintViolation reports a domain-rule failure.
	ErrConstraintViolation = errors.New("constraint violation")
)

// NotFoundError is returned when a record lookup misses.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Is matches the ErrNotFound sentinel.
func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError is returned when a create collides with a stored record.
type AlreadyExistsError struct {
	Kind Kind
	ID   string
}

func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Kind, e.ID)
}

// Is matches the ErrAlreadyExists sentinel.
func (e AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ConstraintViolationError reports which constraint failed and which event
// triggered the violation.
type ConstraintViolationError struct {
	Constraint string
	Event      ID[Event]
	Message    string
}

func (e ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint %s violated by event %s: %s", e.Constraint, e.Event, e.Message)
}

// Is matches the ErrConstraintViolation sentinel.
func (e ConstraintViolationError) Is(target error) bool {
	return target == ErrConstraintViolation
}
