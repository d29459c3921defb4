// Package core wires the ithaca data layer together: the constraint chain
// validating temporal invariants, the application service composing
// repositories with insertion triggers, storage driver selection, and the
// observability exporters.
package core

import "github.com/HectorMRC/ithaca/pkg/domain"

// Constraint is a condition that must be satisfied for a new experience to
// join its subject's timeline. It consumes the timeline incrementally, one
// experienced event at a time; the context is only borrowed for the duration
// of validation.
type Constraint interface {
	// Name identifies the constraint in violation reports.
	Name() string
	// With feeds one already-recorded experienced event into the constraint.
	// It returns an error if, and only if, that single unit already violates
	// the rule.
	With(ev *domain.ExperiencedEvent) error
	// Result returns the same error as With, if any. Otherwise it returns the
	// final verdict of the constraint once every unit has been fed in.
	Result() error
}

// ConstraintChain composes constraints last-in first-out: With reaches the
// newest constraint first, and Result collects verdicts in that same order,
// short-circuiting on the first failing member. The empty chain is the
// identity: it accepts everything.
type ConstraintChain struct {
	constraints []Constraint
}

// NewConstraintChain returns an empty constraint chain.
func NewConstraintChain() *ConstraintChain {
	return &ConstraintChain{}
}

// Chain attaches the given constraint on top of the chain.
func (c *ConstraintChain) Chain(cnst Constraint) *ConstraintChain {
	c.constraints = append(c.constraints, cnst)
	return c
}

// With feeds one experienced event into every chained constraint,
// newest-first, short-circuiting on the first violation.
func (c *ConstraintChain) With(ev *domain.ExperiencedEvent) error {
	for i := len(c.constraints) - 1; i >= 0; i-- {
		if err := c.constraints[i].With(ev); err != nil {
			return err
		}
	}
	return nil
}

// Result collects every chained constraint's verdict, newest-first,
// short-circuiting on the first violation.
func (c *ConstraintChain) Result() error {
	for i := len(c.constraints) - 1; i >= 0; i-- {
		if err := c.constraints[i].Result(); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultConstraintChain builds the chain of default temporal constraints
// for the given subject. The attachment order is fixed but arbitrary:
// changing it only changes which violation is reported first, never whether
// the chain as a whole fails.
func NewDefaultConstraintChain(subject *domain.ExperiencedEvent) *ConstraintChain {
	return NewConstraintChain().
		Chain(NewExperienceBelongsToOneOfPrevious(subject)).
		Chain(NewExperienceKindFollowsPrevious(subject)).
		Chain(NewExperienceKindPrecedesNext(subject)).
		Chain(NewExperienceIsNotSimultaneous(subject))
}
