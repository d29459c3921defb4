package core

import "github.com/HectorMRC/ithaca/pkg/domain"

// NewExperienceKindPrecedesNext returns the constraint requiring the subject
// to be compatible with the experience following it on the timeline, if any:
// a terminal experience cannot precede another one.
func NewExperienceKindPrecedesNext(subject *domain.ExperiencedEvent) Constraint {
	return &experienceKindPrecedesNext{subject: subject}
}

type experienceKindPrecedesNext struct {
	subject *domain.ExperiencedEvent
	next    *domain.ExperiencedEvent
}

func (c *experienceKindPrecedesNext) Name() string { return "experience_kind_precedes_next" }

// With tracks the chronologically nearest experienced event following the
// subject. A single unit never violates this rule by itself.
func (c *experienceKindPrecedesNext) With(ev *domain.ExperiencedEvent) error {
	if !ev.Event.Period.After(c.subject.Event.Period) {
		return nil
	}
	if c.next == nil || ev.Event.Period.Before(c.next.Event.Period) {
		c.next = ev
	}
	return nil
}

func (c *experienceKindPrecedesNext) Result() error {
	if c.next != nil && c.subject.Experience.Kind() == domain.KindTerminal {
		return domain.ConstraintViolationError{
			Constraint: c.Name(),
			Event:      c.next.Event.ID,
			Message:    "a terminal experience cannot precede another one",
		}
	}
	return nil
}
