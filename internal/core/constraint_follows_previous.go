package core

import "github.com/HectorMRC/ithaca/pkg/domain"

// NewExperienceKindFollowsPrevious returns the constraint requiring the
// nearest experience preceding the subject on the timeline, if any, to be
// compatible with being followed: nothing can follow a terminal experience.
func NewExperienceKindFollowsPrevious(subject *domain.ExperiencedEvent) Constraint {
	return &experienceKindFollowsPrevious{subject: subject}
}

type experienceKindFollowsPrevious struct {
	subject  *domain.ExperiencedEvent
	previous *domain.ExperiencedEvent
}

func (c *experienceKindFollowsPrevious) Name() string { return "experience_kind_follows_previous" }

// With tracks the chronologically nearest experienced event preceding the
// subject. A single unit never violates this rule by itself.
func (c *experienceKindFollowsPrevious) With(ev *domain.ExperiencedEvent) error {
	if !ev.Event.Period.Before(c.subject.Event.Period) {
		return nil
	}
	if c.previous == nil || c.previous.Event.Period.Before(ev.Event.Period) {
		c.previous = ev
	}
	return nil
}

func (c *experienceKindFollowsPrevious) Result() error {
	if c.previous != nil && c.previous.Experience.Kind() == domain.KindTerminal {
		return domain.ConstraintViolationError{
			Constraint: c.Name(),
			Event:      c.previous.Event.ID,
			Message:    "an experience cannot follow a terminal one",
		}
	}
	return nil
}
