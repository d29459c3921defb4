package core

import "github.com/HectorMRC/ithaca/pkg/domain"

// NewExperienceBelongsToOneOfPrevious returns the constraint requiring the
// subject's entity to come out of the experience immediately preceding it on
// the timeline: it must be that experience's subject or be referenced by one
// of its profiles. The first experience of a timeline is unconstrained.
func NewExperienceBelongsToOneOfPrevious(subject *domain.ExperiencedEvent) Constraint {
	return &experienceBelongsToOneOfPrevious{subject: subject}
}

type experienceBelongsToOneOfPrevious struct {
	subject  *domain.ExperiencedEvent
	previous *domain.ExperiencedEvent
}

func (c *experienceBelongsToOneOfPrevious) Name() string {
	return "experience_belongs_to_one_of_previous"
}

// With tracks the chronologically nearest experienced event preceding the
// subject. A single unit never violates this rule by itself.
func (c *experienceBelongsToOneOfPrevious) With(ev *domain.ExperiencedEvent) error {
	if !ev.Event.Period.Before(c.subject.Event.Period) {
		return nil
	}
	if c.previous == nil || c.previous.Event.Period.Before(ev.Event.Period) {
		c.previous = ev
	}
	return nil
}

func (c *experienceBelongsToOneOfPrevious) Result() error {
	if c.previous == nil {
		return nil
	}
	entity := c.subject.Experience.Entity
	if c.previous.Experience.Entity == entity {
		return nil
	}
	for _, profile := range c.previous.Experience.Profiles {
		if profile.Entity == entity {
			return nil
		}
	}
	return domain.ConstraintViolationError{
		Constraint: c.Name(),
		Event:      c.previous.Event.ID,
		Message:    "the subject does not come out of its previous experience",
	}
}
