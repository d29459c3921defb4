package core

import "github.com/HectorMRC/ithaca/pkg/domain"

// NewExperienceIsNotSimultaneous returns the constraint rejecting a subject
// whose event overlaps an already-recorded experienced event.
func NewExperienceIsNotSimultaneous(subject *domain.ExperiencedEvent) Constraint {
	return &experienceIsNotSimultaneous{subject: subject}
}

type experienceIsNotSimultaneous struct {
	subject *domain.ExperiencedEvent
}

func (c *experienceIsNotSimultaneous) Name() string { return "experience_is_not_simultaneous" }

// With fails as soon as a fed event overlaps the subject's period.
func (c *experienceIsNotSimultaneous) With(ev *domain.ExperiencedEvent) error {
	if ev.Event.Period.Overlaps(c.subject.Event.Period) {
		return domain.ConstraintViolationError{
			Constraint: c.Name(),
			Event:      ev.Event.ID,
			Message:    "the subject already experiences a simultaneous event",
		}
	}
	return nil
}

func (c *experienceIsNotSimultaneous) Result() error {
	return nil
}
