package domain

// EntityFilter selects entities by exact match on its populated fields. An
// unpopulated field always matches.
type EntityFilter struct {
	ID   ID[Entity]
	Name string
}

// Matches reports whether the entity satisfies every populated filter field.
// Matching short-circuits on the first mismatch.
func (f EntityFilter) Matches(entity Entity) bool {
	if !f.ID.IsZero() && f.ID != entity.ID {
		return false
	}
	if f.Name != "" && f.Name != entity.Name {
		return false
	}
	return true
}

// EventFilter selects events by exact match on its populated fields.
type EventFilter struct {
	ID   ID[Event]
	Name string
}

// Matches reports whether the event satisfies every populated filter field.
func (f EventFilter) Matches(event Event) bool {
	if !f.ID.IsZero() && f.ID != event.ID {
		return false
	}
	if f.Name != "" && f.Name != event.Name {
		return false
	}
	return true
}

// ExperienceFilter selects stored experiences by exact match on its populated
// fields.
type ExperienceFilter struct {
	ID     ID[Experience]
	Entity ID[Entity]
	Event  ID[Event]
}

// Matches reports whether the raw experience satisfies every populated filter
// field.
func (f ExperienceFilter) Matches(raw RawExperience) bool {
	if !f.ID.IsZero() && f.ID != raw.ID {
		return false
	}
	if !f.Entity.IsZero() && f.Entity != raw.Entity {
		return false
	}
	if !f.Event.IsZero() && f.Event != raw.Event {
		return false
	}
	return true
}
