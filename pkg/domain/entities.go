// Package domain defines the core record types, value objects, and contracts
// shared by the ithaca data layer: entities, events, experiences, their
// repositories, and the error taxonomy.
package domain

import "time"

// Kind identifies the type of record stored in the data layer.
type Kind string

// Supported record kinds used in Change records and persistence buckets.
const (
	// KindEntity identifies an entity record.
	KindEntity Kind = "entity"
	// KindEvent identifies an event record.
	KindEvent Kind = "event"
	// KindExperience identifies an experience record.
	KindExperience Kind = "experience"
)

// Entity is anything which to interact with: a person, a place, an artifact.
type Entity struct {
	ID   ID[Entity] `json:"id"`
	Name string     `json:"name"`
	Tags []string   `json:"tags,omitempty"`
}

// Identity returns the entity's identifier.
func (e Entity) Identity() ID[Entity] {
	return e.ID
}

// PlaceholderEntity returns an empty-default entity tagged with the given
// identifier. It stands in for references that no longer resolve.
func PlaceholderEntity(id ID[Entity]) Entity {
	return Entity{ID: id}
}

// Period is the closed time interval during which an event takes place.
type Period struct {
	Lo time.Time `json:"lo"`
	Hi time.Time `json:"hi"`
}

// NewPeriod builds a period, swapping the bounds when given out of order.
func NewPeriod(lo, hi time.Time) Period {
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	return Period{Lo: lo, Hi: hi}
}

// IsZero reports whether the period has never been set.
func (p Period) IsZero() bool {
	return p.Lo.IsZero() && p.Hi.IsZero()
}

// Before reports whether p ends strictly before other begins.
func (p Period) Before(other Period) bool {
	return p.Hi.Before(other.Lo)
}

// After reports whether p begins strictly after other ends.
func (p Period) After(other Period) bool {
	return other.Hi.Before(p.Lo)
}

// Overlaps reports whether the two periods share at least one instant.
func (p Period) Overlaps(other Period) bool {
	return !p.Before(other) && !p.After(other)
}

// Event is something that happens during a period of time.
type Event struct {
	ID     ID[Event] `json:"id"`
	Name   string    `json:"name"`
	Period Period    `json:"period"`
}

// Identity returns the event's identifier.
func (e Event) Identity() ID[Event] {
	return e.ID
}

// PlaceholderEvent returns an empty-default event tagged with the given
// identifier. It stands in for references that no longer resolve.
func PlaceholderEvent(id ID[Event]) Event {
	return Event{ID: id}
}
