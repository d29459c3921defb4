package core

import "github.com/HectorMRC/ithaca/pkg/domain"

type (
	Entity           = domain.Entity
	Event            = domain.Event
	Experience       = domain.Experience
	Profile          = domain.Profile
	RawExperience    = domain.RawExperience
	ExperiencedEvent = domain.ExperiencedEvent
	Period           = domain.Period
	Snapshot         = domain.Snapshot
	Change           = domain.Change
	PersistentStore  = domain.PersistentStore

	EntityFilter     = domain.EntityFilter
	EventFilter      = domain.EventFilter
	ExperienceFilter = domain.ExperienceFilter
)

const (
	KindEntity     = domain.KindEntity
	KindEvent      = domain.KindEvent
	KindExperience = domain.KindExperience
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
