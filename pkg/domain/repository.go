package domain

import "github.com/HectorMRC/ithaca/pkg/transaction"

// EntityRepository stores entities behind transactional handles.
type EntityRepository interface {
	Find(id ID[Entity]) (transaction.Tx[Entity], error)
	Filter(filter EntityFilter) ([]transaction.Tx[Entity], error)
	Create(entity Entity) error
	Delete(id ID[Entity]) error
}

// EventRepository stores events behind transactional handles.
type EventRepository interface {
	Find(id ID[Event]) (transaction.Tx[Event], error)
	Filter(filter EventFilter) ([]transaction.Tx[Event], error)
	Create(event Event) error
	Delete(id ID[Event]) error
}

// ExperienceRepository stores experiences behind transactional handles over
// their composed aggregate view.
type ExperienceRepository interface {
	Find(id ID[Experience]) (transaction.Tx[Experience], error)
	Filter(filter ExperienceFilter) ([]transaction.Tx[Experience], error)
	Create(experience Experience) error
	Delete(id ID[Experience]) error
}
