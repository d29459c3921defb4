package memory

import (
	"github.com/HectorMRC/ithaca/pkg/domain"
	"github.com/HectorMRC/ithaca/pkg/resource"
	"github.com/HectorMRC/ithaca/pkg/transaction"
)

// ExperienceAggregate is the transactional handle over one experience and the
// records it references. The composed view is rebuilt fresh on every
// acquisition; only the raw record is stored, so reads always observe the
// referenced records' current values.
type ExperienceAggregate struct {
	experience *resource.Resource[domain.RawExperience]
	entities   domain.EntityRepository
	events     domain.EventRepository
}

// Read blocks until shared access to the raw record is granted, then hydrates
// the aggregate view.
func (a *ExperienceAggregate) Read() transaction.ReadGuard[domain.Experience] {
	guard := a.experience.Read()
	return &aggregateReadGuard{
		guard: guard,
		data:  a.hydrate(guard.Value()),
	}
}

// Write blocks until exclusive access to the raw record is granted, then
// hydrates the aggregate view. On commit the raw record is overwritten by
// re-deriving it from the mutated view.
func (a *ExperienceAggregate) Write() transaction.WriteGuard[domain.Experience] {
	guard := a.experience.Write()
	return &aggregateWriteGuard{
		guard: guard,
		data:  a.hydrate(*guard.Value()),
	}
}

// hydrate assembles the owned, detached aggregate view of the raw record.
// Every referenced identifier is resolved against the sibling repositories;
// references that no longer resolve degrade to placeholder records tagged
// with the original identifier.
func (a *ExperienceAggregate) hydrate(raw domain.RawExperience) domain.Experience {
	entities := a.resolveEntities(raw)
	lookup := func(id domain.ID[domain.Entity]) domain.Entity {
		if entity, ok := entities[id]; ok {
			return entity
		}
		return domain.PlaceholderEntity(id)
	}

	experience := domain.Experience{
		ID:     raw.ID,
		Entity: lookup(raw.Entity),
		Event:  a.resolveEvent(raw.Event),
	}
	for _, profile := range raw.Profiles {
		values := make(map[string]string, len(profile.Values))
		for k, v := range profile.Values {
			values[k] = v
		}
		experience.Profiles = append(experience.Profiles, domain.Profile{
			Entity: lookup(profile.Entity),
			Values: values,
		})
	}
	return experience
}

// resolveEntities reads every entity the raw record references. Resolution
// follows the ascending identifier order so any two concurrent operations
// over overlapping entity sets acquire them in the same relative order.
func (a *ExperienceAggregate) resolveEntities(raw domain.RawExperience) map[domain.ID[domain.Entity]]domain.Entity {
	ids := raw.RelatedEntities()
	out := make(map[domain.ID[domain.Entity]]domain.Entity, len(ids))
	for _, id := range ids {
		tx, err := a.entities.Find(id)
		if err != nil {
			out[id] = domain.PlaceholderEntity(id)
			continue
		}
		guard := tx.Read()
		out[id] = guard.Value()
		guard.Release()
	}
	return out
}

func (a *ExperienceAggregate) resolveEvent(id domain.ID[domain.Event]) domain.Event {
	tx, err := a.events.Find(id)
	if err != nil {
		return domain.PlaceholderEvent(id)
	}
	guard := tx.Read()
	defer guard.Release()
	return guard.Value()
}

type aggregateReadGuard struct {
	guard *resource.ReadGuard[domain.RawExperience]
	data  domain.Experience
}

func (g *aggregateReadGuard) Value() domain.Experience {
	return g.data
}

func (g *aggregateReadGuard) Release() {
	g.guard.Release()
}

type aggregateWriteGuard struct {
	guard *resource.WriteGuard[domain.RawExperience]
	data  domain.Experience
}

func (g *aggregateWriteGuard) Value() *domain.Experience {
	return &g.data
}

// Commit projects the mutated aggregate view back into the raw record. The
// identifier and the subject and event references are pinned to their stored
// values: they are immutable once created, only value-bearing fields follow
// the view.
func (g *aggregateWriteGuard) Commit() {
	stored := *g.guard.Value()
	raw := domain.RawFrom(g.data)
	raw.ID = stored.ID
	raw.Entity = stored.Entity
	raw.Event = stored.Event
	*g.guard.Value() = raw
	g.guard.Commit()
}

func (g *aggregateWriteGuard) Rollback() {
	g.guard.Rollback()
}
