package memory

import (
	"log/slog"
	"slices"

	"github.com/HectorMRC/ithaca/pkg/domain"
	"github.com/HectorMRC/ithaca/pkg/graph"
	"github.com/HectorMRC/ithaca/pkg/resource"
)

// Compile-time contract assertion ensuring the store satisfies the domain
// interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store groups the in-memory repositories over one shared set of records.
type Store struct {
	entities    *EntityRepository
	events      *EventRepository
	experiences *ExperienceRepository
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	entities := NewEntityRepository()
	events := NewEventRepository()
	return &Store{
		entities:    entities,
		events:      events,
		experiences: NewExperienceRepository(entities, events),
	}
}

// WithLogger sets the logger handed down to every repository.
func (s *Store) WithLogger(logger *slog.Logger) *Store {
	s.entities.WithLogger(logger)
	s.events.WithLogger(logger)
	s.experiences.WithLogger(logger)
	return s
}

// Entities returns the entity repository.
func (s *Store) Entities() domain.EntityRepository {
	return s.entities
}

// Events returns the event repository.
func (s *Store) Events() domain.EventRepository {
	return s.events
}

// Experiences returns the experience repository.
func (s *Store) Experiences() domain.ExperienceRepository {
	return s.experiences
}

// ExperienceRepository returns the concrete experience repository, granting
// access to its insertion-pipeline entry points.
func (s *Store) ExperienceRepository() *ExperienceRepository {
	return s.experiences
}

// ExportState captures the serialized state of every repository, ordered by
// ascending identifier for deterministic output.
func (s *Store) ExportState() domain.Snapshot {
	var snapshot domain.Snapshot

	s.entities.mu.RLock()
	s.entities.entities.Each(func(_ domain.ID[domain.Entity], res *resource.Resource[domain.Entity]) bool {
		_ = res.View(func(entity domain.Entity) error {
			entity.Tags = append([]string(nil), entity.Tags...)
			snapshot.Entities = append(snapshot.Entities, entity)
			return nil
		})
		return true
	})
	s.entities.mu.RUnlock()

	s.events.mu.RLock()
	s.events.events.Each(func(_ domain.ID[domain.Event], res *resource.Resource[domain.Event]) bool {
		_ = res.View(func(event domain.Event) error {
			snapshot.Events = append(snapshot.Events, event)
			return nil
		})
		return true
	})
	s.events.mu.RUnlock()

	_ = s.experiences.schema.View(func(g *graph.Graph[domain.ID[domain.Experience], ExperienceNode]) error {
		for _, node := range g.Nodes() {
			_ = node.res.View(func(raw domain.RawExperience) error {
				snapshot.Experiences = append(snapshot.Experiences, raw.Clone())
				return nil
			})
		}
		return nil
	})

	slices.SortFunc(snapshot.Entities, func(a, b domain.Entity) int { return a.ID.Compare(b.ID) })
	slices.SortFunc(snapshot.Events, func(a, b domain.Event) int { return a.ID.Compare(b.ID) })
	slices.SortFunc(snapshot.Experiences, func(a, b domain.RawExperience) int { return a.ID.Compare(b.ID) })
	return snapshot
}

// ImportState replaces the store contents with the given snapshot.
func (s *Store) ImportState(snapshot domain.Snapshot) {
	s.entities.mu.Lock()
	s.entities.entities = resource.NewMap[domain.ID[domain.Entity], domain.Entity]()
	for _, entity := range snapshot.Entities {
		entity.Tags = append([]string(nil), entity.Tags...)
		s.entities.entities.Set(entity.ID, resource.New(entity).WithLogger(s.entities.logger))
	}
	s.entities.mu.Unlock()

	s.events.mu.Lock()
	s.events.events = resource.NewMap[domain.ID[domain.Event], domain.Event]()
	for _, event := range snapshot.Events {
		s.events.events.Set(event.ID, resource.New(event).WithLogger(s.events.logger))
	}
	s.events.mu.Unlock()

	rebuilt := graph.New[domain.ID[domain.Experience], ExperienceNode]()
	for _, raw := range snapshot.Experiences {
		raw = raw.Clone()
		rebuilt.Insert(ExperienceNode{
			id:  raw.ID,
			res: resource.New(raw).WithLogger(s.experiences.logger),
		})
	}
	s.experiences.schema.Replace(rebuilt)
}
