package domain

// Snapshot captures the serialized state of every repository: plain entity
// and event records plus raw experience projections. It is the unit durable
// stores persist and blob archives ship around.
type Snapshot struct {
	Entities    []Entity        `json:"entities,omitempty"`
	Events      []Event         `json:"events,omitempty"`
	Experiences []RawExperience `json:"experiences,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	cp := Snapshot{}
	for _, entity := range s.Entities {
		entity.Tags = append([]string(nil), entity.Tags...)
		cp.Entities = append(cp.Entities, entity)
	}
	cp.Events = append(cp.Events, s.Events...)
	for _, raw := range s.Experiences {
		cp.Experiences = append(cp.Experiences, raw.Clone())
	}
	return cp
}

// PersistentStore is a minimal abstraction over storage backends. The core
// only ever talks to the repositories; export and import exist so durable
// implementations and archives can snapshot the full state.
type PersistentStore interface {
	Entities() EntityRepository
	Events() EventRepository
	Experiences() ExperienceRepository
	ExportState() Snapshot
	ImportState(Snapshot)
}
