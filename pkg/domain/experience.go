package domain

import "slices"

// ExperienceKind classifies an experience by its effect on the subject's
// timeline.
type ExperienceKind string

const (
	// KindTransitive marks an experience that hands the subject over to the
	// entities referenced by its profiles; further experiences may follow.
	KindTransitive ExperienceKind = "transitive"
	// KindTerminal marks an experience with no outgoing profiles; nothing can
	// follow it on the subject's timeline.
	KindTerminal ExperienceKind = "terminal"
)

// Profile describes the state of one referenced entity as it comes out of an
// event, as a free-form mapping from field name to value.
type Profile struct {
	Entity Entity            `json:"entity"`
	Values map[string]string `json:"values,omitempty"`
}

// Experience is the composed view of an entity taking part in an event,
// together with the profiles of every entity involved. It is reconstructed
// fresh on every read or write acquisition and never persisted as such; only
// its raw projection is.
type Experience struct {
	ID       ID[Experience] `json:"id"`
	Entity   Entity         `json:"entity"`
	Event    Event          `json:"event"`
	Profiles []Profile      `json:"profiles,omitempty"`
}

// Identity returns the experience's identifier.
func (x Experience) Identity() ID[Experience] {
	return x.ID
}

// Kind classifies the experience: transitive when it carries at least one
// profile, terminal otherwise.
func (x Experience) Kind() ExperienceKind {
	if len(x.Profiles) > 0 {
		return KindTransitive
	}
	return KindTerminal
}

// RawProfile is the stored projection of a Profile: the referenced entity is
// kept by identifier only.
type RawProfile struct {
	Entity ID[Entity]        `json:"entity"`
	Values map[string]string `json:"values,omitempty"`
}

// Identity returns the identifier of the entity the profile belongs to.
func (p RawProfile) Identity() ID[Entity] {
	return p.Entity
}

// RawExperience is the stored projection of an Experience: all
// cross-references are kept by identifier only. This is the shape any durable
// store persists.
type RawExperience struct {
	ID       ID[Experience] `json:"id"`
	Entity   ID[Entity]     `json:"entity"`
	Event    ID[Event]      `json:"event"`
	Profiles []RawProfile   `json:"profiles,omitempty"`
}

// Identity returns the experience's identifier.
func (r RawExperience) Identity() ID[Experience] {
	return r.ID
}

// Kind classifies the raw experience the same way Experience.Kind does.
func (r RawExperience) Kind() ExperienceKind {
	if len(r.Profiles) > 0 {
		return KindTransitive
	}
	return KindTerminal
}

// RawFrom projects an experience into its stored shape. It is the exact
// inverse of aggregate hydration for every referenced-id field.
func RawFrom(x Experience) RawExperience {
	raw := RawExperience{
		ID:     x.ID,
		Entity: x.Entity.ID,
		Event:  x.Event.ID,
	}
	for _, profile := range x.Profiles {
		values := make(map[string]string, len(profile.Values))
		for k, v := range profile.Values {
			values[k] = v
		}
		raw.Profiles = append(raw.Profiles, RawProfile{
			Entity: profile.Entity.ID,
			Values: values,
		})
	}
	return raw
}

// Clone returns a deep copy of the raw experience.
func (r RawExperience) Clone() RawExperience {
	cp := r
	cp.Profiles = nil
	for _, profile := range r.Profiles {
		values := make(map[string]string, len(profile.Values))
		for k, v := range profile.Values {
			values[k] = v
		}
		cp.Profiles = append(cp.Profiles, RawProfile{Entity: profile.Entity, Values: values})
	}
	return cp
}

// RelatedEntities returns the deduplicated set of entity identifiers the raw
// experience references, in ascending order. Resolving references in this
// order keeps multi-resource lock acquisition deadlock free.
func (r RawExperience) RelatedEntities() []ID[Entity] {
	seen := map[ID[Entity]]struct{}{r.Entity: {}}
	for _, profile := range r.Profiles {
		seen[profile.Entity] = struct{}{}
	}
	ids := make([]ID[Entity], 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, ID[Entity].Compare)
	return ids
}

// ExperiencedEvent correlates one experience with the event it refers to. It
// is the unit of context a Constraint consumes; constraints only borrow it
// for the duration of validation.
type ExperiencedEvent struct {
	Experience *RawExperience
	Event      *Event
}
