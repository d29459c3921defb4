package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestIDRoundTripsThroughText(t *testing.T) {
	id := NewID[Entity]()
	parsed, err := ParseID[Entity](id.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != id {
		t.Fatalf("expected %s, got %s", id, parsed)
	}
}

func TestIDZeroValue(t *testing.T) {
	var id ID[Entity]
	if !id.IsZero() {
		t.Fatal("zero identifier must report IsZero")
	}
	if NewID[Entity]().IsZero() {
		t.Fatal("minted identifier must not report IsZero")
	}
}

func TestIDCompareIsAnOrder(t *testing.T) {
	a, b := NewID[Entity](), NewID[Entity]()
	if a.Compare(a) != 0 {
		t.Fatal("identifier must equal itself")
	}
	if a.Compare(b) != -b.Compare(a) {
		t.Fatal("compare must be antisymmetric")
	}
}

func TestIDMarshalsInsideRecords(t *testing.T) {
	entity := Entity{ID: NewID[Entity](), Name: "ulysses"}
	data, err := json.Marshal(entity)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Entity
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID != entity.ID || decoded.Name != entity.Name {
		t.Fatalf("unexpected round trip: %+v", decoded)
	}
}

func period(t *testing.T, lo, hi string) Period {
	t.Helper()
	parse := func(s string) time.Time {
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		return v
	}
	return NewPeriod(parse(lo), parse(hi))
}

func TestNewPeriodSwapsOutOfOrderBounds(t *testing.T) {
	p := period(t, "2020-06-01T00:00:00Z", "2020-01-01T00:00:00Z")
	if p.Hi.Before(p.Lo) {
		t.Fatalf("bounds not normalized: %+v", p)
	}
}

func TestPeriodOrdering(t *testing.T) {
	early := period(t, "2020-01-01T00:00:00Z", "2020-02-01T00:00:00Z")
	late := period(t, "2020-03-01T00:00:00Z", "2020-04-01T00:00:00Z")
	overlapping := period(t, "2020-01-15T00:00:00Z", "2020-03-15T00:00:00Z")

	if !early.Before(late) || late.Before(early) {
		t.Fatal("expected early < late")
	}
	if !late.After(early) {
		t.Fatal("expected late > early")
	}
	if early.Overlaps(late) {
		t.Fatal("disjoint periods must not overlap")
	}
	if !overlapping.Overlaps(early) || !overlapping.Overlaps(late) {
		t.Fatal("expected overlaps")
	}
	if !early.Overlaps(early) {
		t.Fatal("a period overlaps itself")
	}
}

func TestExperienceKind(t *testing.T) {
	x := Experience{ID: NewID[Experience]()}
	if x.Kind() != KindTerminal {
		t.Fatalf("profileless experience must be terminal, got %s", x.Kind())
	}
	x.Profiles = append(x.Profiles, Profile{Entity: Entity{ID: NewID[Entity]()}})
	if x.Kind() != KindTransitive {
		t.Fatalf("profiled experience must be transitive, got %s", x.Kind())
	}
}

func TestRawFromProjectsReferences(t *testing.T) {
	entity := Entity{ID: NewID[Entity](), Name: "ulysses"}
	other := Entity{ID: NewID[Entity](), Name: "penelope"}
	event := Event{ID: NewID[Event](), Name: "odyssey"}
	x := Experience{
		ID:     NewID[Experience](),
		Entity: entity,
		Event:  event,
		Profiles: []Profile{
			{Entity: other, Values: map[string]string{"mood": "waiting"}},
		},
	}

	raw := RawFrom(x)
	if raw.ID != x.ID || raw.Entity != entity.ID || raw.Event != event.ID {
		t.Fatalf("unexpected projection: %+v", raw)
	}
	if len(raw.Profiles) != 1 || raw.Profiles[0].Entity != other.ID {
		t.Fatalf("unexpected profiles: %+v", raw.Profiles)
	}
	if raw.Profiles[0].Values["mood"] != "waiting" {
		t.Fatal("profile values must be carried over")
	}
}

func TestRawExperienceCloneIsDeep(t *testing.T) {
	raw := RawExperience{
		ID:     NewID[Experience](),
		Entity: NewID[Entity](),
		Event:  NewID[Event](),
		Profiles: []RawProfile{
			{Entity: NewID[Entity](), Values: map[string]string{"k": "v"}},
		},
	}
	cp := raw.Clone()
	cp.Profiles[0].Values["k"] = "mutated"
	if raw.Profiles[0].Values["k"] != "v" {
		t.Fatal("clone must not alias profile values")
	}
}

func TestRelatedEntitiesDeduplicatesAndSortsAscending(t *testing.T) {
	subject := NewID[Entity]()
	other := NewID[Entity]()
	raw := RawExperience{
		ID:     NewID[Experience](),
		Entity: subject,
		Event:  NewID[Event](),
		Profiles: []RawProfile{
			{Entity: other},
			{Entity: subject}, // duplicate of the subject
		},
	}

	ids := raw.RelatedEntities()
	if len(ids) != 2 {
		t.Fatalf("expected 2 unique entities, got %d", len(ids))
	}
	if ids[0].Compare(ids[1]) >= 0 {
		t.Fatal("expected ascending order")
	}
}

func TestFiltersMatchOnPopulatedFieldsOnly(t *testing.T) {
	entity := Entity{ID: NewID[Entity](), Name: "ulysses"}
	if !(EntityFilter{}).Matches(entity) {
		t.Fatal("empty filter must match everything")
	}
	if !(EntityFilter{Name: "ulysses"}).Matches(entity) {
		t.Fatal("expected name match")
	}
	if (EntityFilter{Name: "penelope"}).Matches(entity) {
		t.Fatal("expected name mismatch")
	}
	if (EntityFilter{ID: NewID[Entity]()}).Matches(entity) {
		t.Fatal("expected id mismatch")
	}

	raw := RawExperience{ID: NewID[Experience](), Entity: entity.ID, Event: NewID[Event]()}
	if !(ExperienceFilter{Entity: entity.ID}).Matches(raw) {
		t.Fatal("expected entity match")
	}
	if (ExperienceFilter{Event: NewID[Event]()}).Matches(raw) {
		t.Fatal("expected event mismatch")
	}
}

func TestErrorTaxonomyMatchesSentinels(t *testing.T) {
	var err error = NotFoundError{Kind: KindEntity, ID: "x"}
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("NotFoundError must match ErrNotFound")
	}
	err = AlreadyExistsError{Kind: KindEvent, ID: "x"}
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatal("AlreadyExistsError must match ErrAlreadyExists")
	}
	err = ConstraintViolationError{Constraint: "c", Message: "m"}
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatal("ConstraintViolationError must match ErrConstraintViolation")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("sentinels must not cross-match")
	}
}

func TestPlaceholdersKeepIdentifier(t *testing.T) {
	id := NewID[Entity]()
	if got := PlaceholderEntity(id); got.ID != id || got.Name != "" {
		t.Fatalf("unexpected placeholder: %+v", got)
	}
	eid := NewID[Event]()
	if got := PlaceholderEvent(eid); got.ID != eid || !got.Period.IsZero() {
		t.Fatalf("unexpected placeholder: %+v", got)
	}
}
