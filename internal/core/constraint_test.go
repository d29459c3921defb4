package core

import (
	"errors"
	"testing"
	"time"

	"github.com/HectorMRC/ithaca/pkg/domain"
)

var day0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func experiencedEvent(t *testing.T, entity domain.ID[Entity], fromDay, toDay int, profiles ...domain.ID[Entity]) *ExperiencedEvent {
	t.Helper()
	event := Event{
		ID:     domain.NewID[Event](),
		Name:   "event",
		Period: domain.NewPeriod(day0.AddDate(0, 0, fromDay), day0.AddDate(0, 0, toDay)),
	}
	raw := RawExperience{
		ID:     domain.NewID[Experience](),
		Entity: entity,
		Event:  event.ID,
	}
	for _, p := range profiles {
		raw.Profiles = append(raw.Profiles, domain.RawProfile{Entity: p})
	}
	return &ExperiencedEvent{Experience: &raw, Event: &event}
}

func TestIsNotSimultaneousRejectsOverlap(t *testing.T) {
	entity := domain.NewID[Entity]()
	subject := experiencedEvent(t, entity, 10, 20)
	cnst := NewExperienceIsNotSimultaneous(subject)

	if err := cnst.With(experiencedEvent(t, entity, 0, 5)); err != nil {
		t.Fatalf("disjoint event must pass: %v", err)
	}
	err := cnst.With(experiencedEvent(t, entity, 15, 25))
	if !errors.Is(err, domain.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
}

func TestKindFollowsPreviousRejectsTerminalPredecessor(t *testing.T) {
	entity := domain.NewID[Entity]()
	other := domain.NewID[Entity]()
	subject := experiencedEvent(t, entity, 10, 20)

	// terminal predecessor: no profiles
	cnst := NewExperienceKindFollowsPrevious(subject)
	if err := cnst.With(experiencedEvent(t, entity, 0, 5)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := cnst.Result(); !errors.Is(err, domain.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}

	// transitive predecessor passes
	cnst = NewExperienceKindFollowsPrevious(subject)
	if err := cnst.With(experiencedEvent(t, entity, 0, 5, other)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := cnst.Result(); err != nil {
		t.Fatalf("transitive predecessor must pass: %v", err)
	}

	// no predecessor at all passes
	cnst = NewExperienceKindFollowsPrevious(subject)
	if err := cnst.Result(); err != nil {
		t.Fatalf("empty timeline must pass: %v", err)
	}
}

func TestKindFollowsPreviousTracksNearestPredecessor(t *testing.T) {
	entity := domain.NewID[Entity]()
	other := domain.NewID[Entity]()
	subject := experiencedEvent(t, entity, 20, 30)

	cnst := NewExperienceKindFollowsPrevious(subject)
	// the terminal one is older; the nearest predecessor is transitive
	if err := cnst.With(experiencedEvent(t, entity, 0, 2)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := cnst.With(experiencedEvent(t, entity, 5, 10, other)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := cnst.Result(); err != nil {
		t.Fatalf("nearest predecessor is transitive, must pass: %v", err)
	}
}

func TestKindPrecedesNextRejectsTerminalSubjectWithSuccessor(t *testing.T) {
	entity := domain.NewID[Entity]()
	other := domain.NewID[Entity]()

	// terminal subject with a successor fails
	terminal := experiencedEvent(t, entity, 10, 20)
	cnst := NewExperienceKindPrecedesNext(terminal)
	if err := cnst.With(experiencedEvent(t, entity, 30, 40)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := cnst.Result(); !errors.Is(err, domain.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}

	// terminal subject with no successor passes
	cnst = NewExperienceKindPrecedesNext(terminal)
	if err := cnst.Result(); err != nil {
		t.Fatalf("terminal tail must pass: %v", err)
	}

	// transitive subject with a successor passes
	transitive := experiencedEvent(t, entity, 10, 20, other)
	cnst = NewExperienceKindPrecedesNext(transitive)
	if err := cnst.With(experiencedEvent(t, entity, 30, 40)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := cnst.Result(); err != nil {
		t.Fatalf("transitive subject must pass: %v", err)
	}
}

func TestBelongsToOneOfPrevious(t *testing.T) {
	entity := domain.NewID[Entity]()
	stranger := domain.NewID[Entity]()
	subject := experiencedEvent(t, entity, 10, 20)

	// no previous experience: unconstrained
	cnst := NewExperienceBelongsToOneOfPrevious(subject)
	if err := cnst.Result(); err != nil {
		t.Fatalf("first experience must pass: %v", err)
	}

	// previous experience of the same subject passes
	cnst = NewExperienceBelongsToOneOfPrevious(subject)
	if err := cnst.With(experiencedEvent(t, entity, 0, 5, stranger)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := cnst.Result(); err != nil {
		t.Fatalf("same subject must pass: %v", err)
	}

	// previous experience of a stranger, profiling the subject, passes
	cnst = NewExperienceBelongsToOneOfPrevious(subject)
	if err := cnst.With(experiencedEvent(t, stranger, 0, 5, entity)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := cnst.Result(); err != nil {
		t.Fatalf("profiled subject must pass: %v", err)
	}

	// previous experience not involving the subject fails
	cnst = NewExperienceBelongsToOneOfPrevious(subject)
	if err := cnst.With(experiencedEvent(t, stranger, 0, 5)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := cnst.Result(); !errors.Is(err, domain.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
}

func TestConstraintChainShortCircuitsInWith(t *testing.T) {
	entity := domain.NewID[Entity]()
	subject := experiencedEvent(t, entity, 10, 20)
	chain := NewDefaultConstraintChain(subject)

	err := chain.With(experiencedEvent(t, entity, 15, 25))
	if !errors.Is(err, domain.ErrConstraintViolation) {
		t.Fatalf("expected immediate violation for overlap, got %v", err)
	}
}

func TestConstraintChainResultReportsNewestAttachedViolation(t *testing.T) {
	entity := domain.NewID[Entity]()
	subject := experiencedEvent(t, entity, 10, 20) // terminal

	// a terminal predecessor and a successor make both kind constraints fail
	// in Result
	feed := func(t *testing.T, chain *ConstraintChain) {
		t.Helper()
		if err := chain.With(experiencedEvent(t, entity, 0, 5)); err != nil {
			t.Fatalf("with: %v", err)
		}
		if err := chain.With(experiencedEvent(t, entity, 30, 40)); err != nil {
			t.Fatalf("with: %v", err)
		}
	}

	chain := NewConstraintChain().
		Chain(NewExperienceKindFollowsPrevious(subject)).
		Chain(NewExperienceKindPrecedesNext(subject))
	feed(t, chain)
	var violation domain.ConstraintViolationError
	if err := chain.Result(); !errors.As(err, &violation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
	if violation.Constraint != "experience_kind_precedes_next" {
		t.Fatalf("expected the newest attached violation, got %s", violation.Constraint)
	}

	// reversing the attachment order reverses the reported violation
	chain = NewConstraintChain().
		Chain(NewExperienceKindPrecedesNext(subject)).
		Chain(NewExperienceKindFollowsPrevious(subject))
	feed(t, chain)
	if err := chain.Result(); !errors.As(err, &violation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
	if violation.Constraint != "experience_kind_follows_previous" {
		t.Fatalf("expected the newest attached violation, got %s", violation.Constraint)
	}
}

func TestConstraintChainEmptyAcceptsEverything(t *testing.T) {
	entity := domain.NewID[Entity]()
	chain := NewConstraintChain()
	if err := chain.With(experiencedEvent(t, entity, 0, 5)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := chain.Result(); err != nil {
		t.Fatalf("result: %v", err)
	}
}

func TestDefaultChainAcceptsWellFormedTimeline(t *testing.T) {
	entity := domain.NewID[Entity]()
	other := domain.NewID[Entity]()
	subject := experiencedEvent(t, entity, 20, 30)
	chain := NewDefaultConstraintChain(subject)

	if err := chain.With(experiencedEvent(t, entity, 0, 10, other)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := chain.Result(); err != nil {
		t.Fatalf("result: %v", err)
	}
}
