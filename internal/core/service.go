package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/HectorMRC/ithaca/internal/infra/persistence/memory"
	"github.com/HectorMRC/ithaca/pkg/command"
	"github.com/HectorMRC/ithaca/pkg/domain"
	"github.com/HectorMRC/ithaca/pkg/schema"
)

// Flusher is implemented by stores that persist their state to a durable
// backend. The service flushes after every successful mutation.
type Flusher interface {
	Flush(ctx context.Context) error
}

// experiencePipeline is implemented by experience repositories exposing their
// insertion pipeline, so the service can attach its validation triggers.
type experiencePipeline interface {
	CreateWith(experience Experience, before []memory.BeforeInsertExperience, after []memory.AfterInsertExperience) error
}

// Service exposes the transactional operations of the data layer: CRUD over
// entities, events and experiences, with experience insertion validated by
// the default constraint chain.
type Service struct {
	store   PersistentStore
	logger  *slog.Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   *ChangeLog
}

// Option customizes a Service at construction time.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the recorder receiving every operation outcome.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Service) {
		s.metrics = rec
	}
}

// WithTracer sets the tracer spanning every operation.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		audit:  NewChangeLog(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// Changes returns a copy of every change applied through the service, in
// order.
func (s *Service) Changes() []Change {
	return s.audit.Changes()
}

// begin opens the observability scope of one operation. The returned function
// must be called exactly once with the operation's final error.
func (s *Service) begin(ctx context.Context, operation string) (context.Context, func(err error)) {
	start := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	return ctx, func(err error) {
		if span != nil {
			span.End(err)
		}
		if s.metrics != nil {
			s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
		}
	}
}

// flush persists the store state when the backend is durable.
func (s *Service) flush(ctx context.Context) error {
	flusher, ok := s.store.(Flusher)
	if !ok {
		return nil
	}
	if err := flusher.Flush(ctx); err != nil {
		return fmt.Errorf("flush state: %w", err)
	}
	return nil
}

// CreateEntity persists a new entity, minting an identifier when unset.
func (s *Service) CreateEntity(ctx context.Context, entity Entity) (_ Entity, err error) {
	ctx, done := s.begin(ctx, "create_entity")
	defer func() { done(err) }()

	if entity.Name == "" {
		return Entity{}, fmt.Errorf("entity name must not be empty")
	}
	if entity.ID.IsZero() {
		entity.ID = domain.NewID[Entity]()
	}
	if err = s.store.Entities().Create(entity); err != nil {
		return Entity{}, err
	}
	s.audit.Record(Change{Kind: KindEntity, Action: ActionCreate, ID: entity.ID.String()})
	if err = s.flush(ctx); err != nil {
		return Entity{}, err
	}
	return entity, nil
}

// GetEntity returns the current value of the entity stored under id.
func (s *Service) GetEntity(ctx context.Context, id domain.ID[Entity]) (_ Entity, err error) {
	_, done := s.begin(ctx, "get_entity")
	defer func() { done(err) }()

	tx, err := s.store.Entities().Find(id)
	if err != nil {
		return Entity{}, err
	}
	guard := tx.Read()
	defer guard.Release()
	return guard.Value(), nil
}

// FilterEntities returns the current value of every entity matching the
// filter, ordered by ascending identifier.
func (s *Service) FilterEntities(ctx context.Context, filter EntityFilter) (_ []Entity, err error) {
	_, done := s.begin(ctx, "filter_entities")
	defer func() { done(err) }()

	txs, err := s.store.Entities().Filter(filter)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(txs))
	for _, tx := range txs {
		guard := tx.Read()
		out = append(out, guard.Value())
		guard.Release()
	}
	slices.SortFunc(out, func(a, b Entity) int { return a.ID.Compare(b.ID) })
	return out, nil
}

// UpdateEntity mutates the entity stored under id using the provided mutator.
// The identifier is pinned: mutations to it do not survive the commit.
func (s *Service) UpdateEntity(ctx context.Context, id domain.ID[Entity], mutator func(*Entity) error) (_ Entity, err error) {
	ctx, done := s.begin(ctx, "update_entity")
	defer func() { done(err) }()

	tx, err := s.store.Entities().Find(id)
	if err != nil {
		return Entity{}, err
	}
	guard := tx.Write()
	if err = mutator(guard.Value()); err != nil {
		guard.Rollback()
		return Entity{}, err
	}
	guard.Value().ID = id
	updated := *guard.Value()
	guard.Commit()

	s.audit.Record(Change{Kind: KindEntity, Action: ActionUpdate, ID: id.String()})
	if err = s.flush(ctx); err != nil {
		return Entity{}, err
	}
	return updated, nil
}

// DeleteEntity removes the entity stored under id. Experiences referencing it
// are kept; their reads degrade to placeholder values.
func (s *Service) DeleteEntity(ctx context.Context, id domain.ID[Entity]) (err error) {
	ctx, done := s.begin(ctx, "delete_entity")
	defer func() { done(err) }()

	if err = s.store.Entities().Delete(id); err != nil {
		return err
	}
	s.audit.Record(Change{Kind: KindEntity, Action: ActionDelete, ID: id.String()})
	return s.flush(ctx)
}

// CreateEvent persists a new event, minting an identifier when unset.
func (s *Service) CreateEvent(ctx context.Context, event Event) (_ Event, err error) {
	ctx, done := s.begin(ctx, "create_event")
	defer func() { done(err) }()

	if event.Name == "" {
		return Event{}, fmt.Errorf("event name must not be empty")
	}
	if event.Period.IsZero() {
		return Event{}, fmt.Errorf("event period must be set")
	}
	if event.ID.IsZero() {
		event.ID = domain.NewID[Event]()
	}
	if err = s.store.Events().Create(event); err != nil {
		return Event{}, err
	}
	s.audit.Record(Change{Kind: KindEvent, Action: ActionCreate, ID: event.ID.String()})
	if err = s.flush(ctx); err != nil {
		return Event{}, err
	}
	return event, nil
}

// GetEvent returns the current value of the event stored under id.
func (s *Service) GetEvent(ctx context.Context, id domain.ID[Event]) (_ Event, err error) {
	_, done := s.begin(ctx, "get_event")
	defer func() { done(err) }()

	tx, err := s.store.Events().Find(id)
	if err != nil {
		return Event{}, err
	}
	guard := tx.Read()
	defer guard.Release()
	return guard.Value(), nil
}

// FilterEvents returns the current value of every event matching the filter,
// ordered by ascending identifier.
func (s *Service) FilterEvents(ctx context.Context, filter EventFilter) (_ []Event, err error) {
	_, done := s.begin(ctx, "filter_events")
	defer func() { done(err) }()

	txs, err := s.store.Events().Filter(filter)
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(txs))
	for _, tx := range txs {
		guard := tx.Read()
		out = append(out, guard.Value())
		guard.Release()
	}
	slices.SortFunc(out, func(a, b Event) int { return a.ID.Compare(b.ID) })
	return out, nil
}

// UpdateEvent mutates the event stored under id using the provided mutator.
// The identifier is pinned; the period, when mutated, is re-normalized.
func (s *Service) UpdateEvent(ctx context.Context, id domain.ID[Event], mutator func(*Event) error) (_ Event, err error) {
	ctx, done := s.begin(ctx, "update_event")
	defer func() { done(err) }()

	tx, err := s.store.Events().Find(id)
	if err != nil {
		return Event{}, err
	}
	guard := tx.Write()
	if err = mutator(guard.Value()); err != nil {
		guard.Rollback()
		return Event{}, err
	}
	guard.Value().ID = id
	guard.Value().Period = domain.NewPeriod(guard.Value().Period.Lo, guard.Value().Period.Hi)
	updated := *guard.Value()
	guard.Commit()

	s.audit.Record(Change{Kind: KindEvent, Action: ActionUpdate, ID: id.String()})
	if err = s.flush(ctx); err != nil {
		return Event{}, err
	}
	return updated, nil
}

// DeleteEvent removes the event stored under id. Experiences referencing it
// are kept; their reads degrade to placeholder values.
func (s *Service) DeleteEvent(ctx context.Context, id domain.ID[Event]) (err error) {
	ctx, done := s.begin(ctx, "delete_event")
	defer func() { done(err) }()

	if err = s.store.Events().Delete(id); err != nil {
		return err
	}
	s.audit.Record(Change{Kind: KindEvent, Action: ActionDelete, ID: id.String()})
	return s.flush(ctx)
}

// CreateExperience records a new experience on its subject's timeline,
// minting an identifier when unset. The insertion runs through the
// transactional pipeline: references are checked and the default constraint
// chain is evaluated before the record joins the store, so a rejected
// experience leaves no trace.
func (s *Service) CreateExperience(ctx context.Context, experience Experience) (_ Experience, err error) {
	ctx, done := s.begin(ctx, "create_experience")
	defer func() { done(err) }()

	if experience.Entity.ID.IsZero() {
		return Experience{}, fmt.Errorf("experience subject must be set")
	}
	if experience.Event.ID.IsZero() {
		return Experience{}, fmt.Errorf("experience event must be set")
	}
	if experience.ID.IsZero() {
		experience.ID = domain.NewID[Experience]()
	}

	if pipeline, ok := s.store.Experiences().(experiencePipeline); ok {
		err = pipeline.CreateWith(experience,
			[]memory.BeforeInsertExperience{
				s.requireExperienceReferences(experience),
				s.checkTimelineConstraints(experience),
				normalizeExperienceDefaults(),
			},
			[]memory.AfterInsertExperience{
				s.auditExperienceInsertion(),
			},
		)
	} else {
		err = s.createExperiencePlain(experience)
	}
	if err != nil {
		return Experience{}, err
	}
	if err = s.flush(ctx); err != nil {
		return Experience{}, err
	}
	return s.GetExperience(ctx, experience.ID)
}

// SaveExperience creates the experience when absent, and otherwise replaces
// the profiles of the stored one. Subject and event references are immutable
// once created.
func (s *Service) SaveExperience(ctx context.Context, experience Experience) (_ Experience, err error) {
	ctx, done := s.begin(ctx, "save_experience")
	defer func() { done(err) }()

	if experience.ID.IsZero() {
		return s.CreateExperience(ctx, experience)
	}
	tx, err := s.store.Experiences().Find(experience.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.CreateExperience(ctx, experience)
		}
		return Experience{}, err
	}

	guard := tx.Write()
	guard.Value().Profiles = experience.Profiles
	updated := *guard.Value()
	guard.Commit()

	s.audit.Record(Change{Kind: KindExperience, Action: ActionUpdate, ID: experience.ID.String()})
	if err = s.flush(ctx); err != nil {
		return Experience{}, err
	}
	return updated, nil
}

// GetExperience returns the hydrated aggregate view of the experience stored
// under id, with unresolved references degraded to placeholders.
func (s *Service) GetExperience(ctx context.Context, id domain.ID[Experience]) (_ Experience, err error) {
	_, done := s.begin(ctx, "get_experience")
	defer func() { done(err) }()

	tx, err := s.store.Experiences().Find(id)
	if err != nil {
		return Experience{}, err
	}
	guard := tx.Read()
	defer guard.Release()
	return guard.Value(), nil
}

// FilterExperiences returns the hydrated view of every experience matching
// the filter, ordered by ascending identifier.
func (s *Service) FilterExperiences(ctx context.Context, filter ExperienceFilter) (_ []Experience, err error) {
	_, done := s.begin(ctx, "filter_experiences")
	defer func() { done(err) }()

	txs, err := s.store.Experiences().Filter(filter)
	if err != nil {
		return nil, err
	}
	out := make([]Experience, 0, len(txs))
	for _, tx := range txs {
		guard := tx.Read()
		out = append(out, guard.Value())
		guard.Release()
	}
	slices.SortFunc(out, func(a, b Experience) int { return a.ID.Compare(b.ID) })
	return out, nil
}

// DeleteExperience removes the experience stored under id.
func (s *Service) DeleteExperience(ctx context.Context, id domain.ID[Experience]) (err error) {
	ctx, done := s.begin(ctx, "delete_experience")
	defer func() { done(err) }()

	if err = s.store.Experiences().Delete(id); err != nil {
		return err
	}
	s.audit.Record(Change{Kind: KindExperience, Action: ActionDelete, ID: id.String()})
	return s.flush(ctx)
}

// Timeline returns the hydrated experiences of the given entity, ordered
// chronologically by the period of their event.
func (s *Service) Timeline(ctx context.Context, entity domain.ID[Entity]) (_ []Experience, err error) {
	_, done := s.begin(ctx, "timeline")
	defer func() { done(err) }()

	txs, err := s.store.Experiences().Filter(ExperienceFilter{Entity: entity})
	if err != nil {
		return nil, err
	}
	out := make([]Experience, 0, len(txs))
	for _, tx := range txs {
		guard := tx.Read()
		out = append(out, guard.Value())
		guard.Release()
	}
	slices.SortFunc(out, func(a, b Experience) int {
		return a.Event.Period.Lo.Compare(b.Event.Period.Lo)
	})
	return out, nil
}

// requireExperienceReferences aborts the insertion unless the subject entity
// and the event both resolve at validation time.
func (s *Service) requireExperienceReferences(experience Experience) memory.BeforeInsertExperience {
	return command.Func[*schema.NodeToInsert[domain.ID[Experience], memory.ExperienceNode]](
		func(*schema.NodeToInsert[domain.ID[Experience], memory.ExperienceNode]) error {
			if _, err := s.store.Entities().Find(experience.Entity.ID); err != nil {
				return err
			}
			if _, err := s.store.Events().Find(experience.Event.ID); err != nil {
				return err
			}
			return nil
		},
	)
}

// checkTimelineConstraints rebuilds the subject's timeline from the graph
// being mutated and feeds it through the default constraint chain. The
// subject's timeline position is decided by the stored event, never by the
// value the caller supplied alongside the reference. Stored experiences whose
// event no longer resolves carry no period and are skipped.
func (s *Service) checkTimelineConstraints(experience Experience) memory.BeforeInsertExperience {
	return command.Func[*schema.NodeToInsert[domain.ID[Experience], memory.ExperienceNode]](
		func(tctx *schema.NodeToInsert[domain.ID[Experience], memory.ExperienceNode]) error {
			subjectRaw := domain.RawFrom(experience)
			subjectEvent, err := s.storedEvent(subjectRaw.Event)
			if err != nil {
				return err
			}
			chain := NewDefaultConstraintChain(&ExperiencedEvent{
				Experience: &subjectRaw,
				Event:      &subjectEvent,
			})

			for _, node := range tctx.Graph.Nodes() {
				var raw RawExperience
				_ = node.Raw().View(func(r RawExperience) error {
					raw = r.Clone()
					return nil
				})
				if raw.Entity != subjectRaw.Entity {
					continue
				}
				event, err := s.storedEvent(raw.Event)
				if err != nil {
					continue
				}
				if err := chain.With(&ExperiencedEvent{Experience: &raw, Event: &event}); err != nil {
					return err
				}
			}
			return chain.Result()
		},
	)
}

// storedEvent returns the current value of the event stored under id.
func (s *Service) storedEvent(id domain.ID[Event]) (Event, error) {
	tx, err := s.store.Events().Find(id)
	if err != nil {
		return Event{}, err
	}
	guard := tx.Read()
	defer guard.Release()
	return guard.Value(), nil
}

// auditExperienceInsertion records the committed insertion. Running as an
// after-trigger, a failure here is reported to the caller but never undoes
// the insertion.
func (s *Service) auditExperienceInsertion() memory.AfterInsertExperience {
	return command.Func[*schema.InsertedNode[domain.ID[Experience], memory.ExperienceNode]](
		func(ictx *schema.InsertedNode[domain.ID[Experience], memory.ExperienceNode]) error {
			s.audit.Record(Change{Kind: KindExperience, Action: ActionCreate, ID: ictx.Node.String()})
			s.logger.Info("experience recorded", "id", ictx.Node.String())
			return nil
		},
	)
}

// normalizeExperienceDefaults fills in the optional fields of the record
// being inserted, mutating it in place through its own guarded cell.
func normalizeExperienceDefaults() memory.BeforeInsertExperience {
	return command.Func[*schema.NodeToInsert[domain.ID[Experience], memory.ExperienceNode]](
		func(tctx *schema.NodeToInsert[domain.ID[Experience], memory.ExperienceNode]) error {
			return (*tctx.Node).Raw().Update(func(raw *RawExperience) error {
				for i := range raw.Profiles {
					if raw.Profiles[i].Values == nil {
						raw.Profiles[i].Values = make(map[string]string)
					}
				}
				return nil
			})
		},
	)
}

// createExperiencePlain validates and creates the experience against a store
// that does not expose an insertion pipeline. Validation and insertion are
// not atomic on this path.
func (s *Service) createExperiencePlain(experience Experience) error {
	if _, err := s.store.Entities().Find(experience.Entity.ID); err != nil {
		return err
	}

	subjectRaw := domain.RawFrom(experience)
	subjectEvent, err := s.storedEvent(subjectRaw.Event)
	if err != nil {
		return err
	}
	chain := NewDefaultConstraintChain(&ExperiencedEvent{
		Experience: &subjectRaw,
		Event:      &subjectEvent,
	})
	txs, err := s.store.Experiences().Filter(ExperienceFilter{Entity: experience.Entity.ID})
	if err != nil {
		return err
	}
	for _, tx := range txs {
		guard := tx.Read()
		stored := guard.Value()
		guard.Release()

		raw := domain.RawFrom(stored)
		event, err := s.storedEvent(raw.Event)
		if err != nil {
			continue
		}
		if err := chain.With(&ExperiencedEvent{Experience: &raw, Event: &event}); err != nil {
			return err
		}
	}
	if err := chain.Result(); err != nil {
		return err
	}

	if err := s.store.Experiences().Create(experience); err != nil {
		return err
	}
	s.audit.Record(Change{Kind: KindExperience, Action: ActionCreate, ID: experience.ID.String()})
	return nil
}
