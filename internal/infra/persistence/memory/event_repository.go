package memory

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/HectorMRC/ithaca/pkg/domain"
	"github.com/HectorMRC/ithaca/pkg/resource"
	"github.com/HectorMRC/ithaca/pkg/transaction"
)

// EventRepository stores events in guarded cells keyed by identifier.
type EventRepository struct {
	mu     sync.RWMutex
	events resource.Map[domain.ID[domain.Event], domain.Event]
	logger *slog.Logger
}

// NewEventRepository returns an empty event repository.
func NewEventRepository() *EventRepository {
	return &EventRepository{
		events: resource.NewMap[domain.ID[domain.Event], domain.Event](),
		logger: slog.Default(),
	}
}

// WithLogger sets the logger handed down to the repository's resources.
func (r *EventRepository) WithLogger(logger *slog.Logger) *EventRepository {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Find returns the transactional handle of the event stored under id.
func (r *EventRepository) Find(id domain.ID[domain.Event]) (transaction.Tx[domain.Event], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.events.Get(id)
	if !ok {
		return nil, domain.NotFoundError{Kind: domain.KindEvent, ID: id.String()}
	}
	return resource.NewHandle(res), nil
}

// Filter returns a transactional handle for every stored event matching the
// filter.
func (r *EventRepository) Filter(filter domain.EventFilter) ([]transaction.Tx[domain.Event], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []transaction.Tx[domain.Event]
	r.events.Each(func(_ domain.ID[domain.Event], res *resource.Resource[domain.Event]) bool {
		matches := false
		_ = res.View(func(event domain.Event) error {
			matches = filter.Matches(event)
			return nil
		})
		if matches {
			out = append(out, resource.NewHandle(res))
		}
		return true
	})
	return out, nil
}

// Create stores a new event, failing when its identifier is already taken.
func (r *EventRepository) Create(event domain.Event) error {
	if event.ID.IsZero() {
		return fmt.Errorf("event identifier must be set")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.events.Contains(event.ID) {
		return domain.AlreadyExistsError{Kind: domain.KindEvent, ID: event.ID.String()}
	}
	r.events.Set(event.ID, resource.New(event).WithLogger(r.logger))
	return nil
}

// Delete removes the event stored under id, failing when absent.
func (r *EventRepository) Delete(id domain.ID[domain.Event]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.events.Delete(id) {
		return domain.NotFoundError{Kind: domain.KindEvent, ID: id.String()}
	}
	return nil
}
