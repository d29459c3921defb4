// Package memory provides the in-memory repositories backing the ithaca data
// layer: guarded per-record cells for entities and events, and a
// schema-wrapped graph of raw experiences whose create path runs through the
// insertion pipeline.
package memory

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/HectorMRC/ithaca/pkg/domain"
	"github.com/HectorMRC/ithaca/pkg/resource"
	"github.com/HectorMRC/ithaca/pkg/transaction"
)

// EntityRepository stores entities in guarded cells keyed by identifier.
type EntityRepository struct {
	mu       sync.RWMutex
	entities resource.Map[domain.ID[domain.Entity], domain.Entity]
	logger   *slog.Logger
}

// NewEntityRepository returns an empty entity repository.
func NewEntityRepository() *EntityRepository {
	return &EntityRepository{
		entities: resource.NewMap[domain.ID[domain.Entity], domain.Entity](),
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger handed down to the repository's resources.
func (r *EntityRepository) WithLogger(logger *slog.Logger) *EntityRepository {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Find returns the transactional handle of the entity stored under id.
func (r *EntityRepository) Find(id domain.ID[domain.Entity]) (transaction.Tx[domain.Entity], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.entities.Get(id)
	if !ok {
		return nil, domain.NotFoundError{Kind: domain.KindEntity, ID: id.String()}
	}
	return resource.NewHandle(res), nil
}

// Filter returns a transactional handle for every stored entity matching the
// filter.
func (r *EntityRepository) Filter(filter domain.EntityFilter) ([]transaction.Tx[domain.Entity], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []transaction.Tx[domain.Entity]
	r.entities.Each(func(_ domain.ID[domain.Entity], res *resource.Resource[domain.Entity]) bool {
		matches := false
		_ = res.View(func(entity domain.Entity) error {
			matches = filter.Matches(entity)
			return nil
		})
		if matches {
			out = append(out, resource.NewHandle(res))
		}
		return true
	})
	return out, nil
}

// Create stores a new entity, failing when its identifier is already taken.
func (r *EntityRepository) Create(entity domain.Entity) error {
	if entity.ID.IsZero() {
		return fmt.Errorf("entity identifier must be set")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entities.Contains(entity.ID) {
		return domain.AlreadyExistsError{Kind: domain.KindEntity, ID: entity.ID.String()}
	}
	r.entities.Set(entity.ID, resource.New(entity).WithLogger(r.logger))
	return nil
}

// Delete removes the entity stored under id, failing when absent.
func (r *EntityRepository) Delete(id domain.ID[domain.Entity]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.entities.Delete(id) {
		return domain.NotFoundError{Kind: domain.KindEntity, ID: id.String()}
	}
	return nil
}
