// Package schema wraps a graph behind shared and exclusive access and exposes
// the transactional insert operation over it.
package schema

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/HectorMRC/ithaca/pkg/graph"
)

// Schema guards a graph. Triggers are not owned by the schema; they are
// supplied per insert invocation.
type Schema[ID comparable, T graph.Identify[ID]] struct {
	mu     sync.RWMutex
	graph  *graph.Graph[ID, T]
	logger *slog.Logger
}

// New wraps the given graph into a schema.
func New[ID comparable, T graph.Identify[ID]](g *graph.Graph[ID, T]) *Schema[ID, T] {
	if g == nil {
		g = graph.New[ID, T]()
	}
	return &Schema[ID, T]{graph: g, logger: slog.Default()}
}

// WithLogger sets the logger used to report recovered mutations.
func (s *Schema[ID, T]) WithLogger(logger *slog.Logger) *Schema[ID, T] {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// View runs fn with shared access to the graph. The graph must not be mutated
// through this access.
func (s *Schema[ID, T]) View(fn func(*graph.Graph[ID, T]) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.graph)
}

// Replace swaps the wrapped graph for the given one under exclusive access.
func (s *Schema[ID, T]) Replace(g *graph.Graph[ID, T]) {
	if g == nil {
		g = graph.New[ID, T]()
	}
	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()
}

// Remove deletes the node stored under id with exclusive access, reporting
// whether it existed.
func (s *Schema[ID, T]) Remove(id ID) bool {
	var removed bool
	_ = s.mutate(func(g *graph.Graph[ID, T]) error {
		removed = g.Remove(id)
		return nil
	})
	return removed
}

// mutate runs fn with exclusive access to the graph. A panicking fn is
// recovered and surfaced as an error; since fn is expected to leave the graph
// untouched until its final commit step, the last-good graph remains in
// place and a warning is logged.
func (s *Schema[ID, T]) mutate(fn func(*graph.Graph[ID, T]) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			s.logger.Warn("recovered panicked mutation; graph kept at last-good state", "panic", fmt.Sprint(p))
			err = fmt.Errorf("mutation panicked: %v", p)
		}
	}()
	return fn(s.graph)
}
