// Package graph provides an in-memory collection of identifiable nodes.
package graph

// Identify is implemented by values addressed through a unique identifier.
type Identify[ID comparable] interface {
	Identity() ID
}

// Graph is a keyed store of nodes. The graph owns all its nodes; callers get
// copies of node values, never aliases into the store.
type Graph[ID comparable, T Identify[ID]] struct {
	nodes map[ID]T
}

// New returns an empty graph.
func New[ID comparable, T Identify[ID]]() *Graph[ID, T] {
	return &Graph[ID, T]{nodes: make(map[ID]T)}
}

// Insert stores the node under its own identity, replacing any previous node
// with the same identity.
func (g *Graph[ID, T]) Insert(node T) {
	g.nodes[node.Identity()] = node
}

// Remove deletes the node stored under id, reporting whether it existed.
func (g *Graph[ID, T]) Remove(id ID) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	delete(g.nodes, id)
	return true
}

// Node returns the node stored under id, if any.
func (g *Graph[ID, T]) Node(id ID) (T, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// Contains reports whether a node is stored under id.
func (g *Graph[ID, T]) Contains(id ID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of stored nodes.
func (g *Graph[ID, T]) Len() int {
	return len(g.nodes)
}

// Nodes returns all stored nodes in unspecified order.
func (g *Graph[ID, T]) Nodes() []T {
	out := make([]T, 0, len(g.nodes))
	for _, node := range g.nodes {
		out = append(out, node)
	}
	return out
}
