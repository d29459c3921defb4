package schema

import (
	"github.com/HectorMRC/ithaca/pkg/command"
	"github.com/HectorMRC/ithaca/pkg/graph"
)

// NodeToInsert is the context handed to before-insertion triggers. Triggers
// may inspect the graph and mutate the candidate node in place, or reject the
// insertion outright by returning an error.
type NodeToInsert[ID comparable, T graph.Identify[ID]] struct {
	// Graph grants read access to the nodes already stored.
	Graph *graph.Graph[ID, T]
	// Node is the candidate being inserted.
	Node *T
}

// InsertedNode is the context handed to after-insertion triggers. The node
// itself is no longer exposed, only its identifier within the owning schema.
type InsertedNode[ID comparable, T graph.Identify[ID]] struct {
	Schema *Schema[ID, T]
	Node   ID
}

// Insert is the transactional insertion of a node into a schema.
//
// Before-triggers guard invariants that must hold before the state change
// becomes visible: if any of them fails, the graph is left untouched and the
// whole operation aborts with that trigger's error. After-triggers perform
// best-effort side work once the node is committed: their failure is returned
// as the operation's result but the insertion is NOT rolled back.
type Insert[ID comparable, T graph.Identify[ID]] struct {
	node   T
	before command.Chain[*NodeToInsert[ID, T]]
	after  command.Chain[*InsertedNode[ID, T]]
}

// NewInsert builds a bare insertion of the given node, with no triggers
// attached.
func NewInsert[ID comparable, T graph.Identify[ID]](node T) *Insert[ID, T] {
	return &Insert[ID, T]{node: node}
}

// Before attaches a trigger to run before the insertion. Triggers run
// last-in first-out: the most recently attached one runs first.
func (in *Insert[ID, T]) Before(cmd command.Command[*NodeToInsert[ID, T]]) *Insert[ID, T] {
	in.before = in.before.Chain(cmd)
	return in
}

// After attaches a trigger to run once the insertion has been performed.
// Triggers run last-in first-out, independently of the before side.
func (in *Insert[ID, T]) After(cmd command.Command[*InsertedNode[ID, T]]) *Insert[ID, T] {
	in.after = in.after.Chain(cmd)
	return in
}

// Execute runs the insertion against the given schema.
func (in *Insert[ID, T]) Execute(s *Schema[ID, T]) error {
	var inserted ID
	if err := s.mutate(func(g *graph.Graph[ID, T]) error {
		payload := &NodeToInsert[ID, T]{Graph: g, Node: &in.node}
		if err := in.before.Execute(payload); err != nil {
			return err
		}
		inserted = in.node.Identity()
		g.Insert(in.node)
		return nil
	}); err != nil {
		return err
	}

	return in.after.Execute(&InsertedNode[ID, T]{Schema: s, Node: inserted})
}
