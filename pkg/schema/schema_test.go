package schema

import (
	"fmt"
	"testing"

	"github.com/HectorMRC/ithaca/pkg/command"
	"github.com/HectorMRC/ithaca/pkg/graph"
)

type node struct {
	id    string
	value int
}

func (n node) Identity() string { return n.id }

func count(t *testing.T, s *Schema[string, node]) int {
	t.Helper()
	var n int
	if err := s.View(func(g *graph.Graph[string, node]) error {
		n = g.Len()
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	return n
}

func TestInsertAddsExactlyOneNode(t *testing.T) {
	s := New[string, node](nil)
	if err := NewInsert[string](node{id: "a"}).Execute(s); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got := count(t, s); got != 1 {
		t.Fatalf("expected 1 node, got %d", got)
	}
}

func TestInsertBeforeTriggersRunNewestFirst(t *testing.T) {
	s := New[string, node](nil)
	var order []string
	trigger := func(name string) command.Command[*NodeToInsert[string, node]] {
		return command.Func[*NodeToInsert[string, node]](func(*NodeToInsert[string, node]) error {
			order = append(order, name)
			return nil
		})
	}

	insert := NewInsert[string](node{id: "a"}).
		Before(trigger("first attached")).
		Before(trigger("last attached"))
	if err := insert.Execute(s); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(order) != 2 || order[0] != "last attached" || order[1] != "first attached" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestInsertFailingBeforeTriggerLeavesGraphUntouched(t *testing.T) {
	s := New[string, node](nil)
	insert := NewInsert[string](node{id: "a"}).
		Before(command.Func[*NodeToInsert[string, node]](func(*NodeToInsert[string, node]) error {
			return fmt.Errorf("rejected")
		}))

	if err := insert.Execute(s); err == nil {
		t.Fatal("expected error")
	}
	if got := count(t, s); got != 0 {
		t.Fatalf("expected untouched graph, got %d nodes", got)
	}
}

func TestInsertBeforeTriggerMayMutateCandidate(t *testing.T) {
	s := New[string, node](nil)
	insert := NewInsert[string](node{id: "a", value: 0}).
		Before(command.Func[*NodeToInsert[string, node]](func(ctx *NodeToInsert[string, node]) error {
			ctx.Node.value = 7
			return nil
		}))
	if err := insert.Execute(s); err != nil {
		t.Fatalf("insert: %v", err)
	}

	_ = s.View(func(g *graph.Graph[string, node]) error {
		got, _ := g.Node("a")
		if got.value != 7 {
			t.Fatalf("expected mutated value 7, got %d", got.value)
		}
		return nil
	})
}

func TestInsertFailingAfterTriggerKeepsInsertion(t *testing.T) {
	s := New[string, node](nil)
	insert := NewInsert[string](node{id: "a"}).
		After(command.Func[*InsertedNode[string, node]](func(*InsertedNode[string, node]) error {
			return fmt.Errorf("side work failed")
		}))

	if err := insert.Execute(s); err == nil {
		t.Fatal("expected after-trigger error to surface")
	}
	if got := count(t, s); got != 1 {
		t.Fatalf("expected insertion to survive, got %d nodes", got)
	}
}

func TestInsertAfterTriggerSeesInsertedID(t *testing.T) {
	s := New[string, node](nil)
	var seen string
	insert := NewInsert[string](node{id: "a"}).
		After(command.Func[*InsertedNode[string, node]](func(ctx *InsertedNode[string, node]) error {
			seen = ctx.Node
			return nil
		}))
	if err := insert.Execute(s); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if seen != "a" {
		t.Fatalf("expected inserted id a, got %q", seen)
	}
}

func TestSchemaRecoversPanickedTrigger(t *testing.T) {
	s := New[string, node](nil)
	insert := NewInsert[string](node{id: "a"}).
		Before(command.Func[*NodeToInsert[string, node]](func(*NodeToInsert[string, node]) error {
			panic("trigger died")
		}))

	if err := insert.Execute(s); err == nil {
		t.Fatal("expected error from recovered panic")
	}
	if got := count(t, s); got != 0 {
		t.Fatalf("expected last-good graph, got %d nodes", got)
	}

	// the schema must remain usable
	if err := NewInsert[string](node{id: "b"}).Execute(s); err != nil {
		t.Fatalf("insert after recovery: %v", err)
	}
	if got := count(t, s); got != 1 {
		t.Fatalf("expected 1 node after recovery, got %d", got)
	}
}

func TestSchemaRemove(t *testing.T) {
	s := New[string, node](nil)
	if err := NewInsert[string](node{id: "a"}).Execute(s); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !s.Remove("a") {
		t.Fatal("expected removal of a")
	}
	if s.Remove("a") {
		t.Fatal("expected second removal to report absence")
	}
}

func TestSchemaReplaceSwapsGraph(t *testing.T) {
	s := New[string, node](nil)
	if err := NewInsert[string](node{id: "a"}).Execute(s); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rebuilt := graph.New[string, node]()
	rebuilt.Insert(node{id: "x"})
	rebuilt.Insert(node{id: "y"})
	s.Replace(rebuilt)

	if got := count(t, s); got != 2 {
		t.Fatalf("expected 2 nodes, got %d", got)
	}
}
