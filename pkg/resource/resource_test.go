package resource

import (
	"fmt"
	"sync"
	"testing"
)

func TestResourceReadSeesStoredValue(t *testing.T) {
	res := New(42)
	guard := res.Read()
	defer guard.Release()
	if got := guard.Value(); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestResourceWriteCommitPersists(t *testing.T) {
	res := New("before")
	guard := res.Write()
	*guard.Value() = "after"
	guard.Commit()

	if err := res.View(func(v string) error {
		if v != "after" {
			return fmt.Errorf("expected after, got %s", v)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestResourceWriteRollbackDiscards(t *testing.T) {
	res := New("kept")
	guard := res.Write()
	*guard.Value() = "discarded"
	guard.Rollback()

	read := res.Read()
	defer read.Release()
	if got := read.Value(); got != "kept" {
		t.Fatalf("expected kept, got %s", got)
	}
}

func TestResourceWriteGuardDoubleConsumePanics(t *testing.T) {
	res := New(0)
	guard := res.Write()
	guard.Commit()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on second consume")
		}
	}()
	guard.Rollback()
}

func TestResourceReadGuardReleaseIsIdempotent(t *testing.T) {
	res := New(0)
	guard := res.Read()
	guard.Release()
	guard.Release()

	// the lock must be free again
	write := res.Write()
	write.Rollback()
}

func TestResourceUpdateCommitsOnNil(t *testing.T) {
	res := New(1)
	if err := res.Update(func(v *int) error {
		*v = 2
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	guard := res.Read()
	defer guard.Release()
	if got := guard.Value(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestResourceUpdateRollsBackOnError(t *testing.T) {
	res := New(1)
	if err := res.Update(func(v *int) error {
		*v = 99
		return fmt.Errorf("nope")
	}); err == nil {
		t.Fatal("expected error")
	}
	guard := res.Read()
	defer guard.Release()
	if got := guard.Value(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestResourceUpdateRecoversPanickedWriter(t *testing.T) {
	res := New("stable")
	err := res.Update(func(v *string) error {
		*v = "half-written"
		panic("writer died")
	})
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}

	// the resource must remain usable and hold the last committed value
	guard := res.Read()
	defer guard.Release()
	if got := guard.Value(); got != "stable" {
		t.Fatalf("expected stable, got %s", got)
	}
}

func TestResourceConcurrentWritersSerialize(t *testing.T) {
	res := New(0)
	const writers = 32
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_ = res.Update(func(v *int) error {
				*v++
				return nil
			})
		}()
	}
	wg.Wait()

	guard := res.Read()
	defer guard.Release()
	if got := guard.Value(); got != writers {
		t.Fatalf("expected %d, got %d", writers, got)
	}
}

func TestMapSetGetDelete(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("a", New(1))
	m.Set("b", New(2))

	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}
	res, ok := m.Get("a")
	if !ok {
		t.Fatal("expected a to be present")
	}
	guard := res.Read()
	if got := guard.Value(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	guard.Release()

	m.Delete("a")
	if m.Contains("a") {
		t.Fatal("expected a to be gone")
	}
	if !m.Contains("b") {
		t.Fatal("expected b to remain")
	}
}
