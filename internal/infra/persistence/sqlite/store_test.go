package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/HectorMRC/ithaca/pkg/domain"
)

func TestSQLiteStoreFlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	entity := domain.Entity{ID: domain.NewID[domain.Entity](), Name: "ulysses"}
	lo := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	event := domain.Event{ID: domain.NewID[domain.Event](), Name: "odyssey", Period: domain.NewPeriod(lo, lo.AddDate(0, 1, 0))}
	if err := store.Entities().Create(entity); err != nil {
		t.Fatalf("create entity: %v", err)
	}
	if err := store.Events().Create(event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	experience := domain.Experience{ID: domain.NewID[domain.Experience](), Entity: entity, Event: event}
	if err := store.Experiences().Create(experience); err != nil {
		t.Fatalf("create experience: %v", err)
	}
	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reloaded, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })

	if _, err := reloaded.Entities().Find(entity.ID); err != nil {
		t.Fatalf("find entity: %v", err)
	}
	tx, err := reloaded.Experiences().Find(experience.ID)
	if err != nil {
		t.Fatalf("find experience: %v", err)
	}
	guard := tx.Read()
	defer guard.Release()
	if guard.Value().Entity.Name != "ulysses" || guard.Value().Event.Name != "odyssey" {
		t.Fatalf("unexpected hydration after reload: %+v", guard.Value())
	}
}

func TestSQLiteStoreFlushIsIdempotent(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	entity := domain.Entity{ID: domain.NewID[domain.Entity](), Name: "ulysses"}
	if err := store.Entities().Create(entity); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := store.Flush(context.Background()); err != nil {
			t.Fatalf("flush %d: %v", i, err)
		}
	}

	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count buckets: %v", err)
	}
	if count != len(sqliteBuckets) {
		t.Fatalf("expected %d buckets, got %d", len(sqliteBuckets), count)
	}
}

func TestSQLiteStoreStartsEmpty(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	txs, err := store.Entities().Filter(domain.EntityFilter{})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected empty store, got %d entities", len(txs))
	}
}
