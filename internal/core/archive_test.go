package core

import (
	"context"
	"testing"

	blobmem "github.com/HectorMRC/ithaca/internal/infra/blob/memory"
	"github.com/HectorMRC/ithaca/internal/infra/persistence/memory"
	"github.com/HectorMRC/ithaca/pkg/domain"
)

func TestSnapshotArchiverRoundTrip(t *testing.T) {
	store := memory.NewStore()
	entity := domain.Entity{ID: domain.NewID[Entity](), Name: "ulysses"}
	if err := store.Entities().Create(entity); err != nil {
		t.Fatalf("create: %v", err)
	}

	archiver := NewSnapshotArchiver(store, blobmem.New())
	info, err := archiver.Archive(context.Background())
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if info.Metadata["entities"] != "1" {
		t.Fatalf("unexpected metadata: %+v", info.Metadata)
	}

	// wipe and restore
	store.ImportState(Snapshot{})
	if _, err := store.Entities().Find(entity.ID); err == nil {
		t.Fatal("expected wiped store")
	}
	if err := archiver.Restore(context.Background(), info.Key); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := store.Entities().Find(entity.ID); err != nil {
		t.Fatalf("expected restored entity: %v", err)
	}
}

func TestSnapshotArchiverListsSnapshots(t *testing.T) {
	store := memory.NewStore()
	archiver := NewSnapshotArchiver(store, blobmem.New())
	for i := 0; i < 2; i++ {
		if _, err := archiver.Archive(context.Background()); err != nil {
			t.Fatalf("archive %d: %v", i, err)
		}
	}
	infos, err := archiver.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(infos))
	}
}
