package core

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/HectorMRC/ithaca/internal/infra/persistence/memory"
	"github.com/HectorMRC/ithaca/internal/infra/persistence/postgres"
	"github.com/HectorMRC/ithaca/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to memory when unset.
//
//	ITHACA_STORAGE_DRIVER: memory|sqlite|postgres (default memory)
//	ITHACA_SQLITE_PATH: path to sqlite file (default ./ithaca.db)
//	ITHACA_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(logger *slog.Logger) (PersistentStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := os.Getenv("ITHACA_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageMemory)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore().WithLogger(logger), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("ITHACA_SQLITE_PATH"), logger)
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("ITHACA_POSTGRES_DSN"), logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
