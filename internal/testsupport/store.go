package testsupport

import (
	"context"
	"testing"

	"shelfscan/internal/catalog"
	"shelfscan/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustUpsert inserts a record for tests using the provided store.
func MustUpsert(t testing.TB, store *catalog.Store, record *catalog.Record) string {
	t.Helper()

	id, err := store.UpsertByCode(context.Background(), record)
	if err != nil {
		t.Fatalf("store.UpsertByCode: %v", err)
	}
	return id
}
