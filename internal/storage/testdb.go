package storage

import "testing"

// NewTestStore creates a fresh in-memory SQLite-backed store.
func NewTestStore(t *testing.T) *SQLite {
	t.Helper()

	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}

	t.Cleanup(func() { store.Close() })

	return store
}
