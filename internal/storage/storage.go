// Package storage provides the client-local persistence port: a small
// key-value interface with typed helpers for each persisted slot. Session
// and reconciliation logic depend only on the Store interface, so tests run
// against the in-memory implementation.
package storage

import "context"

// Persisted slot keys.
const (
	KeyDevices      = "devices"
	KeyAssignments  = "assignments"
	KeyCategories   = "categories"
	KeyGroups       = "groups"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Store is the persistence port. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key. The second return is false when the
	// key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
