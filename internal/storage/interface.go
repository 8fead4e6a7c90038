package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Load when nothing is stored under the key
	ErrNotFound = errors.New("key not found")
	// ErrNotInitialized is returned when a backend is used before Open
	ErrNotInitialized = errors.New("storage not initialized")
)

// KV is the key-value persistence the habit store and profile ledger write their
// snapshots through. Implementations must be safe for concurrent use.
type KV interface {
	// Lifecycle
	Open() error
	Close() error
	Ping(ctx context.Context) error

	// Blobs
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Location describes where data lives, for diagnostics
	Location() string
}

// ScopedKey appends the user identity to a storage key. An empty userID keeps the key unchanged.
func ScopedKey(key, userID string) string {
	if userID == "" {
		return key
	}
	return key + ":" + userID
}
