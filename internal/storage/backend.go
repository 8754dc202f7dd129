package storage

import (
	"context"
	"os"
)

// ErrNotFound is returned by backends for a missing blob. Backends may wrap
// it; callers test with errors.Is.
var ErrNotFound = os.ErrNotExist

// Backend is a blob store that is not reached over the Ambry HTTP API.
// Doer puts a Backend behind the same request/status contract.
type Backend interface {
	// Stat returns the size of the blob
	Stat(ctx context.Context, id string) (int64, error)

	// Get returns the full blob
	Get(ctx context.Context, id string) ([]byte, error)

	// Delete removes the blob
	Delete(ctx context.Context, id string) error

	Close() error
}
