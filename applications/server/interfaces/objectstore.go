package interfaces

import (
	"context"
	"errors"
)

// ErrKeyCollision signals that a write targeted an already occupied key.
// It is the only retryable store failure; callers regenerate the key and
// try again.
var ErrKeyCollision = errors.New("storage key already occupied")

// ObjectStore persists immutable blobs under caller-chosen keys.
// Implementations must tolerate arbitrary interleaving of independent
// Write calls; the client is shared across all concurrent writes.
type ObjectStore interface {
	Write(ctx context.Context, key string, contentType string, body []byte) error
}
