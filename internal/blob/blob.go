// Package blob provides byte storage for uploaded documents.
package blob

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Store is the byte storage contract. Keys are caller-chosen and must
// be globally unique per upload.
type Store interface {
	// Put stores data under key.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get retrieves the bytes stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the bytes stored under key.
	Delete(ctx context.Context, key string) error
}

// NewKey builds a collision-resistant storage key for an upload:
// a random id prefixed to the original filename.
func NewKey(filename string) string {
	return fmt.Sprintf("documents/%s_%s", uuid.New().String(), filename)
}
