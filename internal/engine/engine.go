// Package engine adapts the external knowledge engine. The engine's
// retrieval internals are opaque: it is consumed purely through its
// insert and query operations.
package engine

import (
	"context"
)

// Engine is the knowledge engine capability. The engine holds a single
// shared mutable index; safety of concurrent inserts and queries is a
// requirement on the engine itself, not something this layer adds
// mutual exclusion for.
type Engine interface {
	// Insert adds text to the engine's index.
	Insert(ctx context.Context, text string) error

	// Query answers a standalone question over the indexed corpus.
	Query(ctx context.Context, question string) (string, error)
}
