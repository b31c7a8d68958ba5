package memorystore

import "context"

// Store is the memory store interface consumed by the context assembler.
//
// Both operations are idempotent, side-effect-free reads. Errors surface to
// the caller; the search executor catches them per category so one failing
// search never aborts its siblings.
type Store interface {
	// Search returns ranked items relevant to the query text, restricted
	// to the query's tags and, best-effort, its structured filters.
	Search(ctx context.Context, q Query) ([]Item, error)

	// ResolveGrouping looks up the source meeting grouping for a
	// deliverable request. Returns ErrGroupingNotFound when no source
	// record exists; this is an expected outcome, not a failure.
	ResolveGrouping(ctx context.Context, key GroupingKey) (string, error)

	// Close releases backend resources.
	Close() error
}

// Embedder generates vector embeddings from text.
//
// Both backend adapters embed query text before searching. Implementations
// can use a local model server or a cloud API.
type Embedder interface {
	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
