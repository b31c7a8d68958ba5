package memorystore

import "errors"

// Sentinel errors for memory store operations.
var (
	// ErrGroupingNotFound is returned by ResolveGrouping when no source
	// meeting record matches the request.
	ErrGroupingNotFound = errors.New("grouping not found")

	// ErrInvalidQuery indicates a malformed query (empty text, non-positive limit).
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidConfig indicates invalid adapter configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the backend could not be reached.
	ErrConnectionFailed = errors.New("failed to connect to memory store")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")
)

// Filter is a structured predicate on item metadata.
//
// Filters are hints to the store, not guarantees: a backend may apply them
// best-effort, and an empty result set is always a valid outcome.
type Filter struct {
	// Field is the metadata field name.
	Field string `json:"field"`

	// Value is the expected value.
	Value string `json:"value"`

	// Negate inverts the predicate (field must NOT equal value).
	Negate bool `json:"negate,omitempty"`
}

// Query is a structured retrieval request against the memory store.
type Query struct {
	// Text is the semantic query text.
	Text string `json:"text"`

	// Tags restricts results to items carrying ALL listed tags
	// (e.g. the grouping tag plus a category content tag).
	Tags []string `json:"tags,omitempty"`

	// Filters are structured metadata predicates, applied best-effort.
	Filters []Filter `json:"filters,omitempty"`

	// Limit is the maximum number of items to return.
	Limit int `json:"limit"`
}

// Validate checks the query for errors.
func (q Query) Validate() error {
	if q.Text == "" {
		return ErrInvalidQuery
	}
	if q.Limit <= 0 {
		return ErrInvalidQuery
	}
	return nil
}

// Item is a ranked result returned by the store.
type Item struct {
	// ID is the record identifier.
	ID string `json:"id"`

	// Content is the record text content.
	Content string `json:"content"`

	// Score is the similarity score (higher = more relevant).
	Score float32 `json:"score"`

	// Metadata contains the record metadata. Values may be strings even
	// for logically boolean or numeric fields, depending on the backend;
	// consumers must decode defensively.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// GroupingKey identifies the source meeting cluster a deliverable request
// belongs to.
type GroupingKey struct {
	// Deliverable is the deliverable name from the request.
	Deliverable string `json:"deliverable"`

	// Topic is the subject area from the request.
	Topic string `json:"topic"`
}
