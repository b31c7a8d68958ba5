package memorystore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/briefd/internal/logging"
	"go.uber.org/zap"
)

// chromemTracer for OpenTelemetry instrumentation.
var chromemTracer = otel.Tracer("briefd.memorystore.chromem")

// ChromemConfig holds configuration for the embedded chromem-go backend.
type ChromemConfig struct {
	// Path is the directory for persistent storage.
	// Default: "~/.config/briefd/memorystore"
	Path string

	// Compress enables gzip compression for stored data.
	Compress bool

	// RecordsCollection holds meeting-derived knowledge records.
	// Default: "briefd_records"
	RecordsCollection string

	// MeetingsCollection holds one document per source meeting, used for
	// grouping resolution. Default: "briefd_meetings"
	MeetingsCollection string
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "~/.config/briefd/memorystore"
	}
	if c.RecordsCollection == "" {
		c.RecordsCollection = "briefd_records"
	}
	if c.MeetingsCollection == "" {
		c.MeetingsCollection = "briefd_meetings"
	}
}

// Validate validates the configuration.
func (c *ChromemConfig) Validate() error {
	if c.RecordsCollection == c.MeetingsCollection {
		return fmt.Errorf("%w: records and meetings collections must differ", ErrInvalidConfig)
	}
	return nil
}

// ChromemStore implements Store using chromem-go.
//
// chromem-go is an embeddable vector database with zero third-party
// dependencies: pure Go, no external service, persistence to gob files.
// Records are written by the ingestion pipeline; this adapter only reads.
type ChromemStore struct {
	db       *chromem.DB
	embedder Embedder
	config   ChromemConfig
	logger   *logging.Logger
}

// NewChromemStore creates a new ChromemStore with the given configuration.
func NewChromemStore(config ChromemConfig, embedder Embedder, logger *logging.Logger) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	expandedPath, err := expandPath(config.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}

	if err := os.MkdirAll(expandedPath, 0755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", expandedPath, err)
	}

	db, err := chromem.NewPersistentDB(expandedPath, config.Compress)
	if err != nil {
		return nil, fmt.Errorf("creating chromem DB: %w", err)
	}

	store := &ChromemStore{
		db:       db,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}

	logger.Info(context.Background(), "chromem memory store initialized",
		zap.String("path", expandedPath),
		zap.Bool("compress", config.Compress),
		zap.String("records_collection", config.RecordsCollection),
		zap.String("meetings_collection", config.MeetingsCollection),
	)

	return store, nil
}

// expandPath expands ~ to home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// embeddingFunc adapts the Embedder interface to chromem.EmbeddingFunc.
func (s *ChromemStore) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	}
}

func (s *ChromemStore) collection(name string) (*chromem.Collection, error) {
	collection, err := s.db.GetOrCreateCollection(name, nil, s.embeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("getting collection %s: %w", name, err)
	}
	return collection, nil
}

// Search returns ranked records relevant to the query.
//
// chromem's where clause only supports metadata equality, so tag membership
// and negated filters are applied after retrieval. The query over-fetches to
// compensate for post-filtering.
func (s *ChromemStore) Search(ctx context.Context, q Query) ([]Item, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Search")
	defer span.End()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("limit", q.Limit),
		attribute.Int("tag_count", len(q.Tags)),
	)

	collection, err := s.collection(s.config.RecordsCollection)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	count := collection.Count()
	if count == 0 {
		return []Item{}, nil
	}

	// Equality filters chromem can apply natively.
	where := make(map[string]string)
	for _, f := range q.Filters {
		if !f.Negate {
			where[f.Field] = f.Value
		}
	}

	// Over-fetch so post-filtering on tags/negations still fills the limit.
	n := q.Limit * 3
	if n > count {
		n = count
	}

	results, err := collection.Query(ctx, q.Text, n, where, nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	items := make([]Item, 0, len(results))
	for _, r := range results {
		if !matchesTags(r.Metadata["tags"], q.Tags) {
			continue
		}
		if !matchesNegations(r.Metadata, q.Filters) {
			continue
		}
		items = append(items, Item{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: stringMetadata(r.Metadata),
		})
		if len(items) == q.Limit {
			break
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(items)))
	return items, nil
}

// ResolveGrouping finds the source meeting for a deliverable request by
// semantic lookup against the meetings collection.
func (s *ChromemStore) ResolveGrouping(ctx context.Context, key GroupingKey) (string, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.ResolveGrouping")
	defer span.End()

	collection, err := s.collection(s.config.MeetingsCollection)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if collection.Count() == 0 {
		return "", ErrGroupingNotFound
	}

	queryText := strings.TrimSpace(key.Deliverable + " " + key.Topic)
	if queryText == "" {
		return "", ErrGroupingNotFound
	}

	results, err := collection.Query(ctx, queryText, 1, nil, nil)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("querying meetings collection: %w", err)
	}
	if len(results) == 0 {
		return "", ErrGroupingNotFound
	}

	if id, ok := results[0].Metadata["meeting_id"]; ok && id != "" {
		return id, nil
	}
	return results[0].ID, nil
}

// Close releases resources. chromem persists synchronously, so this is a no-op.
func (s *ChromemStore) Close() error {
	return nil
}

// matchesTags reports whether a comma-separated tag list contains all wanted tags.
func matchesTags(tagList string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	have := make(map[string]bool)
	for _, t := range strings.Split(tagList, ",") {
		have[strings.TrimSpace(t)] = true
	}
	for _, w := range wanted {
		if !have[w] {
			return false
		}
	}
	return true
}

// matchesNegations reports whether metadata passes all negated filters.
func matchesNegations(metadata map[string]string, filters []Filter) bool {
	for _, f := range filters {
		if f.Negate && metadata[f.Field] == f.Value {
			return false
		}
	}
	return true
}

// stringMetadata widens chromem's string-valued metadata to the Item shape.
func stringMetadata(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
