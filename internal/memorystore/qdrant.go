package memorystore

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/grpc"

	"github.com/fyrsmithlabs/briefd/internal/config"
	"github.com/fyrsmithlabs/briefd/internal/logging"
	"go.uber.org/zap"
)

// qdrantTracer for OpenTelemetry instrumentation.
var qdrantTracer = otel.Tracer("briefd.memorystore.qdrant")

// defaultMaxMessageSize is the gRPC message size limit (16MB). Meeting
// records with full transcript context can exceed the 4MB gRPC default.
const defaultMaxMessageSize = 16 * 1024 * 1024

// QdrantConfig holds configuration for an external Qdrant backend.
type QdrantConfig struct {
	// Host is the Qdrant server hostname. Default: "localhost"
	Host string

	// Port is the Qdrant gRPC port. Default: 6334
	Port int

	// APIKey authenticates against a secured Qdrant deployment.
	APIKey config.Secret

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// RecordsCollection holds meeting-derived knowledge records.
	// Default: "briefd_records"
	RecordsCollection string

	// MeetingsCollection holds one point per source meeting.
	// Default: "briefd_meetings"
	MeetingsCollection string

	// MaxMessageSize is the gRPC message size limit in bytes.
	MaxMessageSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.RecordsCollection == "" {
		c.RecordsCollection = "briefd_records"
	}
	if c.MeetingsCollection == "" {
		c.MeetingsCollection = "briefd_meetings"
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
}

// Validate validates the configuration.
func (c *QdrantConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Port)
	}
	if c.RecordsCollection == c.MeetingsCollection {
		return fmt.Errorf("%w: records and meetings collections must differ", ErrInvalidConfig)
	}
	return nil
}

// QdrantStore implements Store using an external Qdrant server over gRPC.
type QdrantStore struct {
	client   *qdrant.Client
	embedder Embedder
	config   QdrantConfig
	logger   *logging.Logger
}

// NewQdrantStore creates a new QdrantStore and connects to the server.
func NewQdrantStore(cfg QdrantConfig, embedder Embedder, logger *logging.Logger) (*QdrantStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if !cfg.UseTLS {
		logger.Warn(context.Background(), "qdrant gRPC using plaintext (TLS disabled), insecure for production")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey.Value(),
		UseTLS: cfg.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(cfg.MaxMessageSize),
				grpc.MaxCallSendMsgSize(cfg.MaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	logger.Info(context.Background(), "qdrant memory store initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Bool("tls", cfg.UseTLS),
	)

	return &QdrantStore{
		client:   client,
		embedder: embedder,
		config:   cfg,
		logger:   logger,
	}, nil
}

// Search returns ranked records relevant to the query.
//
// Tag membership and structured filters translate to native Qdrant payload
// conditions: tags as Must matches (keyword match on an array payload field
// matches any element), negated filters as MustNot.
func (s *QdrantStore) Search(ctx context.Context, q Query) ([]Item, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.Search")
	defer span.End()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("limit", q.Limit),
		attribute.Int("tag_count", len(q.Tags)),
	)

	queryVector, err := s.embedder.EmbedQuery(ctx, q.Text)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	filter := buildQdrantFilter(q)

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.config.RecordsCollection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(q.Limit)),
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("querying qdrant: %w", err)
	}

	items := make([]Item, 0, len(results))
	for _, point := range results {
		items = append(items, scoredPointToItem(point))
	}

	span.SetAttributes(attribute.Int("result_count", len(items)))
	return items, nil
}

// ResolveGrouping finds the source meeting for a deliverable request by
// semantic lookup against the meetings collection.
func (s *QdrantStore) ResolveGrouping(ctx context.Context, key GroupingKey) (string, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.ResolveGrouping")
	defer span.End()

	queryText := key.Deliverable + " " + key.Topic
	queryVector, err := s.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.config.MeetingsCollection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("querying meetings collection: %w", err)
	}
	if len(results) == 0 {
		return "", ErrGroupingNotFound
	}

	item := scoredPointToItem(results[0])
	if id, ok := item.Metadata["meeting_id"].(string); ok && id != "" {
		return id, nil
	}
	return item.ID, nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// buildQdrantFilter translates query tags and filters into a Qdrant filter.
// Returns nil when the query has no predicates.
func buildQdrantFilter(q Query) *qdrant.Filter {
	var must, mustNot []*qdrant.Condition

	for _, tag := range q.Tags {
		must = append(must, keywordCondition("tags", tag))
	}
	for _, f := range q.Filters {
		if f.Negate {
			mustNot = append(mustNot, keywordCondition(f.Field, f.Value))
		} else {
			must = append(must, keywordCondition(f.Field, f.Value))
		}
	}

	if len(must) == 0 && len(mustNot) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must, MustNot: mustNot}
}

// keywordCondition builds an exact-match payload condition.
func keywordCondition(field, value string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: field,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

// scoredPointToItem converts a Qdrant scored point into an Item.
func scoredPointToItem(point *qdrant.ScoredPoint) Item {
	item := Item{
		Score:    point.GetScore(),
		Metadata: make(map[string]any),
	}

	if id := point.GetId(); id != nil {
		if uuid := id.GetUuid(); uuid != "" {
			item.ID = uuid
		} else {
			item.ID = fmt.Sprintf("%d", id.GetNum())
		}
	}

	for k, v := range point.GetPayload() {
		switch val := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			if k == "content" {
				item.Content = val.StringValue
			} else {
				item.Metadata[k] = val.StringValue
			}
		case *qdrant.Value_IntegerValue:
			item.Metadata[k] = val.IntegerValue
		case *qdrant.Value_DoubleValue:
			item.Metadata[k] = val.DoubleValue
		case *qdrant.Value_BoolValue:
			item.Metadata[k] = val.BoolValue
		case *qdrant.Value_ListValue:
			strs := make([]string, 0, len(val.ListValue.GetValues()))
			for _, lv := range val.ListValue.GetValues() {
				if s := lv.GetStringValue(); s != "" {
					strs = append(strs, s)
				}
			}
			item.Metadata[k] = strs
		}
	}

	return item
}
