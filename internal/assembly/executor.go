package assembly

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/briefd/internal/logging"
	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

var tracer = otel.Tracer("github.com/fyrsmithlabs/briefd/internal/assembly")

// Executor runs planned queries against the memory store in parallel.
//
// Failure isolation is the contract: each category's search runs in its own
// goroutine, a failing or panicking category yields an empty result set
// with its error recorded, and sibling categories are never cancelled or
// slowed on its behalf.
type Executor struct {
	store  memorystore.Store
	logger *logging.Logger
}

// NewExecutor creates an executor over the given store.
func NewExecutor(store memorystore.Store, logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{store: store, logger: logger}
}

// Execute runs every spec concurrently and returns a result set per
// category. The returned map always holds one entry per spec; callers that
// plan all active categories get all seven keys regardless of failures.
func (e *Executor) Execute(ctx context.Context, specs []QuerySpec) RawContext {
	ctx, span := tracer.Start(ctx, "assembly.execute_queries")
	defer span.End()
	span.SetAttributes(attribute.Int("queries.count", len(specs)))

	results := make([]RawResultSet, len(specs))

	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec QuerySpec) {
			defer wg.Done()
			results[i] = e.runOne(ctx, spec)
		}(i, spec)
	}
	wg.Wait()

	raw := make(RawContext, len(specs))
	for _, set := range results {
		raw[set.Category] = set
	}

	span.SetAttributes(
		attribute.Int("results.total", raw.TotalResults()),
		attribute.Int("results.categories_found", raw.CategoriesFound()),
	)
	return raw
}

// runOne executes a single category search, converting panics and errors
// into an empty result set.
func (e *Executor) runOne(ctx context.Context, spec QuerySpec) (set RawResultSet) {
	ctx, span := tracer.Start(ctx, "assembly.search_category")
	defer span.End()
	span.SetAttributes(
		attribute.String("category", string(spec.Category)),
		attribute.Int("limit", spec.ResultLimit),
	)

	set = RawResultSet{Category: spec.Category, Items: []memorystore.Item{}}
	start := time.Now()

	defer func() {
		set.DurationMs = time.Since(start).Milliseconds()
		if r := recover(); r != nil {
			set.Items = []memorystore.Item{}
			set.Error = fmt.Sprintf("panic: %v", r)
			e.logger.Error(ctx, "category search panicked",
				zap.String("category", string(spec.Category)),
				zap.Any("panic", r))
		}
		span.SetAttributes(attribute.Int("results.count", len(set.Items)))
	}()

	items, err := e.store.Search(ctx, spec.storeQuery())
	if err != nil {
		set.Error = err.Error()
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			e.logger.Warn(ctx, "category search timed out",
				zap.String("category", string(spec.Category)),
				zap.Duration("duration", time.Since(start)))
		} else {
			e.logger.Warn(ctx, "category search failed",
				zap.String("category", string(spec.Category)),
				zap.Error(err))
		}
		return set
	}

	if items == nil {
		items = []memorystore.Item{}
	}
	set.Items = items
	e.logger.Debug(ctx, "category search completed",
		zap.String("category", string(spec.Category)),
		zap.Int("results", len(items)),
		zap.Duration("duration", time.Since(start)))
	return set
}
