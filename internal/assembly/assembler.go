package assembly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/briefd/internal/logging"
	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

// Assembler orchestrates the full pipeline: validate, resolve the source
// meeting grouping, plan, execute, fuse, score.
type Assembler struct {
	store    memorystore.Store
	executor *Executor
	logger   *logging.Logger
}

// NewAssembler creates an assembler over the given store.
func NewAssembler(store memorystore.Store, logger *logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assembler{
		store:    store,
		executor: NewExecutor(store, logger),
		logger:   logger.Named("assembler"),
	}
}

// Assemble builds a complete context package for the request.
//
// Only request validation can fail this call. Every downstream problem
// degrades instead: an unresolvable grouping yields a zero package with a
// zero confidence score, and per-category search failures surface as empty
// categories in the confidence breakdown.
func (a *Assembler) Assemble(ctx context.Context, req DeliverableRequest) (*ContextPackage, error) {
	ctx, span := tracer.Start(ctx, "assembly.assemble")
	defer span.End()
	span.SetAttributes(
		attribute.String("deliverable.name", req.Name),
		attribute.String("deliverable.type", req.Type),
	)

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("invalid deliverable request: %w", err)
	}

	start := time.Now()

	groupingID, err := a.store.ResolveGrouping(ctx, req.GroupingKey())
	if err != nil {
		if !errors.Is(err, memorystore.ErrGroupingNotFound) {
			span.RecordError(err)
		}
		a.logger.Warn(ctx, "no source meeting grouping resolved, returning degraded package",
			zap.String("deliverable", req.Name),
			zap.String("topic", req.Topic),
			zap.Error(err))
		pkg := a.degradedPackage(req, start)
		return pkg, nil
	}

	specs, err := BuildQueries(req, groupingID)
	if err != nil {
		// Unreachable after Validate, kept as a guard.
		span.RecordError(err)
		return nil, err
	}

	raw := a.executor.Execute(ctx, specs)
	pkg := a.fuse(req, groupingID, raw, start)

	span.SetAttributes(
		attribute.Int("confidence.score", pkg.Confidence.Score),
		attribute.String("confidence.level", string(pkg.Confidence.Level)),
		attribute.Int("results.total", pkg.Metadata.TotalResults),
	)
	a.logger.Info(ctx, "context package assembled",
		zap.String("deliverable", req.Name),
		zap.String("grouping_id", groupingID),
		zap.Int("total_results", pkg.Metadata.TotalResults),
		zap.Int("confidence_score", pkg.Confidence.Score),
		zap.Duration("duration", time.Since(start)))
	return pkg, nil
}

// fuse runs every enhancer over the raw results and assembles the package.
func (a *Assembler) fuse(req DeliverableRequest, groupingID string, raw RawContext, start time.Time) *ContextPackage {
	confidence := ScoreConfidence(raw)
	stakeholders := fuseStakeholderInsights(raw[CategoryStakeholderIntelligence].Items, req)

	pkg := &ContextPackage{
		RawContext:          raw,
		StakeholderInsights: stakeholders,
		FormatGuidance: fuseFormatGuidance(
			raw[CategoryDeliverableSpecifications].Items,
			stakeholders.Recommendations,
		),
		Requirements: fuseRequirements(
			raw[CategoryDeliverableSpecifications].Items,
			raw[CategoryDecisionContext].Items,
		),
		SuccessPatterns: fusePatterns(raw[CategoryImplementationInsights].Items),
		Risks:           fuseRisks(raw[CategoryRiskContext].Items),
		Dependencies: fuseDependencies(
			raw[CategoryActionContext].Items,
			raw[CategoryCrossProjectContext].Items,
		),
		Timeline: fuseTimeline(
			raw[CategoryActionContext].Items,
			raw[CategoryDeliverableSpecifications].Items,
		),
		Confidence: confidence,
		Metadata: PackageMetadata{
			PackageID:        uuid.NewString(),
			Request:          req,
			GroupingID:       groupingID,
			AssembledAt:      time.Now().UTC(),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			TotalResults:     raw.TotalResults(),
			CategoriesFound:  raw.CategoriesFound(),
		},
	}
	pkg.Summary = buildSummary(req, pkg)
	return pkg
}

// degradedPackage is returned when no source meeting grouping exists for
// the request. It is structurally complete: all seven raw-context keys are
// present and empty, every section holds its empty value, and confidence
// reports the missing grouping as the dominant gap.
func (a *Assembler) degradedPackage(req DeliverableRequest, start time.Time) *ContextPackage {
	raw := make(RawContext, len(ActiveCategories()))
	for _, category := range ActiveCategories() {
		raw[category] = RawResultSet{Category: category, Items: []memorystore.Item{}}
	}

	confidence := ScoreConfidence(raw)
	confidence.MissingCritical = append(
		[]string{"No source meetings found for this deliverable; context could not be retrieved."},
		confidence.MissingCritical...,
	)
	confidence.Recommendation = "No meeting context exists for this deliverable yet. " +
		"Capture the relevant meetings first, then reassemble."

	pkg := &ContextPackage{
		RawContext:          raw,
		StakeholderInsights: emptyStakeholderInsights(),
		FormatGuidance:      emptyFormatGuidance(),
		Requirements:        emptyRequirements(),
		SuccessPatterns:     emptySuccessPatterns(),
		Risks:               emptyRiskProfile(),
		Dependencies:        emptyDependencies(),
		Timeline:            emptyTimeline(),
		Confidence:          confidence,
		Metadata: PackageMetadata{
			PackageID:        uuid.NewString(),
			Request:          req,
			AssembledAt:      time.Now().UTC(),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
	}
	pkg.Summary = buildSummary(req, pkg)
	return pkg
}

// buildSummary renders the one-paragraph overview at the top of a package.
func buildSummary(req DeliverableRequest, pkg *ContextPackage) string {
	if pkg.Metadata.TotalResults == 0 {
		return fmt.Sprintf(
			"No assembled context is available for %q (%s on %s, for %s). %s",
			req.Name, req.Type, req.Topic, req.Audience, pkg.Confidence.Recommendation,
		)
	}

	return fmt.Sprintf(
		"Assembled context for %q (%s on %s, for %s): %d result(s) across %d of %d categories. "+
			"Confidence %d/100 (%s). %s",
		req.Name, req.Type, req.Topic, req.Audience,
		pkg.Metadata.TotalResults, pkg.Metadata.CategoriesFound, len(ActiveCategories()),
		pkg.Confidence.Score, pkg.Confidence.Level, pkg.Confidence.Recommendation,
	)
}
