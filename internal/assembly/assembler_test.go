package assembly

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/briefd/internal/logging"
	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

// newSeededAssembler builds an assembler over a store holding a resolvable
// grouping for validRequest plus one item per category.
func newSeededAssembler(t *testing.T) (*Assembler, *memorystore.InMemoryStore) {
	t.Helper()
	store := memorystore.NewInMemoryStore()
	req := validRequest()
	store.AddGrouping(memorystore.GroupingKey{Deliverable: req.Name, Topic: req.Topic}, "meeting-42")
	seedStore(store, "meeting-42")
	return NewAssembler(store, logging.NewNop()), store
}

func TestAssembler_ValidationErrorsPropagate(t *testing.T) {
	assembler, _ := newSeededAssembler(t)

	req := validRequest()
	req.Audience = ""
	pkg, err := assembler.Assemble(context.Background(), req)

	assert.Nil(t, pkg)
	assert.ErrorIs(t, err, ErrMissingAudience)
}

func TestAssembler_FullPipeline(t *testing.T) {
	assembler, _ := newSeededAssembler(t)

	pkg, err := assembler.Assemble(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, pkg)

	assert.Equal(t, "meeting-42", pkg.Metadata.GroupingID)
	assert.Equal(t, len(ActiveCategories()), pkg.Metadata.TotalResults)
	assert.Equal(t, len(ActiveCategories()), pkg.Metadata.CategoriesFound)
	assert.Len(t, pkg.RawContext, len(ActiveCategories()))
	assert.NotEmpty(t, pkg.Summary)

	// One result per category: 7 * (1/5 coverage) weighted -> 19.
	assert.Equal(t, 19, pkg.Confidence.Score)
	assert.Empty(t, pkg.Confidence.MissingCritical)
}

func TestAssembler_GroupingMissYieldsDegradedPackage(t *testing.T) {
	store := memorystore.NewInMemoryStore()
	assembler := NewAssembler(store, logging.NewNop())

	pkg, err := assembler.Assemble(context.Background(), validRequest())
	require.NoError(t, err, "a missing grouping must not surface as an error")
	require.NotNil(t, pkg)

	assert.Zero(t, pkg.Confidence.Score)
	assert.Equal(t, ConfidenceVeryLow, pkg.Confidence.Level)
	require.NotEmpty(t, pkg.Confidence.MissingCritical)
	assert.Contains(t, pkg.Confidence.MissingCritical[0], "No source meetings found")

	// Structurally complete: all raw keys present, all sections empty.
	require.Len(t, pkg.RawContext, len(ActiveCategories()))
	for _, category := range ActiveCategories() {
		assert.NotNil(t, pkg.RawContext[category].Items)
		assert.Empty(t, pkg.RawContext[category].Items)
	}
	assert.Empty(t, pkg.StakeholderInsights.Profiles)
	assert.Empty(t, pkg.Requirements.Functional)
	assert.Empty(t, pkg.Risks.Mitigations)
	assert.Empty(t, pkg.Timeline.CriticalDates)
	assert.NotEmpty(t, pkg.Summary)
	assert.Empty(t, pkg.Metadata.GroupingID)
}

func TestAssembler_ResolveErrorDegradesInsteadOfFailing(t *testing.T) {
	store := &failingResolveStore{inner: memorystore.NewInMemoryStore()}
	assembler := NewAssembler(store, logging.NewNop())

	pkg, err := assembler.Assemble(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Zero(t, pkg.Confidence.Score)
}

func TestAssembler_SingleCategoryFailureDegradesScoreOnly(t *testing.T) {
	assembler, store := newSeededAssembler(t)
	store.FailTag(CategoryDecisionContext.contentTag(), errors.New("backend unavailable"))

	pkg, err := assembler.Assemble(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Empty(t, pkg.RawContext[CategoryDecisionContext].Items)
	assert.NotEmpty(t, pkg.RawContext[CategoryDecisionContext].Error)
	require.Len(t, pkg.Confidence.MissingCritical, 1)
	assert.Contains(t, pkg.Confidence.MissingCritical[0], "decision")

	for _, category := range ActiveCategories() {
		if category == CategoryDecisionContext {
			continue
		}
		assert.Len(t, pkg.RawContext[category].Items, 1, "category %s", category)
	}
}

func TestAssembler_SparseScenario(t *testing.T) {
	// One stakeholder profile and one specification on record, nothing
	// else: the package is usable but scores very low and names the
	// decision gap.
	store := memorystore.NewInMemoryStore()
	req := validRequest()
	store.AddGrouping(memorystore.GroupingKey{Deliverable: req.Name, Topic: req.Topic}, "meeting-7")
	store.AddItem(
		stakeholderItem("Dana", map[string]any{"prefers_visual_aids": true, "prefers_executive_summary": true}),
		GroupingTag("meeting-7"), CategoryStakeholderIntelligence.contentTag(),
	)
	store.AddItem(
		memorystore.Item{ID: "spec-1", Content: "The report must include a revenue breakdown",
			Metadata: map[string]any{"format_requirements": "10 pages max"}},
		GroupingTag("meeting-7"), CategoryDeliverableSpecifications.contentTag(),
	)

	assembler := NewAssembler(store, logging.NewNop())
	pkg, err := assembler.Assemble(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 11, pkg.Confidence.Score)
	assert.Equal(t, ConfidenceVeryLow, pkg.Confidence.Level)
	require.Len(t, pkg.Confidence.MissingCritical, 1)
	assert.Contains(t, pkg.Confidence.MissingCritical[0], "decision")

	// The sparse results still fuse into usable sections.
	require.Len(t, pkg.StakeholderInsights.Profiles, 1)
	assert.Contains(t, pkg.StakeholderInsights.Recommendations[0], "charts")
	assert.Contains(t, pkg.FormatGuidance.StructuralRequirements, "10 pages max")
	assert.Contains(t, pkg.Requirements.Content, "The report must include a revenue breakdown")
}

func TestAssembler_SectionsNeverNil(t *testing.T) {
	assembler, _ := newSeededAssembler(t)

	pkg, err := assembler.Assemble(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotNil(t, pkg.StakeholderInsights.Profiles)
	assert.NotNil(t, pkg.FormatGuidance.StructuralRequirements)
	assert.NotNil(t, pkg.Requirements.Functional)
	assert.NotNil(t, pkg.SuccessPatterns.Approaches)
	assert.NotNil(t, pkg.Risks.ByCategory)
	assert.NotNil(t, pkg.Dependencies.Internal)
	assert.NotNil(t, pkg.Timeline.CriticalDates)
	assert.NotNil(t, pkg.Confidence.MissingCritical)
}

// failingResolveStore errors on grouping resolution with a non-sentinel
// error.
type failingResolveStore struct {
	inner memorystore.Store
}

func (f *failingResolveStore) Search(ctx context.Context, q memorystore.Query) ([]memorystore.Item, error) {
	return f.inner.Search(ctx, q)
}

func (f *failingResolveStore) ResolveGrouping(context.Context, memorystore.GroupingKey) (string, error) {
	return "", errors.New("connection reset")
}

func (f *failingResolveStore) Close() error { return f.inner.Close() }
