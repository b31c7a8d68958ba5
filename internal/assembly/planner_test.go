package assembly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() DeliverableRequest {
	return DeliverableRequest{
		Name:     "Q3 Board Report",
		Type:     "report",
		Topic:    "revenue performance",
		Audience: "executive team",
	}
}

func TestBuildQueries_OnePerActiveCategory(t *testing.T) {
	specs, err := BuildQueries(validRequest(), "meeting-42")
	require.NoError(t, err)
	require.Len(t, specs, len(ActiveCategories()))

	for i, category := range ActiveCategories() {
		assert.Equal(t, category, specs[i].Category, "position %d", i)
	}
}

func TestBuildQueries_NeverPlansStrategicContext(t *testing.T) {
	specs, err := BuildQueries(validRequest(), "meeting-42")
	require.NoError(t, err)

	for _, spec := range specs {
		assert.NotEqual(t, CategoryStrategicContext, spec.Category)
	}
}

func TestBuildQueries_ScopedToGroupingAndCategory(t *testing.T) {
	specs, err := BuildQueries(validRequest(), "meeting-42")
	require.NoError(t, err)

	seenContentTags := make(map[string]bool)
	for _, spec := range specs {
		assert.Contains(t, spec.TagFilters, "grouping:meeting-42", "category %s", spec.Category)
		assert.Contains(t, spec.TagFilters, spec.Category.contentTag(), "category %s", spec.Category)

		// Content tags are disjoint across categories.
		tag := spec.Category.contentTag()
		assert.False(t, seenContentTags[tag], "duplicate content tag %s", tag)
		seenContentTags[tag] = true
	}
}

func TestBuildQueries_LimitsWithinRange(t *testing.T) {
	specs, err := BuildQueries(validRequest(), "meeting-42")
	require.NoError(t, err)

	limits := make(map[Category]int)
	for _, spec := range specs {
		assert.GreaterOrEqual(t, spec.ResultLimit, 8, "category %s", spec.Category)
		assert.LessOrEqual(t, spec.ResultLimit, 20, "category %s", spec.Category)
		limits[spec.Category] = spec.ResultLimit
	}

	// The heaviest-weighted categories get the largest budgets.
	for category, limit := range limits {
		if category == CategoryDeliverableSpecifications || category == CategoryStakeholderIntelligence {
			continue
		}
		assert.LessOrEqual(t, limit, limits[CategoryDeliverableSpecifications], "category %s", category)
		assert.LessOrEqual(t, limit, limits[CategoryStakeholderIntelligence], "category %s", category)
	}
}

func TestBuildQueries_Deterministic(t *testing.T) {
	first, err := BuildQueries(validRequest(), "meeting-42")
	require.NoError(t, err)
	second, err := BuildQueries(validRequest(), "meeting-42")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildQueries_IncorporatesRequestFields(t *testing.T) {
	req := validRequest()
	req.Sections = []string{"financials", "outlook"}

	specs, err := BuildQueries(req, "meeting-42")
	require.NoError(t, err)

	byCategory := make(map[Category]QuerySpec)
	for _, spec := range specs {
		byCategory[spec.Category] = spec
	}

	assert.Contains(t, byCategory[CategoryStakeholderIntelligence].QueryText, req.Audience)
	assert.Contains(t, byCategory[CategoryDeliverableSpecifications].QueryText, req.Name)
	assert.Contains(t, byCategory[CategoryDeliverableSpecifications].QueryText, "financials")
	assert.Contains(t, byCategory[CategoryDecisionContext].QueryText, req.Topic)
	assert.Contains(t, byCategory[CategoryRiskContext].QueryText, req.Topic)
}

func TestBuildQueries_StructuredFilters(t *testing.T) {
	specs, err := BuildQueries(validRequest(), "meeting-42")
	require.NoError(t, err)

	for _, spec := range specs {
		switch spec.Category {
		case CategoryDecisionContext:
			require.Len(t, spec.Filters, 1)
			assert.Equal(t, "decision_status", spec.Filters[0].Field)
			assert.Equal(t, "approved", spec.Filters[0].Value)
			assert.False(t, spec.Filters[0].Negate)
		case CategoryActionContext:
			// Completed action items are excluded via filter negation.
			require.Len(t, spec.Filters, 1)
			assert.Equal(t, "status", spec.Filters[0].Field)
			assert.Equal(t, "completed", spec.Filters[0].Value)
			assert.True(t, spec.Filters[0].Negate)
		default:
			assert.Empty(t, spec.Filters, "category %s", spec.Category)
		}
	}
}

func TestBuildQueries_ValidatesRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DeliverableRequest)
		wantErr error
	}{
		{"missing name", func(r *DeliverableRequest) { r.Name = "" }, ErrMissingDeliverableName},
		{"missing type", func(r *DeliverableRequest) { r.Type = "  " }, ErrMissingDeliverableType},
		{"missing topic", func(r *DeliverableRequest) { r.Topic = "" }, ErrMissingTopic},
		{"missing audience", func(r *DeliverableRequest) { r.Audience = "" }, ErrMissingAudience},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := BuildQueries(req, "meeting-42")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
