package assembly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

func stakeholderItem(name string, meta map[string]any) memorystore.Item {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["stakeholder_name"] = name
	return memorystore.Item{ID: "stk-" + name, Content: name + " profile", Metadata: meta}
}

func TestFuseStakeholderInsights_ProfilesAndRates(t *testing.T) {
	items := []memorystore.Item{
		stakeholderItem("Dana", map[string]any{
			"role":                      "CFO",
			"communication_style":       "direct",
			"technical_sophistication":  "basic",
			"prefers_visual_aids":       "true",
			"prefers_executive_summary": true,
		}),
		stakeholderItem("Lee", map[string]any{
			"communication_style":      "direct",
			"technical_sophistication": "expert",
			"prefers_visual_aids":      "yes",
		}),
	}

	insights := fuseStakeholderInsights(items, validRequest())

	require.Len(t, insights.Profiles, 2)
	assert.Equal(t, "direct", insights.DominantStyle)
	assert.Equal(t, 100.0, insights.PreferenceRates.VisualAids)
	assert.Equal(t, 50.0, insights.PreferenceRates.ExecutiveSummary)
	assert.Zero(t, insights.PreferenceRates.DataTables)
	// basic=1, expert=4.
	assert.InDelta(t, 2.5, insights.AverageTechnicalLevel, 1e-9)
	assert.NotEmpty(t, insights.Narrative)
}

func TestFuseStakeholderInsights_StringEncodedBooleans(t *testing.T) {
	// Backends that store metadata as strings still decode correctly.
	items := []memorystore.Item{
		stakeholderItem("Dana", map[string]any{
			"prefers_data_tables":  "1",
			"prefers_action_items": "false",
		}),
	}

	insights := fuseStakeholderInsights(items, validRequest())
	require.Len(t, insights.Profiles, 1)
	assert.True(t, insights.Profiles[0].PrefersDataTables)
	assert.False(t, insights.Profiles[0].PrefersActionItems)
}

func TestFuseStakeholderInsights_ChartRecommendationThreshold(t *testing.T) {
	visual := stakeholderItem("A", map[string]any{"prefers_visual_aids": true})
	nonVisual := stakeholderItem("B", nil)
	third := stakeholderItem("C", map[string]any{"prefers_visual_aids": true})

	// 2 of 3 prefer visuals: above the 50% bar.
	insights := fuseStakeholderInsights([]memorystore.Item{visual, nonVisual, third}, validRequest())
	assert.Contains(t, insights.Recommendations[0], "charts")

	// 1 of 2: exactly 50% does not trigger.
	insights = fuseStakeholderInsights([]memorystore.Item{visual, nonVisual}, validRequest())
	for _, rec := range insights.Recommendations {
		assert.NotContains(t, rec, "charts")
	}
}

func TestFuseStakeholderInsights_UnknownTechLevelDefaults(t *testing.T) {
	insights := fuseStakeholderInsights([]memorystore.Item{stakeholderItem("Dana", nil)}, validRequest())
	assert.InDelta(t, 2.0, insights.AverageTechnicalLevel, 1e-9)
	assert.Equal(t, "collaborative", insights.DominantStyle)
}

func TestFuseStakeholderInsights_DeduplicatesByName(t *testing.T) {
	items := []memorystore.Item{
		stakeholderItem("Dana", map[string]any{"role": "CFO"}),
		stakeholderItem("dana", map[string]any{"role": "CEO"}),
	}
	insights := fuseStakeholderInsights(items, validRequest())
	require.Len(t, insights.Profiles, 1)
	assert.Equal(t, "CFO", insights.Profiles[0].Role)
}

func TestFuseStakeholderInsights_Empty(t *testing.T) {
	insights := fuseStakeholderInsights(nil, validRequest())
	assert.Empty(t, insights.Profiles)
	assert.NotNil(t, insights.Profiles)
	assert.Equal(t, "collaborative", insights.DominantStyle)
}

func TestFuseFormatGuidance(t *testing.T) {
	items := []memorystore.Item{
		{ID: "s1", Content: "spec", Metadata: map[string]any{
			"format_requirements": "10 pages max, executive summary first",
			"presentation_tips":   []string{"lead with outcomes"},
			"template":            "quarterly-board-template-v2",
		}},
		{ID: "s2", Content: "spec", Metadata: map[string]any{
			"format_requirements": "10 pages max",
			"reference_example":   "Q2 board report",
		}},
	}

	guidance := fuseFormatGuidance(items, []string{"Open with an executive summary."})

	assert.ElementsMatch(t, []string{
		"10 pages max",
		"executive summary first",
		"Follow template: quarterly-board-template-v2",
	}, guidance.StructuralRequirements)
	assert.Equal(t, []string{"lead with outcomes", "Open with an executive summary."}, guidance.PresentationTips)
	assert.Equal(t, []string{"Q2 board report"}, guidance.ReferenceExamples)
}

func TestFuseRequirements_BucketsAndObligationScan(t *testing.T) {
	specs := []memorystore.Item{
		{ID: "s1", Content: "The report must include a revenue breakdown. Charts are optional.",
			Metadata: map[string]any{
				"requirements_specified": []string{"cover all three regions"},
				"format_requirements":    "PDF format",
				"approval_process":       "CFO review before distribution",
			}},
	}
	decisions := []memorystore.Item{
		{ID: "d1", Content: "Final numbers are required before Friday.",
			Metadata: map[string]any{"approver": "Dana"}},
	}

	reqs := fuseRequirements(specs, decisions)

	assert.Equal(t, []string{"cover all three regions"}, reqs.Functional[:1])
	assert.Equal(t, []string{"PDF format"}, reqs.Format)
	assert.Contains(t, reqs.Content, "The report must include a revenue breakdown")
	assert.NotContains(t, reqs.Content, "Charts are optional")
	assert.Contains(t, reqs.Approval, "CFO review before distribution")
	assert.Contains(t, reqs.Approval, "Requires sign-off from Dana")
	assert.Contains(t, reqs.Functional, "Final numbers are required before Friday")
}

func TestFusePatterns_SplitsByLessonType(t *testing.T) {
	items := []memorystore.Item{
		{ID: "i1", Content: "Weekly demos kept stakeholders aligned",
			Metadata: map[string]any{"lesson_type": "success", "generalizable": "true", "project": "atlas"}},
		{ID: "i2", Content: "Skipping the dry run caused a rough presentation",
			Metadata: map[string]any{"lesson_type": "failure"}},
		{ID: "i3", Content: "Untyped lesson", Metadata: map[string]any{}},
	}

	patterns := fusePatterns(items)

	require.Len(t, patterns.Approaches, 1)
	assert.Equal(t, "atlas", patterns.Approaches[0].Context)
	require.Len(t, patterns.AvoidPitfalls, 1)
	assert.Contains(t, patterns.AvoidPitfalls[0].Description, "dry run")
	require.Len(t, patterns.BestPractices, 1)
	assert.Equal(t, patterns.Approaches[0].Description, patterns.BestPractices[0].Description)
}

func TestFuseRisks_NormalizesAndGroups(t *testing.T) {
	items := []memorystore.Item{
		{ID: "r1", Content: "Data pipeline may miss the reporting deadline",
			Metadata: map[string]any{
				"risk_category": "schedule",
				"severity":      "high",
				"probability":   "medium",
				"mitigation":    "Start extraction a week early",
			}},
		{ID: "r2", Content: "Key reviewer on leave", Metadata: map[string]any{"risk_category": "schedule"}},
		{ID: "r3", Content: "Numbers may be restated", Metadata: map[string]any{}},
	}

	profile := fuseRisks(items)

	require.Len(t, profile.ByCategory["schedule"], 2)
	require.Len(t, profile.ByCategory[defaultRiskCategory], 1)
	assert.Equal(t, "unknown", profile.ByCategory["schedule"][1].Severity)

	require.Len(t, profile.Mitigations, 1)
	assert.Equal(t, "Start extraction a week early", profile.Mitigations[0].Strategy)
}

func TestFuseDependencies(t *testing.T) {
	actions := []memorystore.Item{
		{ID: "a1", Content: "Draft financial section",
			Metadata: map[string]any{"depends_on": "Finance data export", "due_date": "2026-09-01"}},
	}
	cross := []memorystore.Item{
		{ID: "c1", Content: "Shared analytics effort",
			Metadata: map[string]any{
				"external_dependencies": "Vendor API access, Legal review",
				"shared_resources":      []string{"analytics team"},
			}},
	}

	deps := fuseDependencies(actions, cross)

	require.Len(t, deps.Internal, 1)
	assert.Equal(t, "Finance data export", deps.Internal[0].DependsOn)
	assert.ElementsMatch(t, []string{"Vendor API access", "Legal review"}, deps.External)
	assert.Equal(t, []string{"analytics team"}, deps.Resources)
}

func TestFuseTimeline_SortedAscending(t *testing.T) {
	actions := []memorystore.Item{
		{ID: "a1", Content: "Submit draft", Metadata: map[string]any{"due_date": "2026-09-15"}},
		{ID: "a2", Content: "Collect figures", Metadata: map[string]any{"due_date": "2026-09-01"}},
		{ID: "a3", Content: "Someday item", Metadata: map[string]any{"due_date": "next quarter sometime"}},
	}
	specs := []memorystore.Item{
		{ID: "s1", Content: "Board report spec",
			Metadata: map[string]any{"deadline": "2026-09-30", "deliverable_name": "Q3 Board Report"}},
		{ID: "s2", Content: "No deadline spec"},
	}

	timeline := fuseTimeline(actions, specs)

	require.Len(t, timeline.CriticalDates, 3)
	assert.Equal(t, "2026-09-01", timeline.CriticalDates[0].Date)
	assert.Equal(t, "2026-09-15", timeline.CriticalDates[1].Date)
	// Unparseable dates sort last.
	assert.Equal(t, "next quarter sometime", timeline.CriticalDates[2].Date)

	require.Len(t, timeline.Milestones, 1)
	assert.Equal(t, "Q3 Board Report", timeline.Milestones[0].Name)
	assert.Equal(t, "2026-09-30", timeline.Milestones[0].Deadline)
}

func TestEmptySections_AreNonNil(t *testing.T) {
	assert.NotNil(t, emptyFormatGuidance().StructuralRequirements)
	assert.NotNil(t, emptyRequirements().Functional)
	assert.NotNil(t, emptySuccessPatterns().Approaches)
	assert.NotNil(t, emptyRiskProfile().ByCategory)
	assert.NotNil(t, emptyDependencies().Internal)
	assert.NotNil(t, emptyTimeline().CriticalDates)
}
