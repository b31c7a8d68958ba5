package assembly

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

// Per-category result limits. Specifications and stakeholder intelligence
// get the largest budgets since they carry the most confidence weight and
// feed the richest enhancers.
const (
	limitStakeholder  = 18
	limitSpecs        = 20
	limitDecisions    = 12
	limitInsights     = 12
	limitCrossProject = 8
	limitActions      = 10
	limitRisks        = 10
)

// BuildQueries plans one category-scoped query per active category, in
// canonical order. Planning is deterministic: the same request and
// grouping always produce the same specs. Queries for different
// categories never overlap in their content tags, so one record is
// attributed to at most one category.
func BuildQueries(req DeliverableRequest, groupingID string) ([]QuerySpec, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	scope := []string{GroupingTag(groupingID)}
	sections := strings.Join(req.Sections, " ")

	specs := []QuerySpec{
		{
			Category: CategoryStakeholderIntelligence,
			QueryText: joinTerms(
				req.Audience, "preferences communication style format expectations", req.Topic,
			),
			ResultLimit: limitStakeholder,
		},
		{
			Category: CategoryDeliverableSpecifications,
			QueryText: joinTerms(
				req.Type, req.Name, "requirements specifications structure template", sections,
			),
			ResultLimit: limitSpecs,
		},
		{
			Category: CategoryDecisionContext,
			QueryText: joinTerms(
				"decisions agreements approvals", req.Topic, req.Type,
			),
			Filters: []memorystore.Filter{
				{Field: "decision_status", Value: "approved"},
			},
			ResultLimit: limitDecisions,
		},
		{
			Category: CategoryImplementationInsights,
			QueryText: joinTerms(
				"lessons learned what worked successful approaches", req.Topic, req.Type,
			),
			ResultLimit: limitInsights,
		},
		{
			Category: CategoryCrossProjectContext,
			QueryText: joinTerms(
				"related projects shared resources dependencies", req.Topic,
			),
			ResultLimit: limitCrossProject,
		},
		{
			Category: CategoryActionContext,
			QueryText: joinTerms(
				"action items commitments deadlines owners", req.Topic,
			),
			Filters: []memorystore.Filter{
				{Field: "status", Value: "completed", Negate: true},
			},
			ResultLimit: limitActions,
		},
		{
			Category: CategoryRiskContext,
			QueryText: joinTerms(
				"risks concerns blockers mitigation", req.Topic, req.Name,
			),
			ResultLimit: limitRisks,
		},
	}

	for i := range specs {
		specs[i].TagFilters = append(append([]string{}, scope...), specs[i].Category.contentTag())
		if specs[i].ResultLimit < 8 || specs[i].ResultLimit > 20 {
			return nil, fmt.Errorf("planner produced out-of-range limit %d for %s",
				specs[i].ResultLimit, specs[i].Category)
		}
	}
	return specs, nil
}

// joinTerms joins non-empty parts with single spaces.
func joinTerms(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
