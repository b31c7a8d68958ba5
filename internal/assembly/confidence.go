package assembly

import (
	"fmt"
	"math"
	"strings"
)

// categoryWeights is the confidence weight table. Weights sum to 1.0.
//
// Strategic context is weighted but never retrieved, so the maximum
// achievable score is 95. That headroom is intentional: it keeps the
// scorer honest about a knowledge dimension the capture pipeline does not
// produce yet, and scores will rise without a formula change once it does.
var categoryWeights = map[Category]float64{
	CategoryDeliverableSpecifications: 0.30,
	CategoryStakeholderIntelligence:   0.25,
	CategoryDecisionContext:           0.15,
	CategoryImplementationInsights:    0.10,
	CategoryCrossProjectContext:       0.05,
	CategoryActionContext:             0.05,
	CategoryRiskContext:               0.05,
	CategoryStrategicContext:          0.05,
}

// coverageSaturation is the result count at which a category is considered
// fully covered. More results past this point stop raising the score.
const coverageSaturation = 5

// criticalGaps maps the critical categories to their human-readable gap
// descriptions, emitted when the category returns nothing.
var criticalGaps = []struct {
	category Category
	message  string
}{
	{CategoryStakeholderIntelligence, "No stakeholder intelligence found: audience preferences and communication style are unknown."},
	{CategoryDeliverableSpecifications, "No deliverable specifications found: format and content requirements are unknown."},
	{CategoryDecisionContext, "No decision context found: relevant decisions and approvals are unknown."},
}

// ScoreConfidence computes the weighted coverage score for a set of raw
// results. It is a pure function of result counts: ranking quality and
// failure causes do not enter the formula, only how much each category
// returned. A failed category scores exactly like an empty one.
func ScoreConfidence(raw RawContext) ConfidenceRecord {
	var weightedSum, totalWeight float64
	breakdown := make(map[Category]CategoryCoverage, len(categoryWeights))

	for category, weight := range categoryWeights {
		count := len(raw[category].Items)
		coverage := categoryCoverage(count)
		weightedSum += weight * coverage
		totalWeight += weight
		breakdown[category] = CategoryCoverage{
			WeightPct:   100 * weight,
			ResultCount: count,
			CoveragePct: 100 * coverage,
		}
	}

	score := int(math.Round(100 * weightedSum / totalWeight))
	level := confidenceLevel(score)

	var missing []string
	for _, gap := range criticalGaps {
		if len(raw[gap.category].Items) == 0 {
			missing = append(missing, gap.message)
		}
	}
	if missing == nil {
		missing = []string{}
	}

	return ConfidenceRecord{
		Score:           score,
		Level:           level,
		Breakdown:       breakdown,
		MissingCritical: missing,
		Recommendation:  recommendation(score, missing),
	}
}

// categoryCoverage maps a result count to [0, 1], saturating at
// coverageSaturation results.
func categoryCoverage(count int) float64 {
	if count >= coverageSaturation {
		return 1
	}
	if count <= 0 {
		return 0
	}
	return float64(count) / coverageSaturation
}

func confidenceLevel(score int) ConfidenceLevel {
	switch {
	case score >= 80:
		return ConfidenceVeryHigh
	case score >= 65:
		return ConfidenceHigh
	case score >= 45:
		return ConfidenceMedium
	case score >= 25:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// recommendation returns the caller-facing trust guidance. Below the High
// band, the missing-critical gaps are echoed so the caller sees what to
// capture next.
func recommendation(score int, missing []string) string {
	var rec string
	switch {
	case score >= 80:
		rec = "Context is comprehensive. Proceed with the assembled package as the primary source."
	case score >= 65:
		rec = "Context is strong. Proceed, but verify details in weakly covered categories."
	case score >= 45:
		rec = "Context is partial. Use the package as a starting point and fill gaps manually."
	default:
		rec = "Context is sparse. Treat the package as hints only and gather source material directly."
	}

	if score < 65 && len(missing) > 0 {
		rec = fmt.Sprintf("%s Critical gaps: %s", rec, strings.Join(missing, " "))
	}
	return rec
}
