package assembly

import (
	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

const defaultRiskCategory = "general"

// fuseRisks normalizes risk results into a grouped profile. Every risk is
// kept even when metadata is sparse; severity and probability default to
// "unknown" so downstream consumers can still sort and display them.
func fuseRisks(items []memorystore.Item) RiskProfile {
	profile := emptyRiskProfile()

	for _, item := range items {
		risk := Risk{
			Description: itemText(item, "description"),
			Category:    metaString(item.Metadata, "risk_category"),
			Severity:    metaString(item.Metadata, "severity"),
			Probability: metaString(item.Metadata, "probability"),
			Mitigation:  metaString(item.Metadata, "mitigation"),
		}
		if risk.Description == "" {
			continue
		}
		if risk.Category == "" {
			risk.Category = defaultRiskCategory
		}
		if risk.Severity == "" {
			risk.Severity = "unknown"
		}
		if risk.Probability == "" {
			risk.Probability = "unknown"
		}

		profile.ByCategory[risk.Category] = append(profile.ByCategory[risk.Category], risk)
		if risk.Mitigation != "" {
			profile.Mitigations = append(profile.Mitigations, Mitigation{
				Risk:     risk.Description,
				Strategy: risk.Mitigation,
			})
		}
	}
	return profile
}

func emptyRiskProfile() RiskProfile {
	return RiskProfile{
		ByCategory:  map[string][]Risk{},
		Mitigations: []Mitigation{},
	}
}
