package assembly

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

// Technical sophistication levels map onto a 1-4 scale for averaging.
// Unknown or unrecognized levels count as intermediate.
const defaultTechLevel = 2.0

func techLevelValue(level string) float64 {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "basic":
		return 1
	case "intermediate":
		return 2
	case "advanced":
		return 3
	case "expert":
		return 4
	default:
		return defaultTechLevel
	}
}

// fuseStakeholderInsights builds audience profiles and aggregate
// communication guidance from stakeholder intelligence results.
func fuseStakeholderInsights(items []memorystore.Item, req DeliverableRequest) StakeholderInsights {
	insights := emptyStakeholderInsights()
	if len(items) == 0 {
		return insights
	}

	seen := make(map[string]bool)
	styleCounts := make(map[string]int)
	var techSum float64

	for _, item := range items {
		profile := decodeStakeholderProfile(item)
		if profile.Name == "" {
			continue
		}
		key := strings.ToLower(profile.Name)
		if seen[key] {
			continue
		}
		seen[key] = true

		insights.Profiles = append(insights.Profiles, profile)
		techSum += techLevelValue(profile.TechnicalSophistication)
		if style := strings.ToLower(strings.TrimSpace(profile.CommunicationStyle)); style != "" {
			styleCounts[style]++
		}
	}

	n := len(insights.Profiles)
	if n == 0 {
		return insights
	}

	insights.PreferenceRates = preferenceRates(insights.Profiles)
	insights.AverageTechnicalLevel = techSum / float64(n)
	insights.DominantStyle = dominantStyle(styleCounts)
	insights.Narrative = stakeholderNarrative(insights, req)
	insights.Recommendations = stakeholderRecommendations(insights)
	return insights
}

func decodeStakeholderProfile(item memorystore.Item) StakeholderProfile {
	m := item.Metadata
	return StakeholderProfile{
		Name:                    metaString(m, "stakeholder_name"),
		Role:                    metaString(m, "role"),
		CommunicationStyle:      metaString(m, "communication_style"),
		TechnicalSophistication: metaString(m, "technical_sophistication"),
		PrefersVisualAids:       metaBool(m, "prefers_visual_aids"),
		PrefersExecutiveSummary: metaBool(m, "prefers_executive_summary"),
		PrefersDetailedAppendix: metaBool(m, "prefers_detailed_appendix"),
		PrefersDataTables:       metaBool(m, "prefers_data_tables"),
		PrefersActionItems:      metaBool(m, "prefers_action_items"),
	}
}

func preferenceRates(profiles []StakeholderProfile) PreferenceRates {
	n := float64(len(profiles))
	if n == 0 {
		return PreferenceRates{}
	}
	var visual, summary, appendix, tables, actions float64
	for _, p := range profiles {
		if p.PrefersVisualAids {
			visual++
		}
		if p.PrefersExecutiveSummary {
			summary++
		}
		if p.PrefersDetailedAppendix {
			appendix++
		}
		if p.PrefersDataTables {
			tables++
		}
		if p.PrefersActionItems {
			actions++
		}
	}
	return PreferenceRates{
		VisualAids:       100 * visual / n,
		ExecutiveSummary: 100 * summary / n,
		DetailedAppendix: 100 * appendix / n,
		DataTables:       100 * tables / n,
		ActionItems:      100 * actions / n,
	}
}

// dominantStyle returns the most frequent communication style, breaking
// ties alphabetically for determinism. Defaults to collaborative.
func dominantStyle(counts map[string]int) string {
	if len(counts) == 0 {
		return "collaborative"
	}
	styles := make([]string, 0, len(counts))
	for style := range counts {
		styles = append(styles, style)
	}
	sort.Strings(styles)

	best := styles[0]
	for _, style := range styles[1:] {
		if counts[style] > counts[best] {
			best = style
		}
	}
	return best
}

func stakeholderNarrative(insights StakeholderInsights, req DeliverableRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The %s audience for this %s includes %d known stakeholder(s). ",
		req.Audience, req.Type, len(insights.Profiles))
	fmt.Fprintf(&b, "Dominant communication style is %s. ", insights.DominantStyle)

	switch {
	case insights.AverageTechnicalLevel >= 3:
		b.WriteString("The audience is technically sophisticated; detail and precision will land well.")
	case insights.AverageTechnicalLevel <= 1.5:
		b.WriteString("The audience is non-technical; favor plain language and avoid jargon.")
	default:
		b.WriteString("The audience has mixed technical depth; lead with outcomes and keep detail available.")
	}
	return b.String()
}

func stakeholderRecommendations(insights StakeholderInsights) []string {
	var recs []string
	rates := insights.PreferenceRates

	if rates.VisualAids > 50 {
		recs = append(recs, "Include charts and visual aids; most of the audience prefers them.")
	}
	if rates.ExecutiveSummary > 50 {
		recs = append(recs, "Open with an executive summary.")
	}
	if rates.DetailedAppendix > 50 {
		recs = append(recs, "Attach a detailed appendix for deep-dive readers.")
	}
	if rates.DataTables > 50 {
		recs = append(recs, "Present key figures in data tables.")
	}
	if rates.ActionItems > 50 {
		recs = append(recs, "Close with explicit action items and owners.")
	}

	switch {
	case insights.AverageTechnicalLevel >= 3:
		recs = append(recs, "Technical depth is welcome; include methodology and specifics.")
	case insights.AverageTechnicalLevel <= 1.5:
		recs = append(recs, "Keep the material non-technical and outcome-focused.")
	}

	if len(recs) == 0 {
		recs = append(recs, fmt.Sprintf("Match the audience's %s style; no strong format preferences are on record.",
			insights.DominantStyle))
	}
	return recs
}

func emptyStakeholderInsights() StakeholderInsights {
	return StakeholderInsights{
		Profiles:              []StakeholderProfile{},
		AverageTechnicalLevel: defaultTechLevel,
		DominantStyle:         "collaborative",
		Recommendations:       []string{},
	}
}
