package assembly

import (
	"strings"

	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

// fusePatterns splits implementation insights into approaches that worked,
// pitfalls to avoid, and generalizable best practices. A single lesson can
// land in both a lesson bucket and best practices.
func fusePatterns(items []memorystore.Item) SuccessPatterns {
	patterns := emptySuccessPatterns()

	for _, item := range items {
		entry := InsightEntry{
			Description: itemText(item, "lesson"),
			Context:     metaString(item.Metadata, "project"),
		}
		if entry.Description == "" {
			continue
		}

		switch strings.ToLower(metaString(item.Metadata, "lesson_type")) {
		case "success":
			patterns.Approaches = append(patterns.Approaches, entry)
		case "failure":
			patterns.AvoidPitfalls = append(patterns.AvoidPitfalls, entry)
		}

		if metaBool(item.Metadata, "generalizable") {
			patterns.BestPractices = append(patterns.BestPractices, entry)
		}
	}
	return patterns
}

func emptySuccessPatterns() SuccessPatterns {
	return SuccessPatterns{
		Approaches:    []InsightEntry{},
		AvoidPitfalls: []InsightEntry{},
		BestPractices: []InsightEntry{},
	}
}
