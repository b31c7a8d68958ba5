package assembly

import (
	"sort"
	"strings"
	"time"

	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

// dateLayouts are tried in order when sorting critical dates. Unparseable
// dates sort after parseable ones, in insertion order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
}

// fuseDependencies extracts internal commitments from action items and
// external dependencies plus shared resources from cross-project results.
func fuseDependencies(actions, crossProject []memorystore.Item) Dependencies {
	deps := emptyDependencies()

	for _, item := range actions {
		dep := InternalDependency{
			Item:      itemText(item, "action_item"),
			DependsOn: metaString(item.Metadata, "depends_on"),
			DueDate:   metaString(item.Metadata, "due_date"),
		}
		if dep.Item == "" {
			continue
		}
		deps.Internal = append(deps.Internal, dep)
	}

	for _, item := range crossProject {
		for _, ext := range metaStrings(item.Metadata, "external_dependencies") {
			deps.External = dedupeAppend(deps.External, ext)
		}
		for _, res := range metaStrings(item.Metadata, "shared_resources") {
			deps.Resources = dedupeAppend(deps.Resources, res)
		}
	}
	return deps
}

// fuseTimeline collects action-item due dates into critical dates sorted
// ascending, and deliverable-spec deadlines into named milestones.
func fuseTimeline(actions, specs []memorystore.Item) Timeline {
	timeline := emptyTimeline()

	for _, item := range actions {
		due := metaString(item.Metadata, "due_date")
		if due == "" {
			continue
		}
		timeline.CriticalDates = append(timeline.CriticalDates, CriticalDate{
			Date:        due,
			Description: "Due: " + itemText(item, "action_item"),
		})
	}

	for _, item := range specs {
		deadline := metaString(item.Metadata, "deadline")
		if deadline == "" {
			continue
		}
		name := metaString(item.Metadata, "deliverable_name")
		if name == "" {
			name = itemText(item, "description")
		}
		timeline.Milestones = append(timeline.Milestones, Milestone{Name: name, Deadline: deadline})
	}

	sortCriticalDates(timeline.CriticalDates)
	return timeline
}

func sortCriticalDates(dates []CriticalDate) {
	sort.SliceStable(dates, func(i, j int) bool {
		ti, oki := parseDate(dates[i].Date)
		tj, okj := parseDate(dates[j].Date)
		switch {
		case oki && okj:
			return ti.Before(tj)
		case oki:
			return true
		default:
			return false
		}
	})
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func emptyDependencies() Dependencies {
	return Dependencies{
		Internal:  []InternalDependency{},
		External:  []string{},
		Resources: []string{},
	}
}

func emptyTimeline() Timeline {
	return Timeline{
		CriticalDates: []CriticalDate{},
		Milestones:    []Milestone{},
	}
}
