package assembly

import (
	"strings"

	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

// Obligation markers used to pull hard requirements out of free-form
// specification and decision text.
var obligationMarkers = []string{
	"must include",
	"must contain",
	"must be",
	"is required",
	"are required",
	"required to",
	"needs to include",
	"shall include",
	"shall be",
}

// fuseFormatGuidance extracts structural requirements, presentation tips,
// and reference examples from deliverable specification results, merging
// in the audience communication recommendations so formatting and audience
// guidance live in one section.
func fuseFormatGuidance(items []memorystore.Item, commRecommendations []string) FormatGuidance {
	guidance := emptyFormatGuidance()

	for _, item := range items {
		m := item.Metadata
		for _, req := range metaStrings(m, "format_requirements") {
			guidance.StructuralRequirements = dedupeAppend(guidance.StructuralRequirements, req)
		}
		for _, tip := range metaStrings(m, "presentation_tips") {
			guidance.PresentationTips = dedupeAppend(guidance.PresentationTips, tip)
		}
		if example := metaString(m, "reference_example"); example != "" {
			guidance.ReferenceExamples = dedupeAppend(guidance.ReferenceExamples, example)
		}
		if tmpl := metaString(m, "template"); tmpl != "" {
			guidance.StructuralRequirements = dedupeAppend(guidance.StructuralRequirements, "Follow template: "+tmpl)
		}
	}

	for _, rec := range commRecommendations {
		guidance.PresentationTips = dedupeAppend(guidance.PresentationTips, rec)
	}
	return guidance
}

// fuseRequirements buckets obligations from specification and decision
// results into functional, format, content, and approval requirements.
//
// Two sources feed each bucket: explicit metadata lists, and obligation
// language scanned out of the raw content ("must include X", "Y is
// required").
func fuseRequirements(specs, decisions []memorystore.Item) Requirements {
	reqs := emptyRequirements()

	for _, item := range specs {
		m := item.Metadata
		for _, r := range metaStrings(m, "requirements_specified") {
			reqs.Functional = dedupeAppend(reqs.Functional, r)
		}
		for _, r := range metaStrings(m, "format_requirements") {
			reqs.Format = dedupeAppend(reqs.Format, r)
		}
		for _, r := range metaStrings(m, "content_requirements") {
			reqs.Content = dedupeAppend(reqs.Content, r)
		}
		if approval := metaString(m, "approval_process"); approval != "" {
			reqs.Approval = dedupeAppend(reqs.Approval, approval)
		}
		for _, sentence := range obligationSentences(item.Content) {
			reqs.Content = dedupeAppend(reqs.Content, sentence)
		}
	}

	for _, item := range decisions {
		if approval := metaString(item.Metadata, "approval_process"); approval != "" {
			reqs.Approval = dedupeAppend(reqs.Approval, approval)
		}
		if approver := metaString(item.Metadata, "approver"); approver != "" {
			reqs.Approval = dedupeAppend(reqs.Approval, "Requires sign-off from "+approver)
		}
		for _, sentence := range obligationSentences(item.Content) {
			reqs.Functional = dedupeAppend(reqs.Functional, sentence)
		}
	}
	return reqs
}

// obligationSentences returns sentences from text that carry obligation
// language.
func obligationSentences(text string) []string {
	var out []string
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		for _, marker := range obligationMarkers {
			if strings.Contains(lower, marker) {
				out = append(out, sentence)
				break
			}
		}
	}
	return out
}

func splitSentences(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == ';'
	}) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func emptyFormatGuidance() FormatGuidance {
	return FormatGuidance{
		StructuralRequirements: []string{},
		PresentationTips:       []string{},
		ReferenceExamples:      []string{},
	}
}

func emptyRequirements() Requirements {
	return Requirements{
		Functional: []string{},
		Format:     []string{},
		Content:    []string{},
		Approval:   []string{},
	}
}
