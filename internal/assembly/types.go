package assembly

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

// Validation errors returned by DeliverableRequest.Validate. These are the
// only errors Assemble surfaces to callers; everything downstream degrades
// into the confidence score instead.
var (
	// ErrMissingDeliverableName indicates an empty deliverable name.
	ErrMissingDeliverableName = errors.New("deliverable name is required")

	// ErrMissingDeliverableType indicates an empty deliverable type.
	ErrMissingDeliverableType = errors.New("deliverable type is required")

	// ErrMissingTopic indicates an empty topic.
	ErrMissingTopic = errors.New("topic is required")

	// ErrMissingAudience indicates an empty target audience.
	ErrMissingAudience = errors.New("target audience is required")
)

// Category identifies one knowledge category the engine retrieves and
// scores. The string values are wire-stable: they appear in tags, in the
// raw-context map keys, and in the confidence breakdown.
type Category string

const (
	CategoryStakeholderIntelligence   Category = "stakeholder_intelligence"
	CategoryDeliverableSpecifications Category = "deliverable_specifications"
	CategoryDecisionContext           Category = "decision_context"
	CategoryImplementationInsights    Category = "implementation_insights"
	CategoryCrossProjectContext       Category = "cross_project_context"
	CategoryActionContext             Category = "action_context"
	CategoryRiskContext               Category = "risk_context"

	// CategoryStrategicContext carries confidence weight but is never
	// queried: no planner emits a query for it and no store tags content
	// with it. Its weight acts as a deliberate cap on the maximum
	// achievable score (95, not 100) until strategic capture exists.
	CategoryStrategicContext Category = "strategic_context"
)

// ActiveCategories returns the seven categories the planner emits queries
// for, in canonical order. Strategic context is excluded; it exists only in
// the confidence weight table.
func ActiveCategories() []Category {
	return []Category{
		CategoryStakeholderIntelligence,
		CategoryDeliverableSpecifications,
		CategoryDecisionContext,
		CategoryImplementationInsights,
		CategoryCrossProjectContext,
		CategoryActionContext,
		CategoryRiskContext,
	}
}

// DeliverableRequest describes the deliverable the caller is about to
// produce. All four core fields are required; Sections narrows the request
// to specific parts of the deliverable and may be empty.
type DeliverableRequest struct {
	// Name is the deliverable name, e.g. "Q3 Board Report".
	Name string `json:"name"`

	// Type is the deliverable kind, e.g. "report", "presentation".
	Type string `json:"type"`

	// Topic is the subject area, e.g. "revenue performance".
	Topic string `json:"topic"`

	// Audience is the target audience, e.g. "executive team".
	Audience string `json:"audience"`

	// Sections optionally narrows context to named deliverable sections.
	Sections []string `json:"sections,omitempty"`
}

// Validate checks that all required fields are present.
func (r DeliverableRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingDeliverableName
	}
	if strings.TrimSpace(r.Type) == "" {
		return ErrMissingDeliverableType
	}
	if strings.TrimSpace(r.Topic) == "" {
		return ErrMissingTopic
	}
	if strings.TrimSpace(r.Audience) == "" {
		return ErrMissingAudience
	}
	return nil
}

// GroupingKey returns the store lookup key for the request's source
// meeting cluster.
func (r DeliverableRequest) GroupingKey() memorystore.GroupingKey {
	return memorystore.GroupingKey{Deliverable: r.Name, Topic: r.Topic}
}

// QuerySpec is one planned category-scoped retrieval.
type QuerySpec struct {
	// Category the results will be attributed to.
	Category Category `json:"category"`

	// QueryText is the semantic search text.
	QueryText string `json:"query_text"`

	// TagFilters restrict results to items carrying all listed tags
	// (the grouping tag plus the category content tag).
	TagFilters []string `json:"tag_filters"`

	// Filters are structured metadata predicates, applied best-effort.
	Filters []memorystore.Filter `json:"filters,omitempty"`

	// ResultLimit bounds how many items the search may return.
	ResultLimit int `json:"result_limit"`
}

// storeQuery converts the planned query into a memory store query.
func (s QuerySpec) storeQuery() memorystore.Query {
	return memorystore.Query{
		Text:    s.QueryText,
		Tags:    s.TagFilters,
		Filters: s.Filters,
		Limit:   s.ResultLimit,
	}
}

// RawResultSet holds the outcome of one category's search. A failed search
// yields an empty (never nil) item slice with Error set; downstream
// consumers treat it exactly like an empty category.
type RawResultSet struct {
	Category   Category           `json:"category"`
	Items      []memorystore.Item `json:"items"`
	DurationMs int64              `json:"duration_ms"`
	Error      string             `json:"error,omitempty"`
}

// RawContext maps every active category to its result set. All seven keys
// are always present, even on total retrieval failure.
type RawContext map[Category]RawResultSet

// TotalResults counts items across all categories.
func (rc RawContext) TotalResults() int {
	total := 0
	for _, set := range rc {
		total += len(set.Items)
	}
	return total
}

// CategoriesFound counts categories with at least one item.
func (rc RawContext) CategoriesFound() int {
	found := 0
	for _, set := range rc {
		if len(set.Items) > 0 {
			found++
		}
	}
	return found
}

// ConfidenceLevel is the qualitative band for a confidence score.
type ConfidenceLevel string

const (
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceVeryLow  ConfidenceLevel = "very_low"
)

// CategoryCoverage is one category's entry in the confidence breakdown.
type CategoryCoverage struct {
	// WeightPct is the category's share of the total weight, in percent.
	WeightPct float64 `json:"weight_pct"`

	// ResultCount is how many items the category returned.
	ResultCount int `json:"result_count"`

	// CoveragePct is the saturating coverage ratio, in percent
	// (100 means the category returned at least five items).
	CoveragePct float64 `json:"coverage_pct"`
}

// ConfidenceRecord reports how complete the assembled context is.
type ConfidenceRecord struct {
	// Score is the weighted coverage score on a 0-100 scale.
	Score int `json:"score"`

	// Level is the qualitative band for Score.
	Level ConfidenceLevel `json:"level"`

	// Breakdown covers every weighted category, including strategic
	// context, which is always reported with zero results.
	Breakdown map[Category]CategoryCoverage `json:"breakdown"`

	// MissingCritical lists human-readable gap descriptions for critical
	// categories that returned nothing.
	MissingCritical []string `json:"missing_critical"`

	// Recommendation tells the caller how far to trust the package.
	Recommendation string `json:"recommendation"`
}

// PreferenceRates aggregates the share of profiled stakeholders carrying
// each preference flag, in percent.
type PreferenceRates struct {
	VisualAids       float64 `json:"visual_aids"`
	ExecutiveSummary float64 `json:"executive_summary"`
	DetailedAppendix float64 `json:"detailed_appendix"`
	DataTables       float64 `json:"data_tables"`
	ActionItems      float64 `json:"action_items"`
}

// StakeholderProfile is one audience member's communication profile.
type StakeholderProfile struct {
	Name                    string `json:"name"`
	Role                    string `json:"role,omitempty"`
	CommunicationStyle      string `json:"communication_style,omitempty"`
	TechnicalSophistication string `json:"technical_sophistication,omitempty"`

	PrefersVisualAids       bool `json:"prefers_visual_aids"`
	PrefersExecutiveSummary bool `json:"prefers_executive_summary"`
	PrefersDetailedAppendix bool `json:"prefers_detailed_appendix"`
	PrefersDataTables       bool `json:"prefers_data_tables"`
	PrefersActionItems      bool `json:"prefers_action_items"`
}

// StakeholderInsights is the fused audience section of a package.
type StakeholderInsights struct {
	Profiles        []StakeholderProfile `json:"profiles"`
	PreferenceRates PreferenceRates      `json:"preference_rates"`

	// AverageTechnicalLevel is the mean sophistication on a 1-4 scale
	// (basic=1 .. expert=4); unknown levels count as 2.
	AverageTechnicalLevel float64 `json:"average_technical_level"`

	// DominantStyle is the most common communication style, defaulting
	// to "collaborative" when no profile declares one.
	DominantStyle string `json:"dominant_style"`

	Narrative       string   `json:"narrative"`
	Recommendations []string `json:"recommendations"`
}

// FormatGuidance is the fused formatting section of a package.
type FormatGuidance struct {
	StructuralRequirements []string `json:"structural_requirements"`
	PresentationTips       []string `json:"presentation_tips"`
	ReferenceExamples      []string `json:"reference_examples"`
}

// Requirements buckets concrete obligations extracted from specifications
// and decisions.
type Requirements struct {
	Functional []string `json:"functional"`
	Format     []string `json:"format"`
	Content    []string `json:"content"`
	Approval   []string `json:"approval"`
}

// InsightEntry is one lesson with optional originating context.
type InsightEntry struct {
	Description string `json:"description"`
	Context     string `json:"context,omitempty"`
}

// SuccessPatterns is the fused lessons-learned section of a package.
type SuccessPatterns struct {
	Approaches    []InsightEntry `json:"approaches"`
	AvoidPitfalls []InsightEntry `json:"avoid_pitfalls"`
	BestPractices []InsightEntry `json:"best_practices"`
}

// Risk is one normalized risk entry.
type Risk struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Probability string `json:"probability"`
	Mitigation  string `json:"mitigation,omitempty"`
}

// Mitigation pairs a risk with its known countermeasure.
type Mitigation struct {
	Risk     string `json:"risk"`
	Strategy string `json:"strategy"`
}

// RiskProfile is the fused risk section of a package.
type RiskProfile struct {
	ByCategory  map[string][]Risk `json:"by_category"`
	Mitigations []Mitigation      `json:"mitigations"`
}

// InternalDependency is a commitment inside the team that the deliverable
// waits on.
type InternalDependency struct {
	Item      string `json:"item"`
	DependsOn string `json:"depends_on,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
}

// Dependencies is the fused dependency section of a package.
type Dependencies struct {
	Internal  []InternalDependency `json:"internal"`
	External  []string             `json:"external"`
	Resources []string             `json:"resources"`
}

// CriticalDate is one dated event relevant to the deliverable.
type CriticalDate struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Milestone is a named deadline.
type Milestone struct {
	Name     string `json:"name"`
	Deadline string `json:"deadline"`
}

// Timeline is the fused schedule section of a package.
type Timeline struct {
	// CriticalDates are sorted ascending by date.
	CriticalDates []CriticalDate `json:"critical_dates"`
	Milestones    []Milestone    `json:"milestones"`
}

// PackageMetadata records provenance for an assembled package.
type PackageMetadata struct {
	// PackageID uniquely identifies this assembly run.
	PackageID string `json:"package_id"`

	Request          DeliverableRequest `json:"request"`
	GroupingID       string             `json:"grouping_id,omitempty"`
	AssembledAt      time.Time          `json:"assembled_at"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	TotalResults     int                `json:"total_results"`
	CategoriesFound  int                `json:"categories_found"`
}

// ContextPackage is the engine's complete output. It is always
// structurally complete: a degraded assembly still populates every section
// with its empty value and reports the gap through Confidence.
type ContextPackage struct {
	Summary             string              `json:"summary"`
	RawContext          RawContext          `json:"raw_context"`
	StakeholderInsights StakeholderInsights `json:"stakeholder_insights"`
	FormatGuidance      FormatGuidance      `json:"format_guidance"`
	Requirements        Requirements        `json:"requirements"`
	SuccessPatterns     SuccessPatterns     `json:"success_patterns"`
	Risks               RiskProfile         `json:"risks"`
	Dependencies        Dependencies        `json:"dependencies"`
	Timeline            Timeline            `json:"timeline"`
	Confidence          ConfidenceRecord    `json:"confidence"`
	Metadata            PackageMetadata     `json:"metadata"`
}

func (c Category) String() string { return string(c) }

// contentTag returns the retrieval tag marking items as belonging to the
// category.
func (c Category) contentTag() string {
	switch c {
	case CategoryStakeholderIntelligence:
		return "content-stakeholder"
	case CategoryDeliverableSpecifications:
		return "content-specification"
	case CategoryDecisionContext:
		return "content-decision"
	case CategoryImplementationInsights:
		return "content-insight"
	case CategoryCrossProjectContext:
		return "content-crossproject"
	case CategoryActionContext:
		return "content-action"
	case CategoryRiskContext:
		return "content-risk"
	default:
		return fmt.Sprintf("content-%s", string(c))
	}
}

// GroupingTag returns the retrieval tag scoping items to a source meeting
// cluster.
func GroupingTag(groupingID string) string {
	return "grouping:" + groupingID
}
