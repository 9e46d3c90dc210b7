package types

import (
	"github.com/go-playground/validator/v10"
)

// validate is shared by all struct validation in this package.
var validate = validator.New()

// SectionAnalysis holds the latest alignment analysis for one resume section.
// An entry exists in ConversationState.SectionObjects only after the section
// has been analyzed at least once.
type SectionAnalysis struct {
	AlignmentScore       int      `json:"alignment_score" validate:"gte=0,lte=100"`
	MissingRequirements  []string `json:"missing_requirements"`
	RecommendedQuestions []string `json:"recommended_questions"`
	AnalysisSummary      string   `json:"analysis_summary,omitempty"`
	LastUpdated          string   `json:"last_updated,omitempty"`
}

// Validate checks field constraints (alignment score range).
func (a *SectionAnalysis) Validate() error {
	return validate.Struct(a)
}

// Clamp forces the alignment score into the 0-100 range. Model output
// occasionally drifts outside the contract; callers clamp before storing.
func (a *SectionAnalysis) Clamp() {
	if a.AlignmentScore < 0 {
		a.AlignmentScore = 0
	}
	if a.AlignmentScore > 100 {
		a.AlignmentScore = 100
	}
}

// CompactAnalysis is the trimmed per-section view sent to the router's LLM
// prompt: score and gaps, no questions.
type CompactAnalysis struct {
	SectionName         string   `json:"section_name"`
	AlignmentScore      *int     `json:"alignment_score"`
	MissingRequirements []string `json:"missing_requirements"`
}

// Compact returns the router-facing view of this analysis.
func (a *SectionAnalysis) Compact(name Section) CompactAnalysis {
	score := a.AlignmentScore
	return CompactAnalysis{
		SectionName:         string(name),
		AlignmentScore:      &score,
		MissingRequirements: a.MissingRequirements,
	}
}
