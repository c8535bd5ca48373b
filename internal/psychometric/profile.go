// internal/psychometric/profile.go
package psychometric

import "time"

const ProfileVersion = "1.0"

// Engagement is one history entry: a validated idea for entrepreneurs, a
// mentoring engagement for mentors. The descriptor renders it with the
// type's field names.
type Engagement struct {
	Name        string    `json:"name"`
	ReferenceID string    `json:"reference_id,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
	Score       float64   `json:"score,omitempty"`
	Outcome     string    `json:"outcome,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// Profile is the durable per-(user, type) aggregate of the latest evaluation
// plus accumulated history.
type Profile struct {
	UserID              string             `json:"user_id"`
	ProfileType         AssessmentType     `json:"profile_type"`
	UserName            string             `json:"user_name,omitempty"`
	PsychometricScores  map[string]float64 `json:"psychometric_scores"`
	OverallScore        float64            `json:"overall_score"`
	Fit                 Fit                `json:"fit"`
	TopStrengths        []string           `json:"top_strengths"`
	DevelopmentAreas    []string           `json:"development_areas"`
	Summary             string             `json:"summary"`
	DetailedInsights    map[string]string  `json:"detailed_insights"`
	Recommendations     []string           `json:"recommendations"`
	ProfileCompleteness float64            `json:"profile_completeness"`
	ProfileVersion      string             `json:"profile_version"`
	EvaluationID        string             `json:"evaluation_id"`
	AssessmentDate      time.Time          `json:"assessment_date"`
	CreatedAt           time.Time          `json:"created_at"`
	LastUpdated         time.Time          `json:"last_updated"`
	History             []Engagement       `json:"history"`

	ValidationFocusAreas []string `json:"validation_focus_areas,omitempty"`
	RiskToleranceLevel   string   `json:"risk_tolerance_level,omitempty"`

	TeachingStyle     string         `json:"teaching_style,omitempty"`
	MentoringCapacity string         `json:"mentoring_capacity,omitempty"`
	ExpertiseDomains  []string       `json:"expertise_domains,omitempty"`
	IdealMentee       *MenteeProfile `json:"ideal_mentee_profile,omitempty"`
}

// Document renders the profile with its type's field vocabulary.
func (p *Profile) Document() map[string]interface{} {
	return DescriptorFor(p.ProfileType).Document(p)
}
