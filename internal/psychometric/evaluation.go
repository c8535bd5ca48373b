// internal/psychometric/evaluation.go
package psychometric

import "time"

// Fit classifies suitability for the assessed role.
type Fit struct {
	Category  string  `json:"category"`
	Score     float64 `json:"numeric_score"`
	Reasoning string  `json:"reasoning"`

	// entrepreneur
	IdealRole        string `json:"ideal_role,omitempty"`
	IdealVentureType string `json:"ideal_venture_type,omitempty"`

	// mentor
	MentoringReadiness string `json:"mentoring_readiness,omitempty"`
}

type MenteeProfile struct {
	ExperienceLevel string `json:"experience_level"`
	PersonalityFit  string `json:"personality_fit"`
	ChallengeAreas  string `json:"challenge_areas"`
	IndustryFit     string `json:"industry_fit"`
}

// Qualitative is the analyzer's narrative layer over the numbers.
type Qualitative struct {
	Strengths        []string          `json:"strengths"`
	DevelopmentAreas []string          `json:"development_areas"`
	Fit              Fit               `json:"fit"`
	Recommendations  []string          `json:"recommendations"`
	NarrativeSummary string            `json:"narrative_summary"`
	DetailedInsights map[string]string `json:"detailed_insights"`

	TeachingStyle     string         `json:"teaching_style,omitempty"`
	IdealMentee       *MenteeProfile `json:"ideal_mentee_profile,omitempty"`
	MentoringCapacity string         `json:"mentoring_capacity,omitempty"`
	ExpertiseDomains  []string       `json:"expertise_domains,omitempty"`
}

// Evaluation is immutable once built; re-evaluating produces a new one.
type Evaluation struct {
	EvaluationID      string             `json:"evaluation_id"`
	AssessmentID      string             `json:"assessment_id"`
	AssessmentType    AssessmentType     `json:"assessment_type"`
	UserID            string             `json:"user_id,omitempty"`
	UserName          string             `json:"user_name,omitempty"`
	DimensionScores   map[string]float64 `json:"dimension_scores"`
	OverallScore      float64            `json:"overall_score"`
	QuestionsAnswered int                `json:"questions_answered"`
	TotalQuestions    int                `json:"total_questions"`
	CompletionRate    float64            `json:"completion_rate"`
	AnsweredDetails   []AnsweredQuestion `json:"answered_details"`
	Qualitative       Qualitative        `json:"qualitative"`
	AnalysisFallback  bool               `json:"analysis_fallback"`
	EvaluatedAt       time.Time          `json:"evaluated_at"`
	SchemaVersion     string             `json:"schema_version"`
}

// Aggregate returns the quantitative part of the evaluation.
func (e *Evaluation) Aggregate() Aggregate {
	return Aggregate{
		DimensionScores:   e.DimensionScores,
		OverallScore:      e.OverallScore,
		QuestionsAnswered: e.QuestionsAnswered,
		TotalQuestions:    e.TotalQuestions,
		CompletionRate:    e.CompletionRate,
	}
}

// AnalysisRequest is what the qualitative analyzer sees.
type AnalysisRequest struct {
	Type            AssessmentType
	Registry        *Registry
	DimensionScores map[string]float64
	OverallScore    float64
	Answered        []AnsweredQuestion
}
