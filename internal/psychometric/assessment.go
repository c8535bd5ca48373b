// internal/psychometric/assessment.go
package psychometric

import "time"

const SchemaVersion = "1.0"

// Option is one selectable answer. ScoreProfile maps dimension keys to a
// 0-10 contribution; one option may feed several dimensions.
type Option struct {
	OptionID     string             `json:"option_id"`
	Text         string             `json:"text"`
	ScoreProfile map[string]float64 `json:"score_profile,omitempty"`
}

type Question struct {
	QuestionID      string   `json:"question_id"`
	Dimension       string   `json:"dimension"`
	QuestionText    string   `json:"question_text"`
	QuestionType    string   `json:"question_type,omitempty"`
	ScenarioContext string   `json:"scenario_context,omitempty"`
	Options         []Option `json:"options"`
}

// Assessment is issued once by the generator and read-only afterwards.
type Assessment struct {
	AssessmentID         string         `json:"assessment_id"`
	Title                string         `json:"title"`
	Description          string         `json:"description,omitempty"`
	AssessmentType       AssessmentType `json:"assessment_type,omitempty"`
	EstimatedTimeMinutes int            `json:"estimated_time_minutes,omitempty"`
	Questions            []Question     `json:"questions"`
	TotalQuestions       int            `json:"total_questions"`
	GeneratedAt          time.Time      `json:"generated_at"`
	SchemaVersion        string         `json:"schema_version,omitempty"`
}

// option returns the option with the given id.
func (q *Question) option(optionID string) (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].OptionID == optionID {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// ResponseSet maps question_id to the chosen option_id.
type ResponseSet map[string]string

// AssessmentStatus tracks an issued assessment.
type AssessmentStatus string

const (
	StatusPending   AssessmentStatus = "pending"
	StatusCompleted AssessmentStatus = "completed"
)
