// internal/workers/psychometric/generate-assessment/models.go
package generateassessment

import (
	"time"

	"psychometric-workers/internal/psychometric"
)

type Input struct {
	NumQuestions int      `json:"numQuestions"`
	UserID       string   `json:"userId,omitempty"`
	UserType     string   `json:"userType,omitempty"`
	FocusDomains []string `json:"focusDomains,omitempty"`
}

type Output struct {
	AssessmentID         string                   `json:"assessmentId"`
	Title                string                   `json:"title"`
	AssessmentType       string                   `json:"assessmentType"`
	TotalQuestions       int                      `json:"totalQuestions"`
	EstimatedTimeMinutes int                      `json:"estimatedTimeMinutes"`
	GeneratedAt          time.Time                `json:"generatedAt"`
	QuestionsData        *psychometric.Assessment `json:"questionsData"`
	Warnings             []string                 `json:"warnings"`
}
