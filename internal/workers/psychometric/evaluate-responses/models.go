// internal/workers/psychometric/evaluate-responses/models.go
package evaluateresponses

import "psychometric-workers/internal/psychometric"

type Input struct {
	AssessmentID  string                   `json:"assessmentId,omitempty"`
	QuestionsData *psychometric.Assessment `json:"questionsData,omitempty"`
	Responses     map[string]string        `json:"responses"`
	UserID        string                   `json:"userId,omitempty"`
	UserName      string                   `json:"userName,omitempty"`
	UserType      string                   `json:"userType,omitempty"`
}

type Output struct {
	EvaluationID     string                         `json:"evaluationId"`
	OverallScore     float64                        `json:"overallScore"`
	CompletionRate   float64                        `json:"completionRate"`
	AnalysisFallback bool                           `json:"analysisFallback"`
	ProfileCreated   bool                           `json:"profileCreated"`
	Evaluation       *psychometric.Evaluation       `json:"evaluation"`
	SkippedResponses []psychometric.SkippedResponse `json:"skippedResponses"`
	Warnings         []string                       `json:"warnings"`
}
