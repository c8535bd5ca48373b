// internal/workers/psychometric/query-evaluations/models.go
package queryevaluations

import "psychometric-workers/internal/psychometric"

type Input struct {
	EvaluationID string `json:"evaluationId,omitempty"`
	UserID       string `json:"userId,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type Output struct {
	Evaluations []*psychometric.Evaluation `json:"evaluations"`
	Count       int                        `json:"count"`
}
