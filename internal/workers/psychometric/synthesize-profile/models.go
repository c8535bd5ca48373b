// internal/workers/psychometric/synthesize-profile/models.go
package synthesizeprofile

type Input struct {
	UserID       string `json:"userId"`
	EvaluationID string `json:"evaluationId"`
	UserType     string `json:"userType,omitempty"`
}

type Output struct {
	Profile             map[string]interface{} `json:"profile"`
	ProfileType         string                 `json:"profileType"`
	ProfileCreated      bool                   `json:"profileCreated"`
	ProfileCompleteness float64                `json:"profileCompleteness"`
	Warnings            []string               `json:"warnings"`
}
