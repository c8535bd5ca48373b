// internal/workers/psychometric/validation-context/models.go
package validationcontext

import "psychometric-workers/internal/psychometric"

type Input struct {
	UserID string `json:"userId"`
}

// Output carries either the projected context or the no-profile sentinel.
type Output struct {
	HasProfile          bool                            `json:"hasPsychometricProfile"`
	PsychometricContext *psychometric.ValidationContext `json:"psychometricContext"`
}
