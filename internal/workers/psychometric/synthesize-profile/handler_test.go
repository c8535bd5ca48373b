// internal/workers/psychometric/synthesize-profile/handler_test.go
package synthesizeprofile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psychometric-workers/internal/common/config"
	apperrors "psychometric-workers/internal/common/errors"
	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/psychometric"
	"psychometric-workers/internal/psychometric/psychometrictest"
)

func setup(t *testing.T) (*Handler, *psychometrictest.Harness) {
	t.Helper()
	h := psychometrictest.NewHarness(logger.NewTestLogger(t))
	return NewHandler(LoadConfig(config.WorkerConfig{}), h.Service, logger.NewTestLogger(t)), h
}

// storedEvaluation scores the two-question fixture for userID and saves it.
func storedEvaluation(t *testing.T, h *psychometrictest.Harness, userID string) *psychometric.Evaluation {
	t.Helper()
	ctx := context.Background()
	res, err := h.Service.Evaluate(ctx, psychometric.EvaluateRequest{
		Assessment: psychometrictest.TwoQuestionAssessment(),
		Responses:  psychometric.ResponseSet{"q1": "A", "q2": "A"},
		UserID:     userID,
		UserName:   "Ada",
	})
	require.NoError(t, err)
	require.NoError(t, h.Store.SaveEvaluation(ctx, res.Evaluation))
	return res.Evaluation
}

func TestHandler_Execute_CreatesThenUpdates(t *testing.T) {
	handler, h := setup(t)
	ev := storedEvaluation(t, h, "u1")
	ctx := context.Background()

	first, err := handler.Execute(ctx, &Input{UserID: "u1", EvaluationID: ev.EvaluationID})
	require.NoError(t, err)
	assert.True(t, first.ProfileCreated)
	assert.Equal(t, "entrepreneur", first.ProfileType)
	assert.Equal(t, 100.0, first.ProfileCompleteness)
	assert.Equal(t, "High", first.Profile["entrepreneurial_fit"])
	assert.NotNil(t, first.Warnings)

	second, err := handler.Execute(ctx, &Input{UserID: "u1", EvaluationID: ev.EvaluationID})
	require.NoError(t, err)
	assert.False(t, second.ProfileCreated)
	assert.Equal(t, first.Profile["created_at"], second.Profile["created_at"])
	assert.Len(t, h.Publisher.Events, 2)
}

func TestHandler_Execute_UserFromEvaluation(t *testing.T) {
	handler, h := setup(t)
	ev := storedEvaluation(t, h, "u7")

	out, err := handler.Execute(context.Background(), &Input{EvaluationID: ev.EvaluationID})

	require.NoError(t, err)
	assert.Equal(t, "u7", out.Profile["user_id"])
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{"missing evaluation id", &Input{UserID: "u1"}, apperrors.ErrCodeEvaluationNotFound},
		{"unknown evaluation", &Input{UserID: "u1", EvaluationID: "nope"}, apperrors.ErrCodeEvaluationNotFound},
		{"bad user type", &Input{UserID: "u1", EvaluationID: "x", UserType: "investor"}, apperrors.ErrCodeInvalidAssessmentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := setup(t)
			out, err := handler.Execute(context.Background(), tt.input)
			assert.Nil(t, out)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
		})
	}
}
