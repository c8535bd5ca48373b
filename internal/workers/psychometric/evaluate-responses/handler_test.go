// internal/workers/psychometric/evaluate-responses/handler_test.go
package evaluateresponses

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psychometric-workers/internal/common/config"
	apperrors "psychometric-workers/internal/common/errors"
	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/psychometric"
	"psychometric-workers/internal/psychometric/psychometrictest"
)

// ==========================
// Test Helper Functions
// ==========================

func setup(t *testing.T) (*Handler, *psychometrictest.Harness) {
	t.Helper()
	h := psychometrictest.NewHarness(logger.NewTestLogger(t))
	h.Store.AddUser("u1")
	return NewHandler(LoadConfig(config.WorkerConfig{}), h.Service, logger.NewTestLogger(t)), h
}

func twoQuestionInput(userID string, responses map[string]string) *Input {
	return &Input{
		QuestionsData: psychometrictest.TwoQuestionAssessment(),
		Responses:     responses,
		UserID:        userID,
		UserName:      "Ada",
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_TwoQuestionScenario(t *testing.T) {
	handler, h := setup(t)

	out, err := handler.Execute(context.Background(), twoQuestionInput("u1", map[string]string{"q1": "A", "q2": "A"}))

	require.NoError(t, err)
	assert.Equal(t, 1.4, out.OverallScore)
	assert.Equal(t, 100.0, out.CompletionRate)
	assert.False(t, out.AnalysisFallback)
	assert.True(t, out.ProfileCreated)
	assert.Empty(t, out.Warnings)
	assert.NotNil(t, out.SkippedResponses)
	assert.Equal(t, out.EvaluationID, out.Evaluation.EvaluationID)

	user, ok := h.Store.User("u1")
	require.True(t, ok)
	assert.True(t, user.Done)
	assert.Equal(t, 1.4, user.Score)

	stored, err := h.Store.GetEvaluation(context.Background(), out.EvaluationID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.UserName)

	assert.Equal(t, []string{out.EvaluationID}, h.Indexer.IDs)
	require.Len(t, h.Publisher.Events, 1)
	assert.True(t, h.Publisher.Events[0].Created)
}

func TestHandler_Execute_SecondEvaluationUpdatesProfile(t *testing.T) {
	handler, h := setup(t)
	ctx := context.Background()

	first, err := handler.Execute(ctx, twoQuestionInput("u1", map[string]string{"q1": "A", "q2": "A"}))
	require.NoError(t, err)
	second, err := handler.Execute(ctx, twoQuestionInput("u1", map[string]string{"q1": "B", "q2": "B"}))
	require.NoError(t, err)

	assert.True(t, first.ProfileCreated)
	assert.False(t, second.ProfileCreated)

	p, err := h.Store.GetProfile(ctx, "u1", psychometric.Entrepreneur)
	require.NoError(t, err)
	assert.Equal(t, second.EvaluationID, p.EvaluationID)
	assert.Equal(t, 4.0, p.PsychometricScores["leadership"])
}

func TestHandler_Execute_StoredAssessmentIsCompleted(t *testing.T) {
	handler, h := setup(t)
	ctx := context.Background()
	require.NoError(t, h.Store.SaveAssessment(ctx, "u1", psychometrictest.TwoQuestionAssessment()))

	out, err := handler.Execute(ctx, &Input{
		AssessmentID: "assess-2q",
		Responses:    map[string]string{"q1": "A"},
		UserID:       "u1",
	})
	require.NoError(t, err)

	status, evaluationID := h.Store.AssessmentStatus("assess-2q")
	assert.Equal(t, psychometric.StatusCompleted, status)
	assert.Equal(t, out.EvaluationID, evaluationID)
	assert.Equal(t, 50.0, out.CompletionRate)
}

func TestHandler_Execute_AnonymousSkipsProfile(t *testing.T) {
	handler, h := setup(t)

	out, err := handler.Execute(context.Background(), twoQuestionInput("", map[string]string{"q1": "A", "q99": "B"}))

	require.NoError(t, err)
	assert.False(t, out.ProfileCreated)
	assert.Empty(t, h.Publisher.Events)
	require.Len(t, out.SkippedResponses, 1)
	assert.Equal(t, "q99", out.SkippedResponses[0].QuestionID)
	assert.True(t, hasWarning(out.Warnings, "q99"))
	assert.Len(t, h.Indexer.IDs, 1)
}

func TestHandler_Execute_AnalyzerFallback(t *testing.T) {
	handler, h := setup(t)
	h.Analyzer.Err = errors.New("llm unavailable")

	out, err := handler.Execute(context.Background(), twoQuestionInput("u1", map[string]string{"q1": "A", "q2": "B"}))

	require.NoError(t, err)
	assert.True(t, out.AnalysisFallback)
	assert.Equal(t, "Moderate", out.Evaluation.Qualitative.Fit.Category)
}

func TestHandler_Execute_PersistenceFailuresAreWarnings(t *testing.T) {
	handler, h := setup(t)
	h.Store.Err = errors.New("connection reset")

	out, err := handler.Execute(context.Background(), twoQuestionInput("u1", map[string]string{"q1": "A", "q2": "A"}))

	require.NoError(t, err)
	assert.Equal(t, 1.4, out.OverallScore)
	assert.False(t, out.ProfileCreated)
	assert.True(t, hasWarning(out.Warnings, "save evaluation"))
	assert.True(t, hasWarning(out.Warnings, "upsert profile"))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{"empty responses", twoQuestionInput("u1", nil), apperrors.ErrCodeInvalidResponses},
		{"unknown assessment", &Input{AssessmentID: "missing", Responses: map[string]string{"q1": "A"}}, apperrors.ErrCodeAssessmentNotFound},
		{"no assessment at all", &Input{Responses: map[string]string{"q1": "A"}}, apperrors.ErrCodeAssessmentNotFound},
		{"bad user type", &Input{UserType: "investor", Responses: map[string]string{"q1": "A"}}, apperrors.ErrCodeInvalidAssessmentType},
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

func TestInput_DecodesJobVariables(t *testing.T) {
	raw := `{"assessmentId":"assess-2q","responses":{"q1":"A","q2":"B"},"userId":"u1","userName":"Ada","userType":"entrepreneur"}`

	var in Input
	require.NoError(t, json.Unmarshal([]byte(raw), &in))

	assert.Equal(t, "assess-2q", in.AssessmentID)
	assert.Nil(t, in.QuestionsData)
	assert.Equal(t, "B", in.Responses["q2"])
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkHandler_Execute(b *testing.B) {
	h := psychometrictest.NewHarness(logger.NewNoOpLogger())
	handler := NewHandler(LoadConfig(config.WorkerConfig{}), h.Service, logger.NewNoOpLogger())
	input := twoQuestionInput("", map[string]string{"q1": "A", "q2": "B"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = handler.Execute(context.Background(), input)
	}
}
