// internal/workers/psychometric/evaluate-responses/handler.go
package evaluateresponses

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "psychometric-workers/internal/common/errors"
	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/common/metrics"
	"psychometric-workers/internal/psychometric"
)

const (
	TaskType = "psychometric-evaluate-responses"
)

type Evaluator interface {
	Evaluate(ctx context.Context, req psychometric.EvaluateRequest) (*psychometric.EvaluateResult, error)
	RecordEvaluation(ctx context.Context, ev *psychometric.Evaluation) []string
	SynthesizeProfile(ctx context.Context, userID string, ev *psychometric.Evaluation, userType psychometric.AssessmentType) (*psychometric.ProfileResult, error)
}

type Handler struct {
	config     *Config
	service    Evaluator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, service Evaluator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		service:    service,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.failJob(client, job, apperrors.NewParseError(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		return h.failJob(client, job, err)
	}
	return h.completeJob(client, job, output)
}

// execute scores, persists and then folds the evaluation into the user's
// profile. Only scoring failures fail the job.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	t, err := psychometric.ParseAssessmentType(input.UserType)
	if err != nil {
		return nil, err
	}

	res, err := h.service.Evaluate(ctx, psychometric.EvaluateRequest{
		Assessment:   input.QuestionsData,
		AssessmentID: input.AssessmentID,
		Responses:    psychometric.ResponseSet(input.Responses),
		UserID:       input.UserID,
		UserName:     input.UserName,
		UserType:     t,
	})
	if err != nil {
		return nil, err
	}
	ev := res.Evaluation

	warnings := append([]string{}, res.Warnings...)
	warnings = append(warnings, h.service.RecordEvaluation(ctx, ev)...)

	profileCreated := false
	if input.UserID != "" {
		prof, err := h.service.SynthesizeProfile(ctx, input.UserID, ev, ev.AssessmentType)
		if err != nil {
			return nil, err
		}
		profileCreated = prof.Created
		warnings = append(warnings, prof.Warnings...)
	}

	skipped := res.Skipped
	if skipped == nil {
		skipped = []psychometric.SkippedResponse{}
	}

	h.logger.Info("evaluation completed", map[string]interface{}{
		"evaluationId":   ev.EvaluationID,
		"userId":         input.UserID,
		"overallScore":   ev.OverallScore,
		"profileCreated": profileCreated,
		"warnings":       len(warnings),
	})

	return &Output{
		EvaluationID:     ev.EvaluationID,
		OverallScore:     ev.OverallScore,
		CompletionRate:   ev.CompletionRate,
		AnalysisFallback: ev.AnalysisFallback,
		ProfileCreated:   profileCreated,
		Evaluation:       ev,
		SkippedResponses: skipped,
		Warnings:         warnings,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) error {
	stdErr := h.errHandler.HandleJobError(context.Background(), client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	return stdErr
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
