// internal/workers/psychometric/query-evaluations/handler.go
package queryevaluations

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
	TaskType = "psychometric-query-evaluations"
)

type EvaluationReader interface {
	GetEvaluation(ctx context.Context, evaluationID string) (*psychometric.Evaluation, error)
	ListEvaluations(ctx context.Context, userID string, limit int) ([]*psychometric.Evaluation, error)
}

type Handler struct {
	config     *Config
	service    EvaluationReader
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, service EvaluationReader, log logger.Logger) *Handler {
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

// execute fetches one evaluation by id when given, otherwise the user's
// most recent evaluations.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.EvaluationID != "" {
		ev, err := h.service.GetEvaluation(ctx, input.EvaluationID)
		if err != nil {
			return nil, err
		}
		return &Output{Evaluations: []*psychometric.Evaluation{ev}, Count: 1}, nil
	}

	evs, err := h.service.ListEvaluations(ctx, input.UserID, input.Limit)
	if err != nil {
		return nil, err
	}
	return &Output{Evaluations: evs, Count: len(evs)}, nil
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
