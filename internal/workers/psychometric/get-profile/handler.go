// internal/workers/psychometric/get-profile/handler.go
package getprofile

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
	TaskType = "psychometric-get-profile"
)

type ProfileReader interface {
	GetProfile(ctx context.Context, userID string, t psychometric.AssessmentType) (*psychometric.Profile, error)
}

type Handler struct {
	config     *Config
	service    ProfileReader
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, service ProfileReader, log logger.Logger) *Handler {
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

// execute reports a missing profile as found=false rather than an error.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	t, err := psychometric.ParseAssessmentType(input.UserType)
	if err != nil {
		return nil, err
	}

	p, err := h.service.GetProfile(ctx, input.UserID, t)
	if apperrors.HasCode(err, apperrors.ErrCodeProfileNotFound) {
		return &Output{Found: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Output{Found: true, ProfileType: string(p.ProfileType), Profile: p.Document()}, nil
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
