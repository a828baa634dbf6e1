package contractorstats

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"tender-matching/internal/common/camunda"
	"tender-matching/internal/common/config"
	"tender-matching/internal/common/errors"
	"tender-matching/internal/common/logger"
	"tender-matching/internal/common/metrics"
	"tender-matching/internal/common/validation"
	"tender-matching/pkg/registry"
)

const TaskType = "contractor-stats"

type Handler struct {
	config     *Config
	stats      Aggregator
	schema     map[string]interface{}
	logger     logger.Logger
	errHandler *errors.ErrorHandler
	recorder   camunda.JobRecorder
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Registry     *registry.ActivityRegistry
	Stats        Aggregator
	Logger       logger.Logger
	Recorder     camunda.JobRecorder
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Stats == nil {
		return nil, fmt.Errorf("%s requires a stats aggregator", TaskType)
	}

	reg := opts.Registry
	if reg == nil {
		var err error
		if reg, err = registry.Default(); err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json", "stdout")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:     workerConfig,
		stats:      opts.Stats,
		schema:     reg.InputSchema(TaskType),
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
		recorder:   opts.Recorder,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(client, job, err, startTime)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(client, job, err, startTime)
		return
	}

	if err := h.completeJob(client, job, output); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		camunda.RecordOutcome(h.recorder, TaskType, camunda.JobFailed, startTime)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	camunda.RecordOutcome(h.recorder, TaskType, camunda.JobCompleted, startTime)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	result := validation.ValidateInput(variables, h.schema)
	if !result.Valid {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("validation errors: %v", result.GetErrorMessages()))
	}

	orgID, _ := variables["organizationId"].(string)
	if orgID == "" {
		return nil, errors.NewInvalidInputError("organizationId is required")
	}
	return &Input{OrganizationID: orgID}, nil
}

// Execute aggregates the contractor dashboard. Unknown organizations get zeroed stats.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	stats, err := h.stats.ContractorStats(ctx, input.OrganizationID)
	if err != nil {
		return nil, errors.FromDataAccess("contractor stats", err)
	}
	return &stats, nil
}

// completeJob reports on a fresh context so a job that used up its timeout can
// still be completed.
func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		return err
	}
	ctx, cancel := camunda.ReportContext()
	defer cancel()
	return camunda.SendWithRetry(ctx, nil, "complete job", func(ctx context.Context) error {
		_, err := request.Send(ctx)
		return err
	})
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	ctx, cancel := camunda.ReportContext()
	defer cancel()

	bpmnErr := h.errHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()

	status := camunda.JobFailed
	if !bpmnErr.Retryable {
		status = camunda.JobThrown
	}
	camunda.RecordOutcome(h.recorder, TaskType, status, startTime)
}
