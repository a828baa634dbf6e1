// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler reports a failed job back to Zeebe. Retryable errors fail the job
// so the engine retries it; business errors are thrown as BPMN errors.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError normalizes err, reports it and returns the BPMN error that was sent.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) *BPMNError {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"jobType":            job.GetType(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"errorCode":          string(stdErr.Code),
		"message":            bpmnErr.Message,
		"details":            stdErr.Details,
		"retryable":          stdErr.Retryable,
		"errorCategory":      GetErrorCategory(stdErr.Code),
	})

	var sendErr error
	if stdErr.Retryable {
		sendErr = h.failJob(ctx, client, job, bpmnErr)
	} else {
		sendErr = h.throwError(ctx, client, job, bpmnErr)
	}
	if sendErr != nil {
		h.logger.Error("Failed to report job failure to Zeebe", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  sendErr.Error(),
		})
	}
	return bpmnErr
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// RemainingRetries is the retry budget to hand back to Zeebe: one less than the
// job has left, capped by the policy for the code.
func RemainingRetries(jobRetries int32, policy int) int32 {
	remaining := jobRetries - 1
	if remaining > int32(policy) {
		remaining = int32(policy)
	}
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	cmd := client.NewFailJobCommand().
		JobKey(job.GetKey()).
		Retries(RemainingRetries(job.GetRetries(), bpmnErr.Retries)).
		ErrorMessage("[" + bpmnErr.Code + "] " + bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	_, err = withVars.Send(ctx)
	return err
}

func (h *ErrorHandler) throwError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.GetKey()).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	vars, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	withVars, err := cmd.VariablesFromString(string(vars))
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	_, err = withVars.Send(ctx)
	return err
}
