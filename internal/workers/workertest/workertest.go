// Package workertest provides an in-memory Zeebe job client for handler tests.
package workertest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"google.golang.org/grpc"
)

// NewJob builds an activated job carrying variables.
func NewJob(key int64, taskType string, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                      key,
		Type:                     taskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "tender-matching",
		ProcessDefinitionVersion: 1,
		ProcessDefinitionKey:     1,
		ElementId:                "Activity_" + taskType,
		ElementInstanceKey:       1,
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Variables:                string(variablesJSON),
	}}
}

// RawJob builds an activated job with an arbitrary variables document.
func RawJob(key int64, taskType, variables string) entities.Job {
	job := NewJob(key, taskType, nil)
	job.Variables = variables
	return job
}

// JobClient records every complete, fail and throw-error command sent through it.
// Like the gateway, it rejects commands whose context is already done.
type JobClient struct {
	pb.GatewayClient

	mu        sync.Mutex
	Completed []*pb.CompleteJobRequest
	Failed    []*pb.FailJobRequest
	Thrown    []*pb.ThrowErrorRequest
}

var _ worker.JobClient = (*JobClient)(nil)

func NewJobClient() *JobClient {
	return &JobClient{}
}

func noRetry(context.Context, error) bool { return false }

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c, noRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c, noRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c, noRetry)
}

func (c *JobClient) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Completed = append(c.Completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (c *JobClient) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Failed = append(c.Failed, in)
	return &pb.FailJobResponse{}, nil
}

func (c *JobClient) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Thrown = append(c.Thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

// CompletedVariables decodes the variables of the i-th completed job.
func (c *JobClient) CompletedVariables(i int) (map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var vars map[string]interface{}
	err := json.Unmarshal([]byte(c.Completed[i].GetVariables()), &vars)
	return vars, err
}

// Outcome is one job reported to a Recorder.
type Outcome struct {
	TaskType string
	Status   string
}

// Recorder collects job outcomes in the order they were reported.
type Recorder struct {
	mu       sync.Mutex
	Outcomes []Outcome
}

func (r *Recorder) RecordJob(_ context.Context, taskType, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outcomes = append(r.Outcomes, Outcome{TaskType: taskType, Status: status})
}

// Statuses lists the reported statuses.
func (r *Recorder) Statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	statuses := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		statuses = append(statuses, o.Status)
	}
	return statuses
}
