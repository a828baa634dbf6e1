// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sync"
	"time"

	"tender-matching/internal/common/config"
	"tender-matching/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobOpener is the part of zbc.Client needed to open job workers.
type JobOpener interface {
	NewJobWorker() worker.JobWorkerBuilderStep1
}

var _ JobOpener = (zbc.Client)(nil)

// Manager opens one job worker per enabled task type and closes them together.
type Manager struct {
	client  JobOpener
	logger  logger.Logger
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewManager(client JobOpener, log logger.Logger) *Manager {
	return &Manager{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for taskType unless it is disabled in wcfg.
func (m *Manager) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		m.logger.Info("Worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	jobWorker := m.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	m.mu.Lock()
	m.workers[taskType] = jobWorker
	m.mu.Unlock()

	m.logger.Info("Worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout":       wcfg.Timeout,
	})
	return true
}

// Running returns the number of open workers.
func (m *Manager) Running() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}

// Close stops every worker and waits for in-flight jobs.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for taskType, w := range m.workers {
		w.Close()
		w.AwaitClose()
		m.logger.Info("Worker stopped", map[string]interface{}{"taskType": taskType})
	}
	m.workers = make(map[string]worker.JobWorker)
}

// ReportTimeout bounds the complete, fail and throw commands sent after a job ran.
const ReportTimeout = 5 * time.Second

// ReportContext returns the context a handler reports its outcome on. It is
// detached from the job's execution context, which may already have expired.
func ReportContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ReportTimeout)
}

// Job outcomes passed to a JobRecorder.
const (
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobThrown    = "thrown"
)

// JobRecorder receives the outcome and duration of every handled job.
type JobRecorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

// RecordOutcome reports a finished job to rec. A nil recorder is ignored.
func RecordOutcome(rec JobRecorder, taskType, status string, start time.Time) {
	if rec == nil {
		return
	}
	rec.RecordJob(context.Background(), taskType, status, time.Since(start))
}
