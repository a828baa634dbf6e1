package tendererstats

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-matching/internal/common/camunda"
	"tender-matching/internal/common/errors"
	"tender-matching/internal/common/logger"
	"tender-matching/internal/models"
	"tender-matching/internal/workers/workertest"
)

type fakeAggregator struct {
	stats  models.TendererStats
	err    error
	lastID string
}

func (f *fakeAggregator) TendererStats(_ context.Context, orgID string) (models.TendererStats, error) {
	f.lastID = orgID
	return f.stats, f.err
}

func createTestHandler(t *testing.T, agg Aggregator) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: 5 * time.Second},
		Stats:        agg,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestHandler_Handle(t *testing.T) {
	t.Run("publishes flat stats", func(t *testing.T) {
		agg := &fakeAggregator{stats: models.TendererStats{ActiveTenders: 2, BidsReceived: 5, AvgBidValue: 12500, ContractorsShortlisted: 1}}
		h := createTestHandler(t, agg)
		client := workertest.NewJobClient()

		h.Handle(client, workertest.NewJob(1, TaskType, map[string]interface{}{"organizationId": "o1"}))

		require.Len(t, client.Completed, 1)
		vars, err := client.CompletedVariables(0)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"activeTenders":          float64(2),
			"bidsReceived":           float64(5),
			"avgBidValue":            float64(12500),
			"contractorsShortlisted": float64(1),
		}, vars)
		assert.Equal(t, "o1", agg.lastID)
	})

	t.Run("missing organization id", func(t *testing.T) {
		h := createTestHandler(t, &fakeAggregator{})
		client := workertest.NewJobClient()

		h.Handle(client, workertest.NewJob(2, TaskType, map[string]interface{}{"organizationId": 12}))

		require.Len(t, client.Thrown, 1)
		assert.Equal(t, "INVALID_INPUT", client.Thrown[0].GetErrorCode())
	})

	t.Run("store failure", func(t *testing.T) {
		h := createTestHandler(t, &fakeAggregator{err: stderrors.New("too many connections")})
		client := workertest.NewJobClient()

		h.Handle(client, workertest.NewJob(3, TaskType, map[string]interface{}{"organizationId": "o1"}))

		require.Len(t, client.Failed, 1)
		assert.Empty(t, client.Completed)
	})
}

func TestHandler_Execute(t *testing.T) {
	h := createTestHandler(t, &fakeAggregator{err: context.DeadlineExceeded})

	_, err := h.Execute(context.Background(), &Input{OrganizationID: "o1"})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeQueryTimeout, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

type blockingAggregator struct{}

func (blockingAggregator) TendererStats(ctx context.Context, _ string) (models.TendererStats, error) {
	<-ctx.Done()
	return models.TendererStats{}, ctx.Err()
}

func TestHandler_Handle_TimedOutJobIsStillFailed(t *testing.T) {
	recorder := &workertest.Recorder{}
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: 50 * time.Millisecond},
		Stats:        blockingAggregator{},
		Logger:       logger.NewTestLogger(t),
		Recorder:     recorder,
	})
	require.NoError(t, err)
	client := workertest.NewJobClient()

	h.Handle(client, workertest.NewJob(46, TaskType, map[string]interface{}{"organizationId": "o1"}))

	require.Len(t, client.Failed, 1)
	assert.Equal(t, int64(46), client.Failed[0].GetJobKey())
	assert.Contains(t, client.Failed[0].GetErrorMessage(), "QUERY_TIMEOUT")
	assert.Empty(t, client.Completed)
	assert.Equal(t, []string{camunda.JobFailed}, recorder.Statuses())
}
