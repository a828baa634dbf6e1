package scorebid

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
	"tender-matching/internal/store"
	"tender-matching/internal/workers/workertest"
)

type fakeScorer struct {
	score int
	found bool
	err   error
}

func (f *fakeScorer) ScoreBid(context.Context, string) (int, bool, error) {
	return f.score, f.found, f.err
}

type fakeWriter struct {
	written map[string]int
	err     error
}

func (f *fakeWriter) UpdateBidMatchScore(_ context.Context, bidID string, score int) error {
	if f.err != nil {
		return f.err
	}
	if f.written == nil {
		f.written = map[string]int{}
	}
	f.written[bidID] = score
	return nil
}

func createTestHandler(t *testing.T, scorer Scorer, writer BidScoreWriter) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: 5 * time.Second},
		Scorer:       scorer,
		Writer:       writer,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestHandler_Execute(t *testing.T) {
	t.Run("scores and persists", func(t *testing.T) {
		writer := &fakeWriter{}
		h := createTestHandler(t, &fakeScorer{score: 91, found: true}, writer)

		out, err := h.Execute(context.Background(), &Input{BidID: "b1"})
		require.NoError(t, err)
		assert.Equal(t, &Output{BidID: "b1", MatchScore: 91, Scored: true}, out)
		assert.Equal(t, 91, writer.written["b1"])
	})

	t.Run("missing bid completes unscored", func(t *testing.T) {
		writer := &fakeWriter{}
		h := createTestHandler(t, &fakeScorer{found: false}, writer)

		out, err := h.Execute(context.Background(), &Input{BidID: "gone"})
		require.NoError(t, err)
		assert.False(t, out.Scored)
		assert.Empty(t, writer.written)
	})

	t.Run("bid deleted before write", func(t *testing.T) {
		h := createTestHandler(t, &fakeScorer{score: 40, found: true}, &fakeWriter{err: store.ErrBidNotFound})

		out, err := h.Execute(context.Background(), &Input{BidID: "b1"})
		require.NoError(t, err)
		assert.False(t, out.Scored)
	})

	t.Run("read failure is retryable", func(t *testing.T) {
		h := createTestHandler(t, &fakeScorer{err: stderrors.New("connection refused")}, &fakeWriter{})

		_, err := h.Execute(context.Background(), &Input{BidID: "b1"})

		var stdErr *errors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, errors.ErrCodeDataAccessFailed, stdErr.Code)
	})

	t.Run("write timeout", func(t *testing.T) {
		h := createTestHandler(t, &fakeScorer{score: 40, found: true}, &fakeWriter{err: context.DeadlineExceeded})

		_, err := h.Execute(context.Background(), &Input{BidID: "b1"})

		var stdErr *errors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, errors.ErrCodeQueryTimeout, stdErr.Code)
	})
}

func TestHandler_Handle(t *testing.T) {
	t.Run("completes with the score", func(t *testing.T) {
		h := createTestHandler(t, &fakeScorer{score: 56, found: true}, &fakeWriter{})
		client := workertest.NewJobClient()

		h.Handle(client, workertest.NewJob(7, TaskType, map[string]interface{}{"bidId": "b1"}))

		require.Len(t, client.Completed, 1)
		vars, err := client.CompletedVariables(0)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"bidId": "b1", "matchScore": float64(56), "scored": true}, vars)
	})

	t.Run("missing bid id is thrown", func(t *testing.T) {
		h := createTestHandler(t, &fakeScorer{}, &fakeWriter{})
		client := workertest.NewJobClient()

		h.Handle(client, workertest.NewJob(8, TaskType, map[string]interface{}{}))

		require.Len(t, client.Thrown, 1)
		assert.Equal(t, "INVALID_INPUT", client.Thrown[0].GetErrorCode())
	})
}

func TestNewHandler_RequiresDependencies(t *testing.T) {
	_, err := NewHandler(HandlerOptions{Scorer: &fakeScorer{}, Logger: logger.NewTestLogger(t)})
	assert.Error(t, err)
}

type blockingScorer struct{}

func (blockingScorer) ScoreBid(ctx context.Context, _ string) (int, bool, error) {
	<-ctx.Done()
	return 0, false, ctx.Err()
}

func TestHandler_Handle_TimedOutJobIsStillFailed(t *testing.T) {
	recorder := &workertest.Recorder{}
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: 50 * time.Millisecond},
		Scorer:       blockingScorer{},
		Writer:       &fakeWriter{},
		Logger:       logger.NewTestLogger(t),
		Recorder:     recorder,
	})
	require.NoError(t, err)
	client := workertest.NewJobClient()

	h.Handle(client, workertest.NewJob(46, TaskType, map[string]interface{}{"bidId": "b1"}))

	require.Len(t, client.Failed, 1)
	assert.Equal(t, int64(46), client.Failed[0].GetJobKey())
	assert.Contains(t, client.Failed[0].GetErrorMessage(), "QUERY_TIMEOUT")
	assert.Empty(t, client.Completed)
	assert.Equal(t, []string{camunda.JobFailed}, recorder.Statuses())
}
