// internal/common/database/retry_test.go
package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-matching/internal/common/config"
	"tender-matching/internal/common/logger"
)

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, 5, time.Millisecond, logger.NewTestLogger(t), "PostgreSQL connection")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	boom := errors.New("connection refused")
	attempts := 0
	err := RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		return boom
	}, 3, time.Millisecond, logger.NewTestLogger(t), "Redis connection")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestRetryWithBackoff_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func(context.Context) error {
		return errors.New("unavailable")
	}, 5, time.Hour, logger.NewTestLogger(t), "Zeebe client initialization")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var p Pinger = client
	assert.NoError(t, p.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}
