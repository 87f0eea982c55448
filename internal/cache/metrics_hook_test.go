package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectos/backend/internal/metrics"
)

func operationsTotal(op, status string) float64 {
	return testutil.ToFloat64(metrics.Get().RedisOperationsTotal.WithLabelValues(op, status))
}

func TestProcessHookCountsSuccess(t *testing.T) {
	process := metricsHook{}.ProcessHook(func(ctx context.Context, cmd redis.Cmder) error {
		return nil
	})

	before := operationsTotal("incr", "ok")
	cmd := redis.NewIntCmd(context.Background(), "incr", "rate_limit:10.0.0.1")
	require.NoError(t, process(context.Background(), cmd))
	assert.Equal(t, before+1, operationsTotal("incr", "ok"))
}

func TestProcessHookCountsFailures(t *testing.T) {
	process := metricsHook{}.ProcessHook(func(ctx context.Context, cmd redis.Cmder) error {
		return errors.New("connection refused")
	})

	before := operationsTotal("expire", "error")
	cmd := redis.NewBoolCmd(context.Background(), "expire", "rate_limit:10.0.0.1", 60)
	assert.Error(t, process(context.Background(), cmd))
	assert.Equal(t, before+1, operationsTotal("expire", "error"))
}

func TestProcessHookTreatsNilReplyAsOK(t *testing.T) {
	process := metricsHook{}.ProcessHook(func(ctx context.Context, cmd redis.Cmder) error {
		return redis.Nil
	})

	before := operationsTotal("get", "ok")
	cmd := redis.NewStringCmd(context.Background(), "get", "missing-key")
	assert.ErrorIs(t, process(context.Background(), cmd), redis.Nil)
	assert.Equal(t, before+1, operationsTotal("get", "ok"))
}
