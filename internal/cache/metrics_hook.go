package cache

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/connectos/backend/internal/metrics"
)

// metricsHook records per-command latency and outcome for every Redis
// operation the client issues.
type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)

		// redis.Nil is a miss, not a failure
		status := "ok"
		if err != nil && err != redis.Nil {
			status = "error"
		}
		m := metrics.Get()
		m.RedisOperationDuration.WithLabelValues(cmd.Name()).Observe(time.Since(start).Seconds())
		m.RedisOperationsTotal.WithLabelValues(cmd.Name(), status).Inc()
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)

		status := "ok"
		if err != nil && err != redis.Nil {
			status = "error"
		}
		m := metrics.Get()
		m.RedisOperationDuration.WithLabelValues("pipeline").Observe(time.Since(start).Seconds())
		m.RedisOperationsTotal.WithLabelValues("pipeline", status).Inc()
		return err
	}
}
