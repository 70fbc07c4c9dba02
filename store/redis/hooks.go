package redis

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/ecckit/log"
)

var _ redis.Hook = (*DebugHook)(nil)

// DebugHook 记录命令耗时，超过阈值时告警。
// 不记录命令参数：限流 key 中含客户端地址。
type DebugHook struct {
	logger *log.Logger
	slow   time.Duration
}

// NewDebugHook slow 为 0 时不检测慢查询
func NewDebugHook(logger *log.Logger, slow time.Duration) *DebugHook {
	return &DebugHook{logger: logger, slow: slow}
}

func (h *DebugHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Error().Str("addr", addr).Dur("duration", time.Since(start)).Err(err).Msg("redis dial failed")
		}
		return conn, err
	}
}

func (h *DebugHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(cmd.FullName(), 1, time.Since(start), err)
		return err
	}
}

func (h *DebugHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.observe("pipeline", len(cmds), time.Since(start), err)
		return err
	}
}

func (h *DebugHook) observe(name string, count int, d time.Duration, err error) {
	switch {
	case h.slow > 0 && d > h.slow:
		h.logger.Warn().Str("cmd", name).Int("count", count).Dur("duration", d).Dur("threshold", h.slow).Msg("slow redis command")
	case err != nil && err != redis.Nil:
		h.logger.Warn().Str("cmd", name).Int("count", count).Dur("duration", d).Err(err).Msg("redis command failed")
	default:
		h.logger.Debug().Str("cmd", name).Int("count", count).Dur("duration", d).Msg("redis command")
	}
}
