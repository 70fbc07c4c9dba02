package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/ecckit/log"
)

// HealthChecker 周期性 PING，缓存最近一次结果
type HealthChecker struct {
	client   redis.UniversalClient
	interval time.Duration
	logger   *log.Logger

	mu         sync.RWMutex
	lastStatus *HealthStatus
	running    atomic.Bool

	cancel context.CancelFunc
	done   chan struct{}
}

// HealthStatus 健康状态
type HealthStatus struct {
	Healthy      bool
	LastCheck    time.Time
	Latency      time.Duration
	ErrorMessage string
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(client redis.UniversalClient, interval time.Duration, logger *log.Logger) *HealthChecker {
	return &HealthChecker{
		client:   client,
		interval: interval,
		logger:   logger,
	}
}

// Start 立即检查一次，然后按间隔定期检查
func (hc *HealthChecker) Start() {
	if !hc.running.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	hc.cancel = cancel
	hc.done = make(chan struct{})

	hc.check(ctx)
	go hc.run(ctx)

	hc.logger.Info().Dur("interval", hc.interval).Msg("redis health checker started")
}

// Stop 停止健康检查并等待协程退出
func (hc *HealthChecker) Stop() {
	if !hc.running.CompareAndSwap(true, false) {
		return
	}
	hc.cancel()
	<-hc.done
}

// Status 获取当前健康状态的副本
func (hc *HealthChecker) Status() HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	if hc.lastStatus == nil {
		return HealthStatus{ErrorMessage: "not checked yet"}
	}
	return *hc.lastStatus
}

func (hc *HealthChecker) run(ctx context.Context) {
	defer close(hc.done)

	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hc.check(ctx)
		}
	}
}

func (hc *HealthChecker) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := &HealthStatus{LastCheck: time.Now()}
	start := time.Now()
	err := hc.client.Ping(ctx).Err()
	status.Latency = time.Since(start)

	if err != nil {
		status.ErrorMessage = err.Error()
		hc.logger.Error().Dur("latency", status.Latency).Err(err).Msg("redis health check failed")
	} else {
		status.Healthy = true
		stats := hc.client.PoolStats()
		hc.logger.Debug().Dur("latency", status.Latency).Uint32("total_conns", stats.TotalConns).Uint32("idle_conns", stats.IdleConns).Msg("redis health check success")
	}

	hc.mu.Lock()
	hc.lastStatus = status
	hc.mu.Unlock()
}
