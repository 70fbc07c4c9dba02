package redis

import (
	"context"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/ecckit/errors"
	"github.com/kochabx/ecckit/log"
)

// Client Redis 统一客户端（支持单机/集群/哨兵模式）
type Client struct {
	client redis.UniversalClient
	config *Config
	health *HealthChecker
	logger *log.Logger
}

type Option func(*clientOptions)

type clientOptions struct {
	logger *log.Logger
	hooks  []redis.Hook
	debug  bool
}

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithHooks 添加自定义 Hook
func WithHooks(hooks ...redis.Hook) Option {
	return func(o *clientOptions) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithDebug 启用命令日志与慢查询检测
func WithDebug() Option {
	return func(o *clientOptions) {
		o.debug = true
	}
}

// New 创建 Redis 客户端，根据配置自动选择单机/集群/哨兵模式。
// 不会主动连接，连通性由 Ping 或健康检查确认。
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.G()
	}

	c := &Client{
		config: cfg,
		logger: o.logger,
		client: redis.NewUniversalClient(buildUniversalOptions(cfg)),
	}
	for _, hook := range o.hooks {
		c.client.AddHook(hook)
	}
	if o.debug || cfg.SlowQuery > 0 {
		c.client.AddHook(NewDebugHook(c.logger, cfg.SlowQuery))
	}
	if cfg.HealthInterval > 0 {
		c.health = NewHealthChecker(c.client, cfg.HealthInterval, c.logger)
	}

	c.logger.Debug().Str("mode", cfg.Mode()).Strs("addrs", cfg.Addrs).Msg("redis client created")
	return c, nil
}

func buildUniversalOptions(cfg *Config) *redis.UniversalOptions {
	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = 10 * runtime.GOMAXPROCS(0)
	}

	return &redis.UniversalOptions{
		Addrs:      cfg.Addrs,
		MasterName: cfg.MasterName,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Protocol:   cfg.Protocol,

		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		PoolSize:     poolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
	}
}

// UniversalClient 获取底层 redis.UniversalClient
func (c *Client) UniversalClient() redis.UniversalClient {
	return c.client
}

// Ping 测试连接
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, 503, "redis: ping %s", c.config.Addrs[0])
	}
	return nil
}

// Start 启动后台健康检查（如已配置）
func (c *Client) Start(context.Context) error {
	if c.health != nil {
		c.health.Start()
	}
	return nil
}

// Check 用于 HTTP 健康检查。未启用后台检查时直接 PING。
func (c *Client) Check(ctx context.Context) error {
	if c.health == nil {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		return c.Ping(ctx)
	}
	if status := c.health.Status(); !status.Healthy {
		return ErrUnhealthy.WithMetadata(map[string]string{"reason": status.ErrorMessage})
	}
	return nil
}

// Close 停止健康检查并关闭客户端
func (c *Client) Close() error {
	if c.health != nil {
		c.health.Stop()
	}
	err := c.client.Close()
	c.logger.Debug().Msg("redis client closed")
	return err
}

// Stats 获取连接池统计信息
func (c *Client) Stats() *redis.PoolStats {
	return c.client.PoolStats()
}
