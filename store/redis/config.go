package redis

import (
	"time"
)

// Config Redis 统一配置（支持单机/集群/哨兵模式）
type Config struct {
	// Addrs Redis 地址列表
	// 单机模式: ["localhost:6379"]
	// 集群模式: ["node1:6379", "node2:6379", "node3:6379"]
	// 哨兵模式: ["sentinel1:26379", "sentinel2:26379"]
	Addrs []string `mapstructure:"addrs" validate:"required,min=1,dive,hostname_port"`

	// MasterName 哨兵模式的主节点名称
	MasterName string `mapstructure:"master_name"`

	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// DB 数据库索引，集群模式忽略此字段
	DB int `mapstructure:"db" validate:"gte=0,lte=15"`

	// Protocol 2: RESP2, 3: RESP3 (Redis 6.0+)
	Protocol int `mapstructure:"protocol" validate:"omitempty,oneof=2 3"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout" validate:"gte=0"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0"`

	// PoolSize 0 表示使用默认值: 10 * runtime.GOMAXPROCS
	PoolSize     int `mapstructure:"pool_size" validate:"gte=0"`
	MinIdleConns int `mapstructure:"min_idle_conns" validate:"gte=0"`

	// MaxRetries -1 禁用重试，0 使用默认值 3
	MaxRetries int `mapstructure:"max_retries" validate:"gte=-1"`

	// HealthInterval 后台健康检查间隔，0 表示不启动
	HealthInterval time.Duration `mapstructure:"health_interval" validate:"gte=0"`

	// SlowQuery 慢查询阈值，0 表示不检测
	SlowQuery time.Duration `mapstructure:"slow_query" validate:"gte=0"`
}

// Single 创建单机模式配置
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// Sentinel 创建哨兵模式配置
func Sentinel(masterName string, addrs ...string) *Config {
	return &Config{Addrs: addrs, MasterName: masterName}
}

// Validate 验证配置是否有效
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Mode 返回 single、cluster 或 sentinel
func (c *Config) Mode() string {
	switch {
	case c.MasterName != "":
		return "sentinel"
	case len(c.Addrs) > 1:
		return "cluster"
	default:
		return "single"
	}
}

func (c *Config) applyDefaults() {
	if c.Protocol == 0 {
		c.Protocol = 3
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}
