package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/kochabx/ecckit/log"
	"github.com/kochabx/ecckit/store/redis"
	"github.com/kochabx/ecckit/transport/http"
)

const envPrefix = "ECCD"

// Config is the eccd configuration. Every key can be set from the
// environment, e.g. ECCD_SERVER_ADDR or ECCD_KEY_PRIVATE_KEY_HEX.
type Config struct {
	Server    ServerConfig       `mapstructure:"server"`
	Key       KeyConfig          `mapstructure:"key"`
	Engine    EngineConfig       `mapstructure:"engine"`
	Log       log.Config         `mapstructure:"log"`
	Metrics   http.MetricsOption `mapstructure:"metrics"`
	Health    http.HealthOption  `mapstructure:"health"`
	Cors      CorsConfig         `mapstructure:"cors"`
	Signature SignatureConfig    `mapstructure:"signature"`
	RateLimit RateLimitConfig    `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Name            string        `mapstructure:"name"`
	Addr            string        `mapstructure:"addr" validate:"required,hostname_port"`
	Version         string        `mapstructure:"version"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// KeyConfig locates the server private key. PrivateKeyHex wins over File.
// When File names a missing file, a key is generated and written there.
// With neither set, an ephemeral key is generated on every start.
type KeyConfig struct {
	PrivateKeyHex string `mapstructure:"private_key_hex" validate:"omitempty,hex64"`
	File          string `mapstructure:"file"`
}

type EngineConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" validate:"gte=1,lte=10000"`
	Concurrency int `mapstructure:"concurrency" validate:"gte=0"`
}

type CorsConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// SignatureConfig enables X-Signature checks on the listed paths.
type SignatureConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Optional bool     `mapstructure:"optional"`
	Paths    []string `mapstructure:"paths"`
}

// RateLimitConfig throttles the listed paths per client IP with a
// Redis token bucket. Capacity is the burst, Rate the refill per second.
// With FailOpen, requests pass while Redis is unreachable.
type RateLimitConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	FailOpen bool         `mapstructure:"fail_open"`
	Capacity int          `mapstructure:"capacity" validate:"gte=1"`
	Rate     float64      `mapstructure:"rate" validate:"gt=0"`
	Prefix   string       `mapstructure:"prefix" validate:"required"`
	Paths    []string     `mapstructure:"paths"`
	Redis    redis.Config `mapstructure:"redis"`
}

func (c *Config) SetDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "eccd")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.version", "dev")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("key.private_key_hex", "")
	v.SetDefault("key.file", "")

	v.SetDefault("engine.max_attempts", 100)
	v.SetDefault("engine.concurrency", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.caller", false)
	v.SetDefault("log.desensitize", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.enabled_go_collector", true)
	v.SetDefault("metrics.enabled_build_info_collector", true)

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.path", "/health")

	v.SetDefault("cors.allow_origins", []string{"*"})

	v.SetDefault("signature.enabled", false)
	v.SetDefault("signature.optional", true)
	v.SetDefault("signature.paths", []string{"/api/crypto/encrypt", "/api/signature/sign"})

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.fail_open", true)
	v.SetDefault("rate_limit.capacity", 20)
	v.SetDefault("rate_limit.rate", 10.0)
	v.SetDefault("rate_limit.prefix", "eccd:ratelimit")
	v.SetDefault("rate_limit.paths", []string{"/api/crypto/**", "/api/signature/**", "/api/secure/**"})
	v.SetDefault("rate_limit.redis.addrs", []string{"127.0.0.1:6379"})
	v.SetDefault("rate_limit.redis.password", "")
	v.SetDefault("rate_limit.redis.db", 0)
	v.SetDefault("rate_limit.redis.dial_timeout", time.Second)
	v.SetDefault("rate_limit.redis.read_timeout", 500*time.Millisecond)
	v.SetDefault("rate_limit.redis.write_timeout", 500*time.Millisecond)
	v.SetDefault("rate_limit.redis.health_interval", 10*time.Second)
	v.SetDefault("rate_limit.redis.slow_query", 50*time.Millisecond)
}
