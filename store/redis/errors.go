package redis

import (
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/ecckit/errors"
)

var (
	// ErrNil redis.Nil 的封装，表示 key 不存在
	ErrNil = redis.Nil

	ErrInvalidConfig  = errors.New(500, "redis: invalid configuration")
	ErrEmptyAddrs     = errors.New(500, "redis: addrs cannot be empty")
	ErrInvalidTimeout = errors.New(500, "redis: invalid timeout value")
	ErrUnhealthy      = errors.New(503, "redis: unhealthy")
)
