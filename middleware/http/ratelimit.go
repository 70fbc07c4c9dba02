package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kochabx/ecckit/core/rate"
	"github.com/kochabx/ecckit/errors"
	"github.com/kochabx/ecckit/log"
	"github.com/kochabx/ecckit/transport/http"
)

var (
	ErrTooManyRequests = errors.New(http.StatusTooManyRequests, "too many requests")
)

// RateLimitConfig 限流中间件配置
type RateLimitConfig struct {
	Skipper
	Limiter      rate.Limiter              // 限流器（必需）
	KeyFunc      func(*gin.Context) string // 限流维度，默认按客户端 IP
	FailOpen     bool                      // 限流器出错时是否放行
	ErrorHandler func(*gin.Context, error) // 错误处理函数
	Logger       *log.Logger               // 自定义日志记录器
}

// RateLimit 对签名、加解密等计算密集的接口限流
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		panic("middleware: Limiter is required")
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *gin.Context, err error) {
			http.GinError(c, err)
			c.Abort()
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G()
	}
	skip := cfg.compile()

	return func(c *gin.Context) {
		if skip(c) {
			c.Next()
			return
		}

		ok, err := rate.Allow(c.Request.Context(), cfg.Limiter, cfg.KeyFunc(c))
		if err != nil {
			cfg.Logger.Error().Err(err).Str("request_id", RequestID(c)).Msg("ratelimit: limiter failed")
			if cfg.FailOpen {
				c.Next()
				return
			}
			cfg.ErrorHandler(c, errors.Internal("rate limiter unavailable").WithCause(err))
			return
		}
		if !ok {
			cfg.ErrorHandler(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
