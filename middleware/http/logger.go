package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kochabx/ecckit/errors"
	"github.com/kochabx/ecckit/log"
)

// LoggerConfig 日志中间件配置
//
// 请求体与响应体会经过 Logger 的脱敏钩子，私钥等字段不会落盘。
type LoggerConfig struct {
	Skipper
	RequestBody  bool        // 是否记录请求体
	ResponseBody bool        // 是否记录响应体
	HandlerName  bool        // 是否记录处理器名称
	Logger       *log.Logger // 自定义日志记录器
}

// responseWriter 包装 gin.ResponseWriter 以捕获响应体
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Logger 为每个请求分配请求 ID 并记录访问日志
//
// 客户端携带的 X-Request-Id 会被沿用，否则生成新的 UUID。
// 请求 ID 在跳过日志的路径上同样生效。
func Logger(cfgs ...LoggerConfig) gin.HandlerFunc {
	cfg := LoggerConfig{}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G()
	}
	skip := cfg.compile()

	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		if skip(c) {
			c.Next()
			return
		}

		start := time.Now()

		var requestBody []byte
		if cfg.RequestBody {
			if body, err := c.GetRawData(); err == nil {
				requestBody = body
				c.Request.Body = io.NopCloser(bytes.NewReader(body))
			}
		}

		var rw *responseWriter
		if cfg.ResponseBody {
			rw = &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
			c.Writer = rw
		}

		c.Next()

		event := cfg.Logger.Info()
		if len(c.Errors) > 0 {
			event = cfg.Logger.Warn()
		}
		event = event.
			Str("request_id", requestID).
			Int("status", c.Writer.Status()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if cfg.HandlerName {
			event = event.Str("handler", c.HandlerName())
		}
		if len(requestBody) > 0 {
			event = body(event, "request_body", requestBody)
		}
		if rw != nil {
			event = body(event, "response_body", rw.body.Bytes())
		}
		if last := c.Errors.Last(); last != nil {
			event = event.
				Str("error", last.Error()).
				Str("kind", errors.KindOf(last.Err).String())
		}

		event.Send()
	}
}

// body 以原始 JSON 记录合法的 JSON 请求体，使脱敏规则能匹配字段名
func body(event *zerolog.Event, key string, b []byte) *zerolog.Event {
	if json.Valid(b) {
		return event.RawJSON(key, b)
	}
	return event.Bytes(key, b)
}
