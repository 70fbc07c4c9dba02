package middleware

import (
	"fmt"
	"net/http/httputil"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/ecckit/errors"
	"github.com/kochabx/ecckit/log"
	"github.com/kochabx/ecckit/transport/http"
)

var (
	ErrInternal = errors.Internal("internal server error")
)

// RecoveryConfig Recovery 中间件配置
type RecoveryConfig struct {
	StackTrace bool        // 是否记录堆栈信息
	Logger     *log.Logger // 自定义日志记录器
}

// Recovery 捕获处理器中的 panic，记录日志并返回 500
func Recovery(cfgs ...RecoveryConfig) gin.HandlerFunc {
	cfg := RecoveryConfig{StackTrace: true}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			// 请求头可能携带签名与公钥，不记录请求体
			dump, _ := httputil.DumpRequest(c.Request, false)

			if isBrokenPipe(err) {
				cfg.Logger.Warn().Err(err).Bytes("request", dump).Msg("broken pipe")
				_ = c.Error(err)
				c.Abort()
				return
			}

			event := cfg.Logger.Error().
				Err(err).
				Str("request_id", RequestID(c)).
				Bytes("request", dump)
			if cfg.StackTrace {
				event = event.Bytes("stack", debug.Stack())
			}
			event.Msg("panic recovered")

			http.GinError(c, ErrInternal.WithCause(err))
			c.Abort()
		}()
		c.Next()
	}
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
