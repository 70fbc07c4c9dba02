package log

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var global atomic.Pointer[Logger]

func init() {
	global.Store(New())
}

// G 返回全局日志实例
func G() *Logger {
	return global.Load()
}

// SetGlobalLogger 设置全局日志记录器，nil 被忽略
func SetGlobalLogger(logger *Logger) {
	if logger != nil {
		global.Store(logger)
	}
}

// SetGlobalLevel 设置全局日志级别
func SetGlobalLevel(level zerolog.Level) {
	l := *G()
	l.Logger = l.Logger.Level(level)
	global.Store(&l)
}

func Debug() *zerolog.Event {
	return G().Debug()
}

func Info() *zerolog.Event {
	return G().Info()
}

func Warn() *zerolog.Event {
	return G().Warn()
}

// Error 返回 error 级别的日志事件（带堆栈）
func Error() *zerolog.Event {
	return G().Error().Stack()
}

// Fatal 返回 fatal 级别的日志事件（带堆栈）
func Fatal() *zerolog.Event {
	return G().Fatal().Stack()
}

func Infof(format string, args ...any) {
	G().Info().Msgf(format, args...)
}

func Warnf(format string, args ...any) {
	G().Warn().Msgf(format, args...)
}

func Errorf(format string, args ...any) {
	G().Error().Stack().Msgf(format, args...)
}
