package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/ecckit/log/desensitize"
	"github.com/kochabx/ecckit/log/writer"
)

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	desensitizeHook *desensitize.Hook
	closer          io.Closer
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// GetDesensitizeHook 获取脱敏钩子
func (l *Logger) GetDesensitizeHook() *desensitize.Hook {
	return l.desensitizeHook
}

// Close 关闭底层文件 writer
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Component 返回带 component 字段的子 Logger，共享脱敏钩子与 writer
func (l *Logger) Component(name string) *Logger {
	return &Logger{
		Logger:          l.Logger.With().Str("component", name).Logger(),
		desensitizeHook: l.desensitizeHook,
	}
}

// newLogger 统一的构建方法。先解析出脱敏钩子，再以最终 writer 应用选项
func newLogger(w io.Writer, opts ...Option) *Logger {
	probe := &Logger{}
	for _, opt := range opts {
		opt(probe)
	}
	if probe.desensitizeHook != nil {
		w = desensitize.NewWriter(w, probe.desensitizeHook)
	}

	logger := &Logger{
		Logger: zerolog.New(w).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(logger)
	}
	return logger
}

// New 创建输出到控制台的 Logger
func New(opts ...Option) *Logger {
	return newLogger(writer.Console(), opts...)
}

// NewWriter 创建输出到任意 writer 的 JSON Logger
func NewWriter(w io.Writer, opts ...Option) *Logger {
	return newLogger(w, opts...)
}

// Nop 返回丢弃所有输出的 Logger
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// NewFile 创建文件输出的 Logger
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	c.applyDefaults()

	fw, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}

	logger := newLogger(fw, opts...)
	logger.closer = fw
	return logger, nil
}

// NewMulti 创建同时输出到文件和控制台的 Logger
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	c.applyDefaults()

	fw, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}

	logger := newLogger(zerolog.MultiLevelWriter(fw, writer.Console()), opts...)
	logger.closer = fw
	return logger, nil
}

// NewFromConfig 按配置创建 Logger。Desensitize 开启时加载全部内置密钥脱敏规则
func NewFromConfig(c Config, opts ...Option) (*Logger, error) {
	base := make([]Option, 0, len(opts)+3)
	if c.Level != "" {
		level, err := zerolog.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		base = append(base, WithLevel(level))
	}
	if c.Caller {
		base = append(base, WithCaller())
	}
	if c.Desensitize {
		base = append(base, WithDesensitize(desensitize.KeyMaterialHook()))
	}
	base = append(base, opts...)

	switch c.Output {
	case OutputFile:
		return NewFile(c.File, base...)
	case OutputMulti:
		return NewMulti(c.File, base...)
	case OutputConsole, "":
		return New(base...), nil
	default:
		return nil, fmt.Errorf("unsupported log output: %q", c.Output)
	}
}
