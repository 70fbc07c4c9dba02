package writer

import (
	"fmt"
	"io"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateMode 日志轮转模式
type RotateMode string

const (
	// RotateModeTime 按时间轮转
	RotateModeTime RotateMode = "time"
	// RotateModeSize 按大小轮转
	RotateModeSize RotateMode = "size"
)

func (m RotateMode) String() string {
	return string(m)
}

// timeRotateWriter 按时间轮转，文件名带时间后缀并维护软链接
func timeRotateWriter(c RotateConfig) (io.WriteCloser, error) {
	w, err := rotatelogs.New(
		c.path("%Y%m%d%H%M"),
		rotatelogs.WithLinkName(c.path("")),
		rotatelogs.WithMaxAge(time.Duration(c.Time.MaxAge)*time.Hour),
		rotatelogs.WithRotationTime(time.Duration(c.Time.RotationTime)*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create time rotate writer: %w", err)
	}
	return w, nil
}

// sizeRotateWriter 按大小轮转
func sizeRotateWriter(c RotateConfig) (io.WriteCloser, error) {
	return &lumberjack.Logger{
		Filename:   c.path(""),
		MaxSize:    c.Size.MaxSize,
		MaxBackups: c.Size.MaxBackups,
		MaxAge:     c.Size.MaxAge,
		Compress:   c.Size.Compress,
	}, nil
}
