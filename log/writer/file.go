package writer

import (
	"fmt"
	"io"
	"path/filepath"
)

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Mode     RotateMode
	Filepath string
	Filename string
	FileExt  string
	Time     TimeRotateConfig
	Size     SizeRotateConfig
}

// TimeRotateConfig 按时间轮转配置
type TimeRotateConfig struct {
	MaxAge       int // 保留时间(小时)
	RotationTime int // 轮转间隔(小时)
}

// SizeRotateConfig 按大小轮转配置
type SizeRotateConfig struct {
	MaxSize    int // 单个文件最大大小(MB)
	MaxBackups int
	MaxAge     int // 保留天数
	Compress   bool
}

// File 按轮转模式创建文件 writer
func File(c RotateConfig) (io.WriteCloser, error) {
	switch c.Mode {
	case RotateModeTime:
		return timeRotateWriter(c)
	case RotateModeSize, "":
		return sizeRotateWriter(c)
	default:
		return nil, fmt.Errorf("unsupported rotate mode: %q", c.Mode)
	}
}

// path 返回 <Filepath>/<Filename>[.<format>].<FileExt>
func (c RotateConfig) path(format string) string {
	name := c.Filename
	if format != "" {
		name += "." + format
	}
	return filepath.Join(c.Filepath, name+"."+c.FileExt)
}
